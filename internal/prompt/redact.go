package prompt

import (
	"regexp"
	"sort"
	"strings"
)

// Kind names a category of personal data
type Kind string

const (
	KindEmail      Kind = "email"
	KindPhone      Kind = "phone"
	KindCreditCard Kind = "credit_card"
	KindIPAddress  Kind = "ip_address"
)

// Finding is one span of personal data found in a text
type Finding struct {
	Kind  Kind
	Start int
	End   int
}

type detector struct {
	kind    Kind
	pattern *regexp.Regexp
	accept  func(string) bool
}

// Phone numbers need a separator-rich shape or a leading "+" so that years,
// page numbers and sample sizes in research questions are left alone.
var detectors = []detector{
	{kind: KindEmail, pattern: regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	{kind: KindCreditCard, pattern: regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`), accept: luhnValid},
	{kind: KindIPAddress, pattern: regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`)},
	{kind: KindPhone, pattern: regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?\(?\b\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}\b`)},
	{kind: KindPhone, pattern: regexp.MustCompile(`\+\d{1,3}[\s.-]?\d{2,4}[\s.-]?\d{3,4}[\s.-]?\d{3,4}\b`)},
}

// Find returns the non-overlapping personal data spans in text, in order.
// When spans overlap the earliest (then longest) wins.
func Find(text string) []Finding {
	var found []Finding
	for _, d := range detectors {
		for _, loc := range d.pattern.FindAllStringIndex(text, -1) {
			if d.accept != nil && !d.accept(text[loc[0]:loc[1]]) {
				continue
			}
			found = append(found, Finding{Kind: d.kind, Start: loc[0], End: loc[1]})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].End > found[j].End
	})

	out := found[:0]
	end := -1
	for _, f := range found {
		if f.Start < end {
			continue
		}
		out = append(out, f)
		end = f.End
	}
	return out
}

// Redact replaces personal data in text with a placeholder per kind
func Redact(text string) (string, []Finding) {
	findings := Find(text)
	if len(findings) == 0 {
		return text, nil
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, f := range findings {
		sb.WriteString(text[last:f.Start])
		sb.WriteString(placeholder(f.Kind))
		last = f.End
	}
	sb.WriteString(text[last:])

	return sb.String(), findings
}

func placeholder(kind Kind) string {
	return "[" + strings.ToUpper(string(kind)) + "_REDACTED]"
}

// luhnValid reports whether the digits in s pass the Luhn checksum
func luhnValid(s string) bool {
	sum := 0
	digits := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		n := int(c - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
		digits++
	}
	return digits >= 13 && sum%10 == 0
}
