package prompt

import "regexp"

// Signal names a family of instruction-subversion phrasing
type Signal string

const (
	SignalInstructionOverride Signal = "instruction_override"
	SignalPromptLeak          Signal = "prompt_leak"
	SignalRoleChange          Signal = "role_change"
	SignalDelimiter           Signal = "delimiter"
)

var screens = []struct {
	signal   Signal
	patterns []*regexp.Regexp
}{
	{SignalInstructionOverride, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(ignore|disregard|forget)\s+(all\s+|any\s+)?(the\s+)?(previous|prior|above|earlier)\s+(instructions?|rules|prompts?)`),
		regexp.MustCompile(`(?i)\boverride\s+(the\s+)?(system|previous)\s+(instructions?|prompt|rules)`),
	}},
	{SignalPromptLeak, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(show|reveal|print|repeat)\s+(me\s+)?(your|the)\s+(system|hidden|initial)\s+(prompt|instructions?)`),
	}},
	{SignalRoleChange, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfrom\s+now\s+on,?\s+you\s+(are|will)\b`),
		regexp.MustCompile(`(?i)\b(pretend|act)\s+(to\s+be|as)\s+(an?\s+)?(unrestricted|unfiltered|different)\b`),
	}},
	{SignalDelimiter, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(<\|(system|assistant|im_start|im_end)\|>|\[/?SYSTEM\]|###\s*SYSTEM)`),
	}},
}

// Screen returns the distinct signals present in text, in a fixed order
func Screen(text string) []Signal {
	var signals []Signal
	for _, s := range screens {
		for _, p := range s.patterns {
			if p.MatchString(text) {
				signals = append(signals, s.signal)
				break
			}
		}
	}
	return signals
}
