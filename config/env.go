package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the parsed value of key, or def when the variable is unset,
// empty, or does not parse.
func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func envString(key, def string) string {
	return lookup(key, def, func(s string) (string, error) { return s, nil })
}

func envInt(key string, def int) int {
	return lookup(key, def, strconv.Atoi)
}

func envBool(key string, def bool) bool {
	return lookup(key, def, strconv.ParseBool)
}

func envFloat(key string, def float64) float64 {
	return lookup(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envDuration(key string, def time.Duration) time.Duration {
	return lookup(key, def, time.ParseDuration)
}

// envList splits a comma separated variable, dropping blank entries.
func envList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// envFirstInt returns the first of keys holding an integer.
func envFirstInt(def int, keys ...string) int {
	for _, key := range keys {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			return n
		}
	}
	return def
}
