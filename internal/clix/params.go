package clix

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// ParseLimit reads the "limit" flag. Unset or zero selects def; values
// above max are rejected.
func ParseLimit(flags *pflag.FlagSet, def, max int) (int, error) {
	limit, _ := flags.GetInt("limit")
	if limit == 0 {
		limit = def
	}
	if limit < 0 {
		return 0, fmt.Errorf("--limit must be positive, got %d", limit)
	}
	if max > 0 && limit > max {
		return 0, fmt.Errorf("--limit %d exceeds the maximum of %d", limit, max)
	}
	return limit, nil
}

// ParseList reads a comma separated string flag, trimming entries and
// dropping empty ones.
func ParseList(flags *pflag.FlagSet, name string) []string {
	raw, _ := flags.GetString(name)
	return SplitList(raw)
}

// SplitList splits s on commas, trimming space and filtering out empty
// strings in one pass.
func SplitList(s string) []string {
	var out []string
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
