package taxonomy

import (
	"fmt"
	"strings"
)

// Tier is the discrete relevance level between an interest and a category.
// Higher values are better matches.
type Tier int

const (
	TierNone Tier = iota
	// TierUniversal is assigned by the scorer to ads without interests.
	// The graph never stores or returns it.
	TierUniversal
	TierFallback
	TierRelated
	TierPrimary
	TierExact
)

var tierNames = map[Tier]string{
	TierNone:      "NONE",
	TierUniversal: "UNIVERSAL",
	TierFallback:  "FALLBACK",
	TierRelated:   "RELATED",
	TierPrimary:   "PRIMARY",
	TierExact:     "EXACT",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// MarshalText renders the tier name in JSON and YAML output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts tier names case-insensitively.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// AtLeast reports whether t is as good as or better than other.
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

// ParseTier converts a tier name such as "related" into a Tier.
func ParseTier(s string) (Tier, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for tier, name := range tierNames {
		if name == upper {
			return tier, nil
		}
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}
