// Package taxonomy holds the category relationship graph: an immutable,
// directed table of category → {PRIMARY, RELATED, FALLBACK} neighbors,
// compiled once from a versioned artifact and published to readers through
// an atomically swapped Registry.
package taxonomy

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTaxonomy is wrapped by every structural load failure.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// LoadError collects every structural problem found while compiling an artifact.
type LoadError struct {
	Source   string
	Problems []string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("taxonomy %s: %s", e.Source, strings.Join(e.Problems, "; "))
}

func (e *LoadError) Unwrap() error { return ErrInvalidTaxonomy }

func (e *LoadError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Definition is one category entry of a taxonomy artifact, before compilation.
type Definition struct {
	Category    string
	DisplayName string
	Primary     []string
	Related     []string
	Fallback    []string
}

// Neighbor is a category linked to another at a given tier.
type Neighbor struct {
	Category string `json:"category"`
	Tier     Tier   `json:"tier"`
}

// CategoryInfo is the diagnostic dump of one category.
type CategoryInfo struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"display_name,omitempty"`
	Primary     []string `json:"primary,omitempty"`
	Related     []string `json:"related,omitempty"`
	Fallback    []string `json:"fallback,omitempty"`
	Incoming    int      `json:"incoming"`
}

// Asymmetry is an edge whose reverse direction carries a different tier (or none).
type Asymmetry struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Forward Tier   `json:"forward"`
	Reverse Tier   `json:"reverse"`
}

type edgeKey struct {
	source string
	target string
}

// Graph is an immutable snapshot of the category relationships.
// All keys are normalized.
type Graph struct {
	version    string
	snapshotID string
	source     string
	loadedAt   time.Time

	edges   map[edgeKey]Tier
	out     map[string][]Neighbor
	in      map[string][]Neighbor
	display map[string]string
	keys    []string
}

// Build compiles definitions into a Graph. Any conflicting edge, empty key,
// self-edge or missing version is reported through a *LoadError.
func Build(version, source string, defs []Definition) (*Graph, error) {
	problems := &LoadError{Source: source}
	if strings.TrimSpace(version) == "" {
		problems.add("missing version")
	}
	if len(defs) == 0 {
		problems.add("no categories defined")
	}

	g := &Graph{
		version:    strings.TrimSpace(version),
		snapshotID: uuid.NewString(),
		source:     source,
		loadedAt:   time.Now().UTC(),
		edges:      make(map[edgeKey]Tier),
		out:        make(map[string][]Neighbor),
		in:         make(map[string][]Neighbor),
		display:    make(map[string]string),
	}
	known := make(map[string]struct{})

	for i, def := range defs {
		src := Normalize(def.Category)
		if src == "" {
			problems.add("category #%d has an empty key", i+1)
			continue
		}
		known[src] = struct{}{}

		if name := strings.TrimSpace(def.DisplayName); name != "" {
			if existing, ok := g.display[src]; ok && existing != name {
				problems.add("category %q has conflicting display names %q and %q", src, existing, name)
			} else {
				g.display[src] = name
			}
		}

		lists := []struct {
			tier    Tier
			targets []string
		}{
			{TierPrimary, def.Primary},
			{TierRelated, def.Related},
			{TierFallback, def.Fallback},
		}
		for _, list := range lists {
			for _, raw := range list.targets {
				dst := Normalize(raw)
				switch {
				case dst == "":
					problems.add("category %q lists an empty %s neighbor", src, list.tier)
				case dst == src:
					problems.add("category %q lists itself as a %s neighbor", src, list.tier)
				default:
					key := edgeKey{source: src, target: dst}
					if existing, ok := g.edges[key]; ok {
						if existing != list.tier {
							problems.add("edge %q -> %q declared as both %s and %s", src, dst, existing, list.tier)
						}
						continue
					}
					g.edges[key] = list.tier
					g.out[src] = append(g.out[src], Neighbor{Category: dst, Tier: list.tier})
					g.in[dst] = append(g.in[dst], Neighbor{Category: src, Tier: list.tier})
					known[dst] = struct{}{}
				}
			}
		}
	}

	if len(problems.Problems) > 0 {
		return nil, problems
	}

	for key, neighbors := range g.out {
		slices.SortStableFunc(neighbors, func(a, b Neighbor) int {
			return cmp.Compare(b.Tier, a.Tier)
		})
		g.out[key] = neighbors
	}
	for key, neighbors := range g.in {
		slices.SortFunc(neighbors, func(a, b Neighbor) int {
			if c := cmp.Compare(b.Tier, a.Tier); c != 0 {
				return c
			}
			return cmp.Compare(a.Category, b.Category)
		})
		g.in[key] = neighbors
	}

	g.keys = make([]string, 0, len(known))
	for key := range known {
		g.keys = append(g.keys, key)
	}
	slices.Sort(g.keys)
	return g, nil
}

func (g *Graph) Version() string     { return g.version }
func (g *Graph) SnapshotID() string  { return g.snapshotID }
func (g *Graph) Source() string      { return g.source }
func (g *Graph) LoadedAt() time.Time { return g.loadedAt }
func (g *Graph) CategoryCount() int  { return len(g.keys) }
func (g *Graph) EdgeCount() int      { return len(g.edges) }
func (g *Graph) DisplayName(key string) string {
	return g.display[Normalize(key)]
}

// TierOf returns the relevance tier of the directed pair source → target.
// Unknown or blank inputs yield TierNone.
func (g *Graph) TierOf(source, target string) Tier {
	return g.TierOfKeys(Normalize(source), Normalize(target))
}

// TierOfKeys is TierOf for callers that already hold normalized keys.
func (g *Graph) TierOfKeys(source, target string) Tier {
	if g == nil || source == "" || target == "" {
		return TierNone
	}
	if source == target {
		return TierExact
	}
	return g.edges[edgeKey{source: source, target: target}]
}

// NeighborsOf lists the categories linked to category at atLeast or better.
// Outgoing edges come first, best tier first and in declaration order within
// a tier; incoming edges not already listed follow.
func (g *Graph) NeighborsOf(category string, atLeast Tier) []Neighbor {
	key := Normalize(category)
	if g == nil || key == "" {
		return nil
	}
	var neighbors []Neighbor
	seen := make(map[string]struct{})
	for _, n := range g.out[key] {
		if n.Tier.AtLeast(atLeast) {
			neighbors = append(neighbors, n)
			seen[n.Category] = struct{}{}
		}
	}
	for _, n := range g.in[key] {
		if _, dup := seen[n.Category]; dup || !n.Tier.AtLeast(atLeast) {
			continue
		}
		neighbors = append(neighbors, n)
		seen[n.Category] = struct{}{}
	}
	return neighbors
}

// Categories dumps every category known to the graph, sorted by key.
func (g *Graph) Categories() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(g.keys))
	for _, key := range g.keys {
		info := CategoryInfo{
			Key:         key,
			DisplayName: g.display[key],
			Incoming:    len(g.in[key]),
		}
		for _, n := range g.out[key] {
			switch n.Tier {
			case TierPrimary:
				info.Primary = append(info.Primary, n.Category)
			case TierRelated:
				info.Related = append(info.Related, n.Category)
			case TierFallback:
				info.Fallback = append(info.Fallback, n.Category)
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// Asymmetries reports edges whose reverse direction differs in tier.
// A pair present in both directions is reported once, from the smaller key.
func (g *Graph) Asymmetries() []Asymmetry {
	var found []Asymmetry
	for key, forward := range g.edges {
		reverse := g.edges[edgeKey{source: key.target, target: key.source}]
		if reverse == forward {
			continue
		}
		if reverse != TierNone && key.source > key.target {
			continue
		}
		found = append(found, Asymmetry{
			Source:  key.source,
			Target:  key.target,
			Forward: forward,
			Reverse: reverse,
		})
	}
	slices.SortFunc(found, func(a, b Asymmetry) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})
	return found
}
