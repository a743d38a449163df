package topology

import "fmt"

// Category is the structural class of a subgraph. The seven named values form
// a closed set; every classified subgraph has exactly one of them.
type Category int

const (
	// Unclassified is the zero value. It is never the result of [Classify]
	// for a non-empty subgraph.
	Unclassified Category = iota
	// Hierarchies holds multi-node subgraphs that contain their own source:
	// a self-contained dependency tree.
	Hierarchies
	// SingleAssets holds isolated nodes with no edges at all.
	SingleAssets
	// SharedAssets holds multi-node subgraphs reached from several sources.
	SharedAssets
	// SharedSingles holds single nodes reached from several sources that
	// still reference other assets.
	SharedSingles
	// SharedSingleSinks holds single leaf nodes reached from several sources.
	SharedSingleSinks
	// SingleSources holds single nodes that are themselves entry points.
	SingleSources
	// ExclusiveToSingleSource is the catch-all for single-source subgraphs
	// that match none of the rules above, usually because of cycles.
	ExclusiveToSingleSource
)

var categoryNames = [...]string{
	Unclassified:            "Unclassified",
	Hierarchies:             "Hierarchies",
	SingleAssets:            "SingleAssets",
	SharedAssets:            "SharedAssets",
	SharedSingles:           "SharedSingles",
	SharedSingleSinks:       "SharedSingleSinks",
	SingleSources:           "SingleSources",
	ExclusiveToSingleSource: "ExclusiveToSingleSource",
}

// All returns the seven categories in declaration order. The slice is fresh.
func All() []Category {
	return []Category{
		Hierarchies,
		SingleAssets,
		SharedAssets,
		SharedSingles,
		SharedSingleSinks,
		SingleSources,
		ExclusiveToSingleSource,
	}
}

// String returns the category name.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is one of the seven named categories.
func (c Category) Valid() bool { return c > Unclassified && c <= ExclusiveToSingleSource }

// Parse returns the category with the given name.
func Parse(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name && Category(i).Valid() {
			return Category(i), nil
		}
	}
	return Unclassified, fmt.Errorf("unknown category %q", name)
}

// MarshalText implements [encoding.TextMarshaler].
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler]. The name
// "Unclassified" is accepted so unclassified records round-trip.
func (c *Category) UnmarshalText(data []byte) error {
	if string(data) == categoryNames[Unclassified] {
		*c = Unclassified
		return nil
	}
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
