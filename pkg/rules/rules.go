package rules

import (
	"fmt"
	"sort"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

// DefaultTemplate is the template used by [Default] output rules.
const DefaultTemplate = "Default"

// Set is a compiled rule configuration, ready for the merge and layout stages.
type Set struct {
	Policies  map[topology.Category]category.Policy
	Merge     []category.MergeRule
	Output    []grouplayout.OutputRule
	MaxSizeMB float64
}

// Default returns the rule file used when none is configured: no merges and
// one output rule per category with [DefaultTemplate].
func Default() *File {
	f := &File{}
	for _, c := range topology.All() {
		f.Output = append(f.Output, OutputSpec{Category: c.String(), Template: DefaultTemplate})
	}
	return f
}

// Compile validates f and turns it into a [Set]. size feeds the size_mb
// predicate variable; it may be nil.
//
// Every problem is a configuration error: unknown category names, predicates
// that do not compile to bool, and output rules without a template.
func (f *File) Compile(size grouplayout.SizeFunc) (*Set, error) {
	c, err := newCompiler(size)
	if err != nil {
		return nil, err
	}
	set := &Set{
		Policies:  make(map[topology.Category]category.Policy),
		MaxSizeMB: f.MaxSizeMB,
	}

	names := make([]string, 0, len(f.Categories))
	for name := range f.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id, err := parseCategory(name, "categories")
		if err != nil {
			return nil, err
		}
		set.Policies[id] = f.Categories[name].apply(category.DefaultPolicy())
	}

	for i, m := range f.Merge {
		where := fmt.Sprintf("merge[%d]", i)
		rule := category.MergeRule{Name: m.Name}
		if rule.Origin, err = parseCategory(m.Origin, where+".origin"); err != nil {
			return nil, err
		}
		if rule.Destination, err = parseCategory(m.Destination, where+".destination"); err != nil {
			return nil, err
		}
		if rule.OriginMatch, err = c.compile(m.OriginWhen, where+".origin_when"); err != nil {
			return nil, err
		}
		if rule.DestinationMatch, err = c.compile(m.DestinationWhen, where+".destination_when"); err != nil {
			return nil, err
		}
		set.Merge = append(set.Merge, rule)
	}

	for i, o := range f.Output {
		where := fmt.Sprintf("output[%d]", i)
		rule := grouplayout.OutputRule{Template: o.Template, MaxSizeMB: o.MaxSizeMB}
		if rule.Category, err = parseCategory(o.Category, where+".category"); err != nil {
			return nil, err
		}
		if rule.Match, err = c.compile(o.When, where+".when"); err != nil {
			return nil, err
		}
		set.Output = append(set.Output, rule)
	}
	if err := grouplayout.ValidateRules(set.Output); err != nil {
		return nil, err
	}
	return set, nil
}

func parseCategory(name, where string) (topology.Category, error) {
	id, err := topology.Parse(name)
	if err != nil {
		return id, errs.Wrap(errs.ErrCodeUnknownCategory, err, "%s", where)
	}
	return id, nil
}

func (p PolicySpec) apply(base category.Policy) category.Policy {
	if p.CanMoveFrom != nil {
		base.CanMoveFrom = *p.CanMoveFrom
	}
	if p.CanMoveTo != nil {
		base.CanMoveTo = *p.CanMoveTo
	}
	if p.MergeAllBeforeGrouping != nil {
		base.MergeAllBeforeGrouping = *p.MergeAllBeforeGrouping
	}
	return base
}
