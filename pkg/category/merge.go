package category

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/sourceset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

// Predicate selects subgraphs. A nil Predicate matches everything.
type Predicate func(*subgraph.Info) bool

func (p Predicate) match(info *subgraph.Info) bool { return p == nil || p(info) }

// MergeRule moves matching subgraphs of Origin into the first legal matching
// subgraph of Destination.
type MergeRule struct {
	Name             string
	Origin           topology.Category
	Destination      topology.Category
	OriginMatch      Predicate
	DestinationMatch Predicate
}

// Move is one applied merge: From was emptied into To.
type Move struct {
	From sourceset.Key `json:"from"`
	To   sourceset.Key `json:"to"`
}

// RuleReport describes the effect of one rule.
type RuleReport struct {
	Rule         string            `json:"rule"`
	Origin       topology.Category `json:"origin"`
	Destination  topology.Category `json:"destination"`
	Origins      int               `json:"origins"`      // Candidates matching the origin predicate
	Destinations int               `json:"destinations"` // Candidates matching the destination predicate
	Blocked      bool              `json:"blocked,omitempty"`
	Moves        []Move            `json:"moves,omitempty"`
}

// Moved returns the number of subgraphs moved by the rule.
func (r RuleReport) Moved() int { return len(r.Moves) }

// MergeOptions configures the merge stage.
type MergeOptions struct {
	Logger   *log.Logger
	Progress subgraph.ProgressFunc // Called after each rule
	// OnMove, if set, is called for each applied move with the donor and
	// receiver snapshots taken before the union.
	OnMove func(rule string, from, to *subgraph.Info)
}

// Merge applies rules in order. Later rules see the effect of earlier ones.
//
// For each rule, candidates are selected from a snapshot taken before the
// rule mutates anything:
//
//   - origins: members of Origin matching OriginMatch, ascending key order
//   - destinations: members of Destination matching DestinationMatch,
//     ascending key order
//
// Each origin is paired with the first destination for which the move is
// legal: Origin can move from, Destination can move to, and
// origin.Sources ⊆ destination.Sources. A subgraph never pairs with itself;
// a destination already chosen as an origin is skipped, and an origin that
// already receives is skipped, so no move chains within one rule. Only after
// all pairs are chosen are the unions applied.
//
// Cancellation is checked between rules. A rule is either applied in full or
// not at all.
func (t *Table) Merge(ctx context.Context, rules []MergeRule, opts MergeOptions) ([]RuleReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	start := time.Now()
	reports := make([]RuleReport, 0, len(rules))

	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return reports, errs.Canceled("merge", err)
		}
		report, err := t.applyRule(rule, opts.OnMove)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
		logger.Debug("merge rule applied",
			"rule", report.Rule,
			"origin", rule.Origin,
			"destination", rule.Destination,
			"moved", report.Moved(),
			"blocked", report.Blocked)

		if opts.Progress != nil {
			opts.Progress(i+1, len(rules))
		}
	}

	moved := 0
	for _, r := range reports {
		moved += r.Moved()
	}
	logger.Info("merged categories", "rules", len(rules), "moved", moved, "duration", time.Since(start))
	return reports, nil
}

func (t *Table) applyRule(rule MergeRule, onMove func(string, *subgraph.Info, *subgraph.Info)) (RuleReport, error) {
	report := RuleReport{Rule: rule.Name, Origin: rule.Origin, Destination: rule.Destination}
	if report.Rule == "" {
		report.Rule = rule.Origin.String() + "->" + rule.Destination.String()
	}

	origin, dest := t.Categories[rule.Origin], t.Categories[rule.Destination]
	if origin == nil || dest == nil {
		return report, errs.New(errs.ErrCodeUnknownCategory, "rule %s: unknown category %s or %s",
			report.Rule, rule.Origin, rule.Destination)
	}

	origins := t.candidates(origin, rule.OriginMatch)
	dests := t.candidates(dest, rule.DestinationMatch)
	report.Origins, report.Destinations = len(origins), len(dests)

	if !origin.Policy.CanMoveFrom || !dest.Policy.CanMoveTo {
		report.Blocked = true
		return report, nil
	}

	// Selection pass over the pre-rule snapshot.
	moving := make(map[sourceset.Key]bool)
	receiving := make(map[sourceset.Key]bool)
	for _, o := range origins {
		if receiving[o.Key] {
			continue
		}
		for _, d := range dests {
			if d.Key == o.Key || moving[d.Key] {
				continue
			}
			if o.Sources.SubsetOf(d.Sources) {
				report.Moves = append(report.Moves, Move{From: o.Key, To: d.Key})
				moving[o.Key] = true
				receiving[d.Key] = true
				break
			}
		}
	}

	// Mutation pass.
	for _, m := range report.Moves {
		from, to := t.Partition.Get(m.From), t.Partition.Get(m.To)
		if !from.Sources.SubsetOf(to.Sources) {
			return report, errs.New(errs.ErrCodeInvariant,
				"rule %s: sources of %s not contained in %s", report.Rule, m.From, m.To)
		}
		if onMove != nil {
			onMove(report.Rule, snapshot(from), snapshot(to))
		}
		origin.remove(m.From)
		if err := t.Partition.MoveNodes(m.From, m.To); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (t *Table) candidates(c *Category, match Predicate) []*subgraph.Info {
	var out []*subgraph.Info
	for _, k := range c.Members {
		info := t.Partition.Get(k)
		if info != nil && !info.Empty() && match.match(info) {
			out = append(out, info)
		}
	}
	return out
}

func snapshot(info *subgraph.Info) *subgraph.Info {
	cp := *info
	cp.Nodes = info.Nodes.Clone()
	cp.Sources = info.Sources.Clone()
	return &cp
}
