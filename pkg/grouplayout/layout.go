package grouplayout

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/sourceset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

// OutputRule assigns a packaging template to the subgraphs of one category.
//
// Several rules may name the same category. A subgraph uses the first rule
// for its category whose Match accepts it; pooled categories use the first
// rule for the category.
type OutputRule struct {
	Category topology.Category
	Template string
	Match    category.Predicate
	// MaxSizeMB bounds each chunk of a pooled category. Zero falls back to
	// Options.DefaultMaxSizeMB; a negative value disables splitting.
	MaxSizeMB float64
}

// Group is one output unit: a named list of assets packaged with one template.
type Group struct {
	Name      string            `json:"name"`
	Template  string            `json:"template"`
	Category  topology.Category `json:"category"`
	Nodes     []asset.ID        `json:"nodes"`
	SizeBytes int64             `json:"size_bytes"`
	// Subgraph is the source subgraph for one-to-one groups. Pooled chunks
	// leave it zero and set Chunk instead.
	Subgraph sourceset.Key `json:"subgraph,omitempty"`
	Chunk    int           `json:"chunk,omitempty"`
	Pooled   bool          `json:"pooled,omitempty"`
}

// Stats summarizes a layout.
type Stats struct {
	Groups       int `json:"groups"`
	Nodes        int `json:"nodes"`
	PooledChunks int `json:"pooled_chunks"`
	Oversized    int `json:"oversized"`
}

// Layout maps group names to groups. Order lists the names in creation order.
type Layout struct {
	Groups   map[string]*Group `json:"groups"`
	Order    []string          `json:"order"`
	Stats    Stats             `json:"stats"`
	Warnings []errs.Warning    `json:"warnings,omitempty"`
}

// Options configures the layout stage.
type Options struct {
	Rules []OutputRule
	// Catalog supplies file names for group naming. Optional.
	Catalog asset.Catalog
	// Size reports node sizes for splitting. Defaults to Catalog.Size.
	Size SizeFunc
	// DefaultMaxSizeMB applies to pooled categories whose rule sets no
	// budget. Non-positive disables splitting.
	DefaultMaxSizeMB float64
	Logger           *log.Logger
	Progress         subgraph.ProgressFunc
}

// ValidateRules checks output rules before any stage runs: every rule names
// one of the seven categories and carries a template.
func ValidateRules(rules []OutputRule) error {
	for i, r := range rules {
		if !r.Category.Valid() {
			return errs.New(errs.ErrCodeUnknownCategory, "output rule %d: unknown category %s", i, r.Category)
		}
		if err := errs.ValidateTemplateName(r.Template); err != nil {
			return errs.Wrap(errs.GetCode(err), err, "output rule %d (%s)", i, r.Category)
		}
	}
	return nil
}

type builder struct {
	table   *category.Table
	opts    Options
	logger  *log.Logger
	layout  *Layout
	seen    map[asset.ID]string
	total   int
	done    int
	ctx     context.Context
	started time.Time
}

// Build converts the categorized subgraphs of table into named groups.
//
// Categories are processed in the order they first appear in opts.Rules.
// A category whose policy pools its members yields chunks named
// "{category}_{index}"; every other category yields one group per subgraph.
// A non-empty category without a rule, or a subgraph no rule matches, is a
// configuration error.
//
// Build finishes by checking that the groups hold exactly the nodes of the
// categorized subgraphs, each once. Cancellation is checked between
// subgraphs; on cancellation the groups built so far are returned.
func Build(ctx context.Context, table *category.Table, opts Options) (*Layout, error) {
	if err := ValidateRules(opts.Rules); err != nil {
		return nil, err
	}
	if opts.Size == nil {
		opts.Size = opts.Catalog.Size
	}
	b := &builder{
		table:   table,
		opts:    opts,
		logger:  opts.Logger,
		layout:  &Layout{Groups: make(map[string]*Group)},
		seen:    make(map[asset.ID]string),
		ctx:     ctx,
		started: time.Now(),
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}

	order, byCat := b.categoryOrder()
	for _, id := range topology.All() {
		if table.Category(id).Len() > 0 && len(byCat[id]) == 0 {
			return nil, errs.New(errs.ErrCodeMissingTemplate,
				"category %s has %d subgraph(s) but no output rule", id, table.Category(id).Len())
		}
	}
	for _, id := range order {
		b.total += table.Category(id).Len()
	}

	for _, id := range order {
		var err error
		if table.Category(id).Policy.MergeAllBeforeGrouping {
			err = b.pooled(id, byCat[id][0])
		} else {
			err = b.oneToOne(id, byCat[id])
		}
		if err != nil {
			return b.layout, err
		}
	}

	if err := b.verify(); err != nil {
		return b.layout, err
	}
	b.layout.Stats.Groups = len(b.layout.Order)
	b.layout.Stats.Nodes = len(b.seen)
	b.logger.Info("built group layout",
		"groups", b.layout.Stats.Groups,
		"nodes", b.layout.Stats.Nodes,
		"pooled_chunks", b.layout.Stats.PooledChunks,
		"duration", time.Since(b.started))
	return b.layout, nil
}

func (b *builder) categoryOrder() ([]topology.Category, map[topology.Category][]OutputRule) {
	var order []topology.Category
	byCat := make(map[topology.Category][]OutputRule)
	for _, r := range b.opts.Rules {
		if _, ok := byCat[r.Category]; !ok {
			order = append(order, r.Category)
		}
		byCat[r.Category] = append(byCat[r.Category], r)
	}
	return order, byCat
}

func (b *builder) step(n int) error {
	b.done += n
	if b.opts.Progress != nil {
		b.opts.Progress(b.done, b.total)
	}
	if err := b.ctx.Err(); err != nil {
		return errs.Canceled("layout", err)
	}
	return nil
}

// =============================================================================
// One group per subgraph
// =============================================================================

func (b *builder) oneToOne(id topology.Category, rules []OutputRule) error {
	for _, info := range b.table.Subgraphs(id) {
		if err := b.ctx.Err(); err != nil {
			return errs.Canceled("layout", err)
		}
		rule, ok := firstMatch(rules, info)
		if !ok {
			return errs.New(errs.ErrCodeMissingTemplate,
				"no output rule of category %s matches subgraph %s", id, info.Key)
		}

		nodes := info.Nodes.Sorted()
		g := &Group{
			Template:  rule.Template,
			Category:  id,
			Nodes:     nodes,
			SizeBytes: b.sizeOf(nodes),
			Subgraph:  info.Key,
		}
		if err := b.claim(nodes, info.Key.String()); err != nil {
			return err
		}
		g.Name = b.register(b.nameFor(info), info.Key)
		b.add(g)

		if err := b.step(1); err != nil {
			return err
		}
	}
	return nil
}

func firstMatch(rules []OutputRule, info *subgraph.Info) (OutputRule, bool) {
	for _, r := range rules {
		if r.Match == nil || r.Match(info) {
			return r, true
		}
	}
	return OutputRule{}, false
}

// nameFor derives a descriptive name from the subgraph's shape. It returns ""
// when nothing descriptive applies.
func (b *builder) nameFor(info *subgraph.Info) string {
	if info.Name != "" {
		return info.Name
	}
	cat := b.opts.Catalog
	switch {
	case !info.Shared && info.NodeCount() == 1:
		return cat.BaseName(only(info.Nodes))
	case !info.Shared:
		return cat.BaseName(only(info.Sources))
	case info.NodeCount() == 1:
		if base := cat.BaseName(only(info.Nodes)); base != "" {
			return "Shared_" + base
		}
		return ""
	default:
		return fmt.Sprintf("Shared_%d_%d", info.SourceCount(), info.NodeCount())
	}
}

func only(s asset.Set) asset.ID {
	for id := range s {
		return id
	}
	return asset.Nil
}

// register resolves the final name: invalid names fall back to the key, and
// names already taken get a "_{key}" suffix.
func (b *builder) register(name string, key sourceset.Key) string {
	if err := errs.ValidateGroupName(name); err != nil {
		w := errs.Warnf(errs.WarnEmptyGroupName, key.String(), "no usable group name (%s), using key", errs.UserMessage(err))
		b.layout.Warnings = append(b.layout.Warnings, w)
		b.logger.Warn("group name fallback", "subgraph", key, "reason", errs.UserMessage(err))
		name = key.String()
	}
	if _, taken := b.layout.Groups[name]; taken {
		name = name + "_" + key.String()
	}
	return b.unique(name)
}

// unique appends a counter in the rare case a name is still taken.
func (b *builder) unique(name string) string {
	if _, taken := b.layout.Groups[name]; !taken {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, taken := b.layout.Groups[candidate]; !taken {
			return candidate
		}
	}
}

// =============================================================================
// Pooled categories
// =============================================================================

func (b *builder) pooled(id topology.Category, rule OutputRule) error {
	infos := b.table.Subgraphs(id)
	var nodes []asset.ID
	pool := make(map[asset.ID]sourceset.Key)
	for _, info := range infos {
		for _, n := range info.Nodes.Sorted() {
			if prev, dup := pool[n]; dup {
				return errs.New(errs.ErrCodeDuplicateNode,
					"category %s: node %s in subgraphs %s and %s", id, n, prev, info.Key)
			}
			pool[n] = info.Key
			nodes = append(nodes, n)
		}
	}

	budget := rule.MaxSizeMB
	if budget == 0 {
		budget = b.opts.DefaultMaxSizeMB
	}
	chunks := Split(nodes, b.opts.Size, MBToBytes(budget))
	for i, c := range chunks {
		if err := b.claim(c.Nodes, id.String()); err != nil {
			return err
		}
		g := &Group{
			Name:      b.unique(fmt.Sprintf("%s_%d", id, i)),
			Template:  rule.Template,
			Category:  id,
			Nodes:     c.Nodes,
			SizeBytes: c.SizeBytes,
			Chunk:     i,
			Pooled:    true,
		}
		if c.Oversized {
			b.layout.Stats.Oversized++
			w := errs.Warnf(errs.WarnOversizedNode, g.Name, "node %s alone exceeds %.2f MB",
				b.opts.Catalog.Path(c.Nodes[0]), budget)
			b.layout.Warnings = append(b.layout.Warnings, w)
			b.logger.Warn("oversized node", "group", g.Name, "node", b.opts.Catalog.Path(c.Nodes[0]), "size", c.SizeBytes)
		}
		b.add(g)
	}
	b.layout.Stats.PooledChunks += len(chunks)
	b.logger.Debug("pooled category", "category", id, "subgraphs", len(infos), "nodes", len(nodes), "chunks", len(chunks))
	return b.step(len(infos))
}

// =============================================================================
// Bookkeeping and verification
// =============================================================================

func (b *builder) add(g *Group) {
	b.layout.Groups[g.Name] = g
	b.layout.Order = append(b.layout.Order, g.Name)
}

// claim records node ownership; a node claimed twice means partitioning or
// merging broke disjointness.
func (b *builder) claim(nodes []asset.ID, owner string) error {
	for _, n := range nodes {
		if prev, dup := b.seen[n]; dup {
			return errs.New(errs.ErrCodeDuplicateNode, "node %s in groups from %s and %s", n, prev, owner)
		}
		b.seen[n] = owner
	}
	return nil
}

func (b *builder) sizeOf(nodes []asset.ID) int64 {
	var total int64
	for _, n := range nodes {
		total += nodeSize(b.opts.Size, n)
	}
	return total
}

func (b *builder) verify() error {
	want := b.table.Nodes()
	got := 0
	for _, name := range b.layout.Order {
		g := b.layout.Groups[name]
		got += len(g.Nodes)
		for _, n := range g.Nodes {
			if !want.Contains(n) {
				return errs.New(errs.ErrCodeNodeCountMismatch,
					"group %s holds node %s that no categorized subgraph has", name, n)
			}
		}
	}
	if got != want.Len() || len(b.seen) != want.Len() {
		return errs.New(errs.ErrCodeNodeCountMismatch,
			"layout holds %d node(s) (%d distinct), categorized subgraphs hold %d",
			got, len(b.seen), want.Len())
	}
	return nil
}
