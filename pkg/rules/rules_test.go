package rules

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

const tomlRules = `
max_size_mb = 8

[categories.SharedAssets]
merge_all_before_grouping = true

[categories.Hierarchies]
can_move_from = false

[[merge]]
name = "singles into shared"
origin = "SharedSingles"
destination = "SharedAssets"
origin_when = "node_count == 1"
destination_when = "source_count >= 2 && shared"

[[output]]
category = "Hierarchies"
template = "Scenes"
when = "node_count > 1"

[[output]]
category = "SharedAssets"
template = "Shared"
max_size_mb = 4
`

const yamlRules = `
max_size_mb: 8
categories:
  SharedAssets:
    merge_all_before_grouping: true
  Hierarchies:
    can_move_from: false
merge:
  - name: singles into shared
    origin: SharedSingles
    destination: SharedAssets
    origin_when: node_count == 1
    destination_when: source_count >= 2 && shared
output:
  - category: Hierarchies
    template: Scenes
    when: node_count > 1
  - category: SharedAssets
    template: Shared
    max_size_mb: 4
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFormatsAgree(t *testing.T) {
	fromTOML, err := Load(writeFile(t, "rules.toml", tomlRules))
	require.NoError(t, err)
	fromYAML, err := Load(writeFile(t, "rules.yml", yamlRules))
	require.NoError(t, err)

	assert.Equal(t, fromTOML, fromYAML)
	a, err := fromTOML.Canonical()
	require.NoError(t, err)
	b, err := fromYAML.Canonical()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCanonicalRejectsNaN(t *testing.T) {
	f := Default()
	f.MaxSizeMB = math.NaN()
	_, err := f.Canonical()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeConfig))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "rules.ini", "x=1"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeConfig))
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("[[merge]\n"), FormatTOML)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestCompile(t *testing.T) {
	f, err := Parse([]byte(tomlRules), FormatTOML)
	require.NoError(t, err)

	set, err := f.Compile(nil)
	require.NoError(t, err)

	assert.Equal(t, 8.0, set.MaxSizeMB)
	shared := set.Policies[topology.SharedAssets]
	assert.True(t, shared.MergeAllBeforeGrouping)
	assert.True(t, shared.CanMoveFrom, "unset flags keep the default")
	assert.False(t, set.Policies[topology.Hierarchies].CanMoveFrom)

	require.Len(t, set.Merge, 1)
	m := set.Merge[0]
	assert.Equal(t, "singles into shared", m.Name)
	assert.Equal(t, topology.SharedSingles, m.Origin)
	assert.Equal(t, topology.SharedAssets, m.Destination)
	require.NotNil(t, m.OriginMatch)
	require.NotNil(t, m.DestinationMatch)

	require.Len(t, set.Output, 2)
	assert.Equal(t, "Scenes", set.Output[0].Template)
	assert.NotNil(t, set.Output[0].Match)
	assert.Nil(t, set.Output[1].Match, "no expression matches everything")
	assert.Equal(t, 4.0, set.Output[1].MaxSizeMB)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		file File
		code errs.Code
	}{
		{
			name: "unknown merge origin",
			file: File{Merge: []MergeSpec{{Origin: "Bogus", Destination: "SharedAssets"}}},
			code: errs.ErrCodeUnknownCategory,
		},
		{
			name: "unclassified is not a category",
			file: File{Output: []OutputSpec{{Category: "Unclassified", Template: "T"}}},
			code: errs.ErrCodeUnknownCategory,
		},
		{
			name: "unknown policy table",
			file: File{Categories: map[string]PolicySpec{"Nope": {}}},
			code: errs.ErrCodeUnknownCategory,
		},
		{
			name: "missing template",
			file: File{Output: []OutputSpec{{Category: "Hierarchies"}}},
			code: errs.ErrCodeMissingTemplate,
		},
		{
			name: "syntax error",
			file: File{Output: []OutputSpec{{Category: "Hierarchies", Template: "T", When: "node_count >"}}},
			code: errs.ErrCodeInvalidPredicate,
		},
		{
			name: "non-bool predicate",
			file: File{Merge: []MergeSpec{{Origin: "SharedSingles", Destination: "SharedAssets", OriginWhen: "node_count + 1"}}},
			code: errs.ErrCodeInvalidPredicate,
		},
		{
			name: "undeclared variable",
			file: File{Merge: []MergeSpec{{Origin: "SharedSingles", Destination: "SharedAssets", DestinationWhen: "weight > 2"}}},
			code: errs.ErrCodeInvalidPredicate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Compile(nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err), "error: %v", err)
			assert.True(t, errs.IsConfig(err))
		})
	}
}

func TestPredicateVariables(t *testing.T) {
	a, b := asset.NewID(), asset.NewID()
	sizes := map[asset.ID]int64{a: 3 << 20, b: 1 << 20}
	size := func(id asset.ID) (int64, bool) {
		s, ok := sizes[id]
		return s, ok
	}
	info := &subgraph.Info{
		Nodes:    asset.NewSet(a, b),
		Sources:  asset.NewSet(a),
		Shared:   false,
		Name:     "Level1",
		Category: topology.Hierarchies,
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"node_count == 2", true},
		{"source_count == 1 && !shared", true},
		{"category == 'Hierarchies'", true},
		{"name.startsWith('Level')", true},
		{"size_mb == 4.0", true},
		{"size_mb > 4.0", false},
		{"key.size() == 16", true},
		{"int(name) > 0", false}, // runtime error rejects
	}
	c, err := newCompiler(size)
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := c.compile(tt.expr, "test")
			require.NoError(t, err)
			assert.Equal(t, tt.want, p(info))
		})
	}
}

func TestDefault(t *testing.T) {
	set, err := Default().Compile(nil)
	require.NoError(t, err)
	assert.Empty(t, set.Merge)
	assert.Len(t, set.Output, len(topology.All()))
	for _, r := range set.Output {
		assert.Equal(t, DefaultTemplate, r.Template)
	}
}
