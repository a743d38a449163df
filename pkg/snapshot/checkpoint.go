package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
)

// Version is the checkpoint format version. Readers reject other versions.
const Version = 1

// Stage names a pipeline stage whose output a checkpoint holds.
type Stage string

const (
	StagePartition Stage = "partition"
	StageClassify  Stage = "classify"
	StageMerge     Stage = "merge"
	StageLayout    Stage = "layout"
)

// Checkpoint is the envelope for one stage result. Exactly one payload field
// matching Stage is set: Partition for partition, Table for classify and
// merge, Layout for layout.
type Checkpoint struct {
	Version int   `json:"version"`
	Stage   Stage `json:"stage"`
	// Input identifies the graph, ignore list and options the result was
	// computed from. Empty when unknown.
	Input string `json:"input,omitempty"`

	Partition *subgraph.Partition   `json:"partition,omitempty"`
	Table     *category.Table       `json:"table,omitempty"`
	Reports   []category.RuleReport `json:"reports,omitempty"`
	Layout    *grouplayout.Layout   `json:"layout,omitempty"`
}

// Validate checks the envelope and the invariants of its payload. A decoded
// partition or table is re-indexed so it can be used by later stages.
func (c *Checkpoint) Validate() error {
	if c.Version != Version {
		return errs.New(errs.ErrCodeInvalidFormat, "checkpoint version %d, want %d", c.Version, Version)
	}
	switch c.Stage {
	case StagePartition:
		if c.Partition == nil {
			return errs.New(errs.ErrCodeInvalidFormat, "partition checkpoint has no partition")
		}
		return c.Partition.Validate()
	case StageClassify, StageMerge:
		if c.Table == nil {
			return errs.New(errs.ErrCodeInvalidFormat, "%s checkpoint has no table", c.Stage)
		}
		return c.Table.Validate()
	case StageLayout:
		if c.Layout == nil {
			return errs.New(errs.ErrCodeInvalidFormat, "layout checkpoint has no layout")
		}
		return nil
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown checkpoint stage %q", c.Stage)
	}
}

// Expect returns an error unless the checkpoint holds one of stages.
func (c *Checkpoint) Expect(stages ...Stage) error {
	for _, s := range stages {
		if c.Stage == s {
			return nil
		}
	}
	return errs.New(errs.ErrCodeInvalidInput, "checkpoint holds %s output, want %v", c.Stage, stages)
}

// PartitionCheckpoint wraps a partition result.
func PartitionCheckpoint(input string, p *subgraph.Partition) *Checkpoint {
	return &Checkpoint{Version: Version, Stage: StagePartition, Input: input, Partition: p}
}

// TableCheckpoint wraps a classify or merge result.
func TableCheckpoint(stage Stage, input string, t *category.Table, reports []category.RuleReport) *Checkpoint {
	return &Checkpoint{Version: Version, Stage: stage, Input: input, Table: t, Reports: reports}
}

// LayoutCheckpoint wraps a layout result.
func LayoutCheckpoint(input string, l *grouplayout.Layout) *Checkpoint {
	return &Checkpoint{Version: Version, Stage: StageLayout, Input: input, Layout: l}
}

// MarshalCheckpoint encodes c as indented JSON.
func MarshalCheckpoint(c *Checkpoint) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalCheckpoint decodes and validates a checkpoint.
func UnmarshalCheckpoint(data []byte) (*Checkpoint, error) {
	return ReadCheckpoint(bytes.NewReader(data))
}

// WriteCheckpoint writes c as JSON to w.
func WriteCheckpoint(c *Checkpoint, w io.Writer) error { return encode(w, c) }

// WriteCheckpointFile writes c to a JSON file.
func WriteCheckpointFile(c *Checkpoint, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteCheckpoint(c, w) })
}

// ReadCheckpoint decodes and validates a checkpoint from r.
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode checkpoint")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadCheckpointFile reads and validates a checkpoint file.
func ReadCheckpointFile(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()
	c, err := ReadCheckpoint(f)
	if err != nil {
		return nil, errs.Wrap(errs.GetCode(err), err, "%s", path)
	}
	return c, nil
}
