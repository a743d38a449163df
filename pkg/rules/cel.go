package rules

import (
	"github.com/google/cel-go/cel"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
)

// Variables visible to predicate expressions.
const (
	VarNodeCount   = "node_count"
	VarSourceCount = "source_count"
	VarShared      = "shared"
	VarCategory    = "category"
	VarName        = "name"
	VarKey         = "key"
	VarSizeMB      = "size_mb"
)

// compiler turns CEL expressions into subgraph predicates.
type compiler struct {
	env  *cel.Env
	size grouplayout.SizeFunc
}

func newCompiler(size grouplayout.SizeFunc) (*compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarNodeCount, cel.IntType),
		cel.Variable(VarSourceCount, cel.IntType),
		cel.Variable(VarShared, cel.BoolType),
		cel.Variable(VarCategory, cel.StringType),
		cel.Variable(VarName, cel.StringType),
		cel.Variable(VarKey, cel.StringType),
		cel.Variable(VarSizeMB, cel.DoubleType),
	)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create predicate environment")
	}
	return &compiler{env: env, size: size}, nil
}

// compile returns nil for an empty expression, which matches everything.
// Evaluation errors make the predicate reject the subgraph.
func (c *compiler) compile(expr, where string) (category.Predicate, error) {
	if expr == "" {
		return nil, nil
	}
	ast, iss := c.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPredicate, iss.Err(), "%s: %q", where, expr)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errs.New(errs.ErrCodeInvalidPredicate, "%s: %q must evaluate to bool, got %s",
			where, expr, ast.OutputType())
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPredicate, err, "%s: %q", where, expr)
	}

	return func(info *subgraph.Info) bool {
		out, _, err := prg.Eval(c.activation(info))
		if err != nil {
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	}, nil
}

func (c *compiler) activation(info *subgraph.Info) map[string]any {
	var bytes int64
	if c.size != nil {
		for n := range info.Nodes {
			if s, ok := c.size(n); ok && s > 0 {
				bytes += s
			}
		}
	}
	return map[string]any{
		VarNodeCount:   int64(info.NodeCount()),
		VarSourceCount: int64(info.SourceCount()),
		VarShared:      info.Shared,
		VarCategory:    info.Category.String(),
		VarName:        info.Name,
		VarKey:         info.Key.String(),
		VarSizeMB:      float64(bytes) / (1024 * 1024),
	}
}
