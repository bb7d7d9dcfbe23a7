package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/compiler"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/path"
	"github.com/shibukawa/modelexpr/query"
	"github.com/shibukawa/modelexpr/tokenizer"
)

// EvalCmd evaluates an expression against one object of the data file.
type EvalCmd struct {
	Sources    SourceFlags `embed:""`
	Type       string      `help:"Model type of 'it' (defaults to the type of --root)" short:"t"`
	Root       string      `help:"Key of the root object in the data file" short:"r"`
	Dialect    string      `help:"Expression dialect (native, odata)" short:"d"`
	Expression string      `arg:"" help:"Expression text"`
}

// Run executes the eval command
func (cmd *EvalCmd) Run(ctx *Context) error {
	ws, err := ctx.load(cmd.Sources, cmd.Root != "")
	if err != nil {
		return err
	}

	rootType, obj, err := ws.resolve(cmd.Type, cmd.Root)
	if err != nil {
		return err
	}

	expr, err := ctx.parse(ws, rootType, cmd.Dialect, cmd.Expression)
	if err != nil {
		return err
	}

	var root model.Instance
	if obj != nil {
		root = obj
	}

	result, err := expr.Invoke(root)
	if err != nil {
		return ctx.report(ErrEvaluationFailed, err, cmd.Expression)
	}

	if ctx.Verbose && !ctx.Quiet {
		color.New(color.FgCyan).Fprintf(ctx.Stdout, "%s = ", expr.ResultType())
	}

	fmt.Fprintln(ctx.Stdout, compiler.FormatValue(result))

	return nil
}

// CheckCmd type-checks an expression and prints its result type and
// dependency path.
type CheckCmd struct {
	Sources    SourceFlags `embed:""`
	Type       string      `help:"Model type of 'it'" short:"t"`
	Dialect    string      `help:"Expression dialect (native, odata)" short:"d"`
	Tree       bool        `help:"Print the annotated expression tree"`
	Expression string      `arg:"" help:"Expression text"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
	ws, err := ctx.load(cmd.Sources, false)
	if err != nil {
		return err
	}

	rootType, _, err := ws.resolve(cmd.Type, "")
	if err != nil {
		return err
	}

	expr, err := ctx.parse(ws, rootType, cmd.Dialect, cmd.Expression)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout, "type: %s\n", expr.ResultType())

	if p := expr.Path(); p.IsEmpty() {
		fmt.Fprintln(ctx.Stdout, "path: (none)")
	} else {
		fmt.Fprintf(ctx.Stdout, "path: %s\n", p)
	}

	if cmd.Tree {
		program, err := expr.Program()
		if err != nil {
			return ctx.report(ErrInvalidExpression, err, cmd.Expression)
		}

		if !program.RequiresRoot() && !ctx.Quiet {
			color.New(color.FgYellow).Fprintln(ctx.Stdout, "expression does not use 'it'")
		}

		fmt.Fprint(ctx.Stdout, compiler.Describe(expr.Tree()))
	}

	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintln(ctx.Stderr, "✓ Expression is valid")
	}

	return nil
}

// PathCmd parses a path string against a root type and prints its steps.
type PathCmd struct {
	Sources SourceFlags `embed:""`
	Type    string      `help:"Root model type (defaults to the type of --root)" short:"t"`
	Root    string      `help:"Key of an object whose reachable instances are listed" short:"r"`
	Path    string      `arg:"" help:"Path text, e.g. Manager.{Name,Reports<Employee>.Team}"`
}

// Run executes the path command
func (cmd *PathCmd) Run(ctx *Context) error {
	ws, err := ctx.load(cmd.Sources, cmd.Root != "")
	if err != nil {
		return err
	}

	rootType, obj, err := ws.resolve(cmd.Type, cmd.Root)
	if err != nil {
		return err
	}

	if rootType == nil {
		return fmt.Errorf("%w: --type or --root is required", ErrUnknownRootType)
	}

	p, err := path.Parse(rootType, cmd.Path, path.Options{MaxDepth: ws.config.MaxDepth})
	if err != nil {
		return ctx.report(ErrInvalidExpression, err, cmd.Path)
	}

	if p == nil {
		color.New(color.FgYellow).Fprintln(ctx.Stdout, "no path")
		return nil
	}

	fmt.Fprintln(ctx.Stdout, p)

	if !ctx.Quiet {
		writeSteps(ctx, p.Steps(), 1)
	}

	if obj != nil {
		fmt.Fprintln(ctx.Stdout, "instances:")

		for _, inst := range p.GetInstances(obj) {
			fmt.Fprintf(ctx.Stdout, "  %v\n", inst)
		}
	}

	return nil
}

func writeSteps(ctx *Context, steps []*path.Step, depth int) {
	for _, step := range steps {
		target := "value"
		if t := step.Target(); t != nil {
			target = t.Name()
		}

		fmt.Fprintf(ctx.Stdout, "%s%s.%s -> %s\n",
			strings.Repeat("  ", depth), step.Property().DeclaringType.Name(), step, target)

		writeSteps(ctx, step.Next(), depth+1)
	}
}

// TokensCmd prints the tokens of an expression.
type TokensCmd struct {
	Dialect    string `help:"Expression dialect (native, odata)" short:"d" default:"native" enum:"native,odata"`
	Whitespace bool   `help:"Include whitespace tokens"`
	Expression string `arg:"" help:"Expression text"`
}

// Run executes the tokens command
func (cmd *TokensCmd) Run(ctx *Context) error {
	dialect, err := modelexpr.ParseDialect(cmd.Dialect)
	if err != nil {
		return err
	}

	t := tokenizer.NewTokenizer(cmd.Expression, dialect, tokenizer.TokenizerOptions{SkipWhitespace: !cmd.Whitespace})

	for token, err := range t.Tokens() {
		if err != nil {
			return ctx.report(ErrInvalidExpression, err, cmd.Expression)
		}

		if token.Type == tokenizer.EOF {
			break
		}

		fmt.Fprintf(ctx.Stdout, "%d:%d\t%s\t%q\n", token.Position.Line, token.Position.Column, token.Type, token.Value)
	}

	return nil
}

func (ctx *Context) parse(ws *workspace, root *model.Type, dialectFlag, text string) (*query.Expression, error) {
	dialect, err := ws.dialect(dialectFlag)
	if err != nil {
		return nil, err
	}

	expr, err := query.Parse(root, text, query.Options{
		Dialect:  dialect,
		MaxDepth: ws.config.MaxDepth,
		Logger:   ctx.logger(ws.config),
		NoCache:  ws.config.Cache.Disabled,
	})
	if err != nil {
		return nil, ctx.report(ErrInvalidExpression, err, text)
	}

	return expr, nil
}
