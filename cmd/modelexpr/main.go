package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/shibukawa/modelexpr"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// logger returns the engine logger at the configured log level. -v lowers
// the level to debug, where parse and compile events are logged.
func (ctx *Context) logger(config *modelexpr.Config) modelexpr.LoggerFunc {
	if ctx.Quiet {
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(config.Log.Level))); err != nil {
		level = slog.LevelInfo
	}

	if ctx.Verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(ctx.Stderr, &slog.HandlerOptions{Level: level})

	return modelexpr.SlogLogger(slog.New(handler))
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"modelexpr.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output" short:"q"`
	NoColor bool       `help:"Disable colored output"`
	Eval    EvalCmd    `cmd:"" help:"Evaluate an expression against an object"`
	Check   CheckCmd   `cmd:"" help:"Type-check an expression and show its dependency path"`
	Path    PathCmd    `cmd:"" help:"Parse a path string"`
	Tokens  TokensCmd  `cmd:"" help:"Show the tokens of an expression"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "modelexpr v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("modelexpr"),
		kong.Description("Parse, check and evaluate model expressions."),
	)

	if CLI.NoColor {
		color.NoColor = true
	}

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
