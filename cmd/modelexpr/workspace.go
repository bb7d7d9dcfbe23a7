package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
)

// SourceFlags override the schema and data files named in the configuration.
type SourceFlags struct {
	Schema string `help:"Schema YAML file (overrides config)" type:"path"`
	Data   string `help:"Instance YAML file (overrides config)" type:"path"`
}

// workspace is the loaded configuration, model registry and object graph.
type workspace struct {
	config   *modelexpr.Config
	registry *model.Registry
	objects  map[string]*model.Object
}

// load reads the configuration and schema, and the instance data when
// withData is set.
func (ctx *Context) load(flags SourceFlags, withData bool) (*workspace, error) {
	config, err := modelexpr.LoadConfig(ctx.Config)
	if err != nil {
		return nil, err
	}

	schemaPath := config.Schema
	if flags.Schema != "" {
		schemaPath = flags.Schema
	}

	if !fileExists(schemaPath) {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, schemaPath)
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	registry, err := model.LoadSchema(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", schemaPath, err)
	}

	ws := &workspace{config: config, registry: registry}

	if !withData {
		return ws, nil
	}

	dataPath := config.Data
	if flags.Data != "" {
		dataPath = flags.Data
	}

	if !fileExists(dataPath) {
		return nil, fmt.Errorf("%w: %s", ErrDataNotFound, dataPath)
	}

	data, err = os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	ws.objects, err = model.LoadInstances(registry, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load data %s: %w", dataPath, err)
	}

	if ctx.Verbose && !ctx.Quiet {
		color.New(color.FgCyan).Fprintf(ctx.Stderr, "Loaded %d types and %d objects\n", len(registry.Types()), len(ws.objects))
	}

	return ws, nil
}

// dialect returns the command-line dialect, falling back to the configured one.
func (ws *workspace) dialect(flag string) (modelexpr.Dialect, error) {
	if flag == "" {
		return ws.config.DialectValue(), nil
	}

	return modelexpr.ParseDialect(flag)
}

// resolve returns the root type and root object named on the command line.
// The type defaults to the object's type; both may be empty.
func (ws *workspace) resolve(typeName, key string) (*model.Type, *model.Object, error) {
	var root *model.Type

	if typeName != "" {
		t, ok := ws.registry.TypeByName(typeName)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownRootType, typeName)
		}

		root = t
	}

	if key == "" {
		return root, nil, nil
	}

	obj, ok := ws.objects[key]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownObject, key)
	}

	if root == nil {
		return obj.Type(), obj, nil
	}

	if !obj.Type().IsSubtypeOf(root) {
		return nil, nil, fmt.Errorf("%w: %s is %s, not %s", ErrRootTypeMismatch, key, obj.Type().Name(), root.Name())
	}

	return root, obj, nil
}

// report prints err with a source snippet and wraps it with kind.
func (ctx *Context) report(kind, err error, src string) error {
	if !ctx.Quiet {
		color.New(color.FgRed).Fprint(ctx.Stderr, modelexpr.FormatError(err, src))
	}

	return fmt.Errorf("%w: %w", kind, err)
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
