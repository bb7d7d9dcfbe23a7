package compiler_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/compiler"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/parser"
	"github.com/shibukawa/modelexpr/testhelper"
	"github.com/shibukawa/modelexpr/typeinference"
	"golang.org/x/sync/errgroup"
)

func compile(t *testing.T, root *model.Type, src string) *compiler.Program {
	t.Helper()

	tree, err := parser.Parse(root, src, parser.DefaultOptions)
	assert.NoError(t, err)

	program, err := compiler.Compile(tree)
	assert.NoError(t, err)

	return program
}

func TestInvoke(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	objects := testhelper.PersonGraph(t, r)
	person := r.MustType("Person")

	tests := []struct {
		name string
		src  string
		root string
		want string
	}{
		{name: "navigation", src: "Manager.Name", root: "bob", want: `"Alice"`},
		{name: "null navigation", src: "Manager.Name", root: "dave", want: "null"},
		{name: "deep null navigation", src: "Manager.Manager.Name", root: "bob", want: "null"},
		{name: "list operator on null navigation", src: "Manager.Reports.Count()", root: "dave", want: "null"},
		{name: "non-nullable value through null", src: "Manager.Salary", root: "dave", want: "null"},
		{name: "list operator through reference", src: "Manager.Reports.Count()", root: "bob", want: "2"},
		{name: "count", src: "Reports.Count()", root: "alice", want: "2"},
		{name: "count of empty list", src: "Reports.Count()", root: "dave", want: "0"},
		{name: "count with predicate", src: "Reports.Count(Age > 25)", root: "alice", want: "1"},
		{name: "lifted arithmetic", src: "Age + 1", root: "bob", want: "31"},
		{name: "lifted arithmetic on null", src: "Age + 1", root: "carol", want: "null"},
		{name: "relational on null", src: "Age > 40", root: "carol", want: "false"},
		{name: "equality with null", src: "Age == null", root: "carol", want: "true"},
		{name: "where select", src: "Reports.Where(Age > 25).Select(Name)", root: "alice", want: `["Bob"]`},
		{name: "model list keeps tag", src: "Reports", root: "alice", want: "List<Person>[Employee(bob), Contractor(carol)]"},
		{name: "where keeps tag", src: "Reports.Where(Name != \"Bob\")", root: "alice", want: "List<Person>[Contractor(carol)]"},
		{name: "select references", src: "Reports.Select(Manager)", root: "alice", want: "List<Person>[Employee(alice), Employee(alice)]"},
		{name: "decimal sum", src: "Reports.Sum(Salary)", root: "alice", want: "1750.25"},
		{name: "average skips null", src: "Reports.Average(Age)", root: "alice", want: "30"},
		{name: "max", src: "Reports.Max(Salary)", root: "alice", want: "950.25"},
		{name: "min string", src: "Reports.Min(Name)", root: "alice", want: `"Bob"`},
		{name: "min of empty", src: "Reports.Min(Age)", root: "dave", want: "null"},
		{name: "order by descending", src: "Reports.OrderByDescending(Salary).Select(Name)", root: "alice", want: `["Carol", "Bob"]`},
		{name: "first", src: "Reports.First().Name", root: "alice", want: `"Bob"`},
		{name: "last", src: "Reports.Last().Name", root: "alice", want: `"Carol"`},
		{name: "first or default", src: "Reports.FirstOrDefault(Age > 100)", root: "alice", want: "null"},
		{name: "any nested", src: `Reports.Any(Manager.Name == "Alice")`, root: "alice", want: "true"},
		{name: "all with null", src: "Reports.All(Age > 20)", root: "alice", want: "false"},
		{name: "except", src: "Reports.Except(Reports.Where(Age > 25))", root: "alice", want: "List<Person>[Contractor(carol)]"},
		{name: "value list contains", src: `Tags.Contains("go")`, root: "bob", want: "true"},
		{name: "null value list", src: `Tags.Contains("go")`, root: "alice", want: "null"},
		{name: "value list count", src: "Tags.Count()", root: "bob", want: "2"},
		{name: "array sum", src: "[1, 2, 3].Sum()", root: "dave", want: "6"},
		{name: "array order", src: "[3, 1, 2].OrderBy(it)", root: "dave", want: "[1, 2, 3]"},
		{name: "string methods", src: `Name.ToUpper() + "!"`, root: "alice", want: `"ALICE!"`},
		{name: "string indexer", src: "Name[0]", root: "alice", want: "A"},
		{name: "enum equality", src: `Level == "Principal"`, root: "alice", want: "true"},
		{name: "enum ordering", src: `Level > "Junior"`, root: "bob", want: "true"},
		{name: "enum display name", src: "Level.DisplayName", root: "dave", want: `"Junior Staff"`},
		{name: "decimal arithmetic", src: "Salary * 2", root: "bob", want: "1600"},
		{name: "decimal negation", src: "-Salary", root: "bob", want: "-800"},
		{name: "integer division", src: "10 / 4", root: "dave", want: "2"},
		{name: "double division", src: "10 / 4.0", root: "dave", want: "2.5"},
		{name: "conditional", src: `iif(Manager == null, "top", Manager.Name)`, root: "dave", want: `"top"`},
		{name: "projection", src: "new(Name, Reports.Count() as N)", root: "alice", want: `{Name = "Alice", N = 2}`},
		{name: "projection field", src: "new(Name as Who).Who", root: "alice", want: `"Alice"`},
		{name: "nullable members", src: "Age.HasValue", root: "carol", want: "false"},
		{name: "value or default", src: "Age.GetValueOrDefault()", root: "carol", want: "0"},
		{name: "date member", src: "Joined.Year", root: "alice", want: "2015"},
		{name: "date arithmetic", src: "(Joined + TimeSpan(1, 0, 0)).Hour", root: "alice", want: "10"},
		{name: "variadic concat skips null", src: `String.Concat(Name, "-", Age)`, root: "carol", want: `"Carol-"`},
		{name: "lifted static call", src: "Math.Max(Age, 40)", root: "carol", want: "null"},
		{name: "static call", src: "Math.Max(Age, 40)", root: "bob", want: "40"},
		{name: "three-valued and", src: "true && null", root: "dave", want: "null"},
		{name: "short circuit and", src: "false && null", root: "dave", want: "false"},
		{name: "short circuit or", src: "Manager == null || Manager.Name == \"x\"", root: "dave", want: "true"},
		{name: "concat null", src: `Name & Manager.Name`, root: "dave", want: `"Dave"`},
		{name: "subtype root", src: "Name", root: "bob", want: `"Bob"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := compile(t, person, tt.src)

			result, err := program.Invoke(objects[tt.root])
			assert.NoError(t, err)
			assert.Equal(t, tt.want, compiler.FormatValue(result))
		})
	}
}

func TestInvoke_NoRoot(t *testing.T) {
	program := compile(t, nil, "1 + 1")
	assert.False(t, program.RequiresRoot())

	result, err := program.Invoke(nil)
	assert.NoError(t, err)
	assert.Equal(t, any(int32(2)), result)
}

func TestInvoke_Errors(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	objects := testhelper.PersonGraph(t, r)
	person := r.MustType("Person")

	tests := []struct {
		name string
		src  string
		root string
		errs []error
	}{
		{name: "first of empty", src: "Reports.First(Age > 100)", root: "alice", errs: []error{modelexpr.ErrEvaluation, compiler.ErrEmptySequence}},
		{name: "divide by zero", src: "Salary / 0", root: "bob", errs: []error{modelexpr.ErrEvaluation, compiler.ErrDivideByZero}},
		{name: "integer divide by zero", src: "1 % 0", root: "bob", errs: []error{modelexpr.ErrEvaluation, compiler.ErrDivideByZero}},
		{name: "substring out of range", src: "Name.Substring(10)", root: "bob", errs: []error{modelexpr.ErrEvaluation, typeinference.ErrIndexOutOfRange}},
		{name: "list index out of range", src: "Reports[5]", root: "alice", errs: []error{modelexpr.ErrEvaluation, typeinference.ErrIndexOutOfRange}},
		{name: "nullable without value", src: "Age.Value", root: "carol", errs: []error{modelexpr.ErrEvaluation, typeinference.ErrNoValue}},
		{name: "average of empty", src: "Reports.Average(Salary)", root: "dave", errs: []error{modelexpr.ErrEvaluation, compiler.ErrEmptySequence}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := compile(t, person, tt.src)

			_, err := program.Invoke(objects[tt.root])
			for _, want := range tt.errs {
				assert.IsError(t, err, want)
			}
		})
	}
}

func TestInvoke_RootContract(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	objects := testhelper.PersonGraph(t, r)

	program := compile(t, r.MustType("Employee"), "Office")
	assert.True(t, program.RequiresRoot())

	_, err := program.Invoke(nil)
	assert.IsError(t, err, modelexpr.ErrMissingRoot)
	assert.IsError(t, err, modelexpr.ErrInvalidArgument)

	_, err = program.Invoke(objects["dave"])
	assert.IsError(t, err, modelexpr.ErrWrongRootType)

	_, err = program.Invoke(objects["core"])
	assert.IsError(t, err, modelexpr.ErrWrongRootType)

	result, err := program.Invoke(objects["alice"])
	assert.NoError(t, err)
	assert.Equal(t, any("HQ"), result)
}

func TestInvoke_ComputedAndStatic(t *testing.T) {
	r := model.NewRegistry()
	item := r.Define("Item", nil)
	name := item.AddValue("Name", model.KindString)
	item.AddComputed("Label", model.KindString, func(inst model.Instance) any {
		return "<" + inst.Get(name).(string) + ">"
	})
	item.AddStatic("Version", model.KindInt32, int32(3))
	assert.NoError(t, r.Seal())

	obj := model.NewObject(item)
	assert.NoError(t, obj.Set(name, "pen"))

	tests := []struct {
		src  string
		want any
	}{
		{src: "Name", want: "pen"},
		{src: "Label", want: "<pen>"},
		{src: "Version + 1", want: int32(4)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			result, err := compile(t, item, tt.src).Invoke(obj)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}

	assert.NoError(t, obj.Set(name, "ink"))

	result, err := compile(t, item, "Label").Invoke(obj)
	assert.NoError(t, err)
	assert.Equal(t, any("<ink>"), result)
}

func TestInvoke_Concurrent(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	objects := testhelper.PersonGraph(t, r)
	program := compile(t, r.MustType("Person"), "Reports.Where(Age > 25).Count() + Reports.Count()")

	var g errgroup.Group

	for range 32 {
		g.Go(func() error {
			for _, key := range []string{"alice", "bob", "dave"} {
				if _, err := program.Invoke(objects[key]); err != nil {
					return err
				}
			}

			return nil
		})
	}

	assert.NoError(t, g.Wait())
}

func TestDescribe(t *testing.T) {
	tree, err := parser.Parse(testhelper.PersonRegistry(t).MustType("Person"), "Manager.Name", parser.DefaultOptions)
	assert.NoError(t, err)

	want := testhelper.TrimIndent(t, `
		MEMBER_ACCESS Name [field 0] : string
			MEMBER_ACCESS Manager [field 3] : Person
				PARAMETER it [slot 0] : Person
		`)
	assert.Equal(t, want, compiler.Describe(tree))
}
