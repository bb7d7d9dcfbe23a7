package path_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/path"
	"github.com/shibukawa/modelexpr/testhelper"
	"golang.org/x/sync/errgroup"
)

func countSteps(p *path.Path) int {
	n := 0

	p.Walk(func(*path.Step) bool {
		n++
		return true
	})

	return n
}

func assertUniqueSiblings(t *testing.T, steps []*path.Step) {
	t.Helper()

	for i, a := range steps {
		for _, b := range steps[i+1:] {
			if a.Property() == b.Property() && a.Filter() == b.Filter() {
				t.Fatalf("duplicate sibling step %s", a)
			}
		}

		assertUniqueSiblings(t, a.Next())
	}
}

func TestParse(t *testing.T) {
	person := testhelper.PersonRegistry(t).MustType("Person")

	tests := []struct {
		name  string
		src   string
		want  string
		steps int
	}{
		{name: "property", src: "Name", want: "Name", steps: 1},
		{name: "navigation", src: "Manager.Name", want: "Manager.Name", steps: 2},
		{name: "group", src: "{Name,Manager.Name}", want: "{Name,Manager.Name}", steps: 3},
		{name: "nested group", src: "Manager.{Name,Reports.Name}", want: "Manager.{Name,Reports.Name}", steps: 4},
		{name: "whitespace", src: " Manager . { Name , Age } ", want: "Manager.{Name,Age}", steps: 3},
		{name: "list navigation", src: "Reports.Manager.Name", want: "Reports.Manager.Name", steps: 3},
		{name: "sibling subtypes branch", src: "Manager.Team.Name", want: "Manager.Team.Name", steps: 5},
		{name: "branch with different targets", src: "Manager.Office", want: "Manager.Office", steps: 3},
		{name: "branch local step prunes the rest", src: "Manager.Office.City", want: "Manager.Office.City", steps: 3},
		{name: "filter", src: "Manager<Employee>.Office", want: "Manager<Employee>.Office", steps: 2},
		{name: "filter with group", src: "Manager<Contractor>.{Agency,Office.City}", want: "Manager<Contractor>.{Agency,Office.City}", steps: 4},
		{name: "filter on list", src: "Reports<Employee>.Team.Lead", want: "Reports<Employee>.Team.Lead", steps: 3},
		{name: "duplicate alternatives collapse", src: "{Name,Name}", want: "Name", steps: 1},
		{name: "redundant group", src: "{{Manager}.Name}", want: "Manager.Name", steps: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := path.Parse(person, tt.src, path.DefaultOptions)
			assert.NoError(t, err)
			assert.NotZero(t, p)
			assert.Equal(t, tt.want, p.String())
			assert.Equal(t, tt.steps, countSteps(p))
			assert.Equal(t, tt.src, p.Source())
			assertUniqueSiblings(t, p.Steps())

			again, err := path.Parse(person, p.String(), path.DefaultOptions)
			assert.NoError(t, err)
			assert.True(t, p.Equal(again), "round trip of %q", p.String())
		})
	}
}

func TestParse_Structure(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	person := r.MustType("Person")

	t.Run("two first-level steps", func(t *testing.T) {
		p, err := path.Parse(person, "{Name,Manager.Name}", path.DefaultOptions)
		assert.NoError(t, err)

		steps := p.Steps()
		assert.Equal(t, 2, len(steps))
		assert.Equal(t, "Name", steps[0].String())
		assert.Equal(t, 0, len(steps[0].Next()))
		assert.Equal(t, "Manager", steps[1].String())
		assert.Equal(t, 1, len(steps[1].Next()))
		assert.Equal(t, "Name", steps[1].Next()[0].String())
		assert.Equal(t, steps[1], steps[1].Next()[0].Previous())
		assert.Equal(t, p, steps[1].Path())
	})

	t.Run("branches keep declaring types", func(t *testing.T) {
		p, err := path.Parse(person, "Manager.Team", path.DefaultOptions)
		assert.NoError(t, err)

		teams := p.Steps()[0].Next()
		assert.Equal(t, 2, len(teams))
		assert.Equal(t, r.MustType("Employee"), teams[0].Property().DeclaringType)
		assert.Equal(t, r.MustType("Contractor"), teams[1].Property().DeclaringType)
	})

	t.Run("dead branches are pruned", func(t *testing.T) {
		p, err := path.Parse(person, "Manager.Office.City", path.DefaultOptions)
		assert.NoError(t, err)

		employeeOffice, _ := r.MustType("Employee").Property("Office")
		p.Walk(func(s *path.Step) bool {
			assert.NotEqual(t, employeeOffice, s.Property())
			return true
		})
	})

	t.Run("filter narrows the target", func(t *testing.T) {
		p, err := path.Parse(person, "Manager<Employee>", path.DefaultOptions)
		assert.NoError(t, err)

		step := p.Steps()[0]
		assert.Equal(t, r.MustType("Employee"), step.Filter())
		assert.Equal(t, r.MustType("Employee"), step.Target())
	})
}

func TestParse_NoPath(t *testing.T) {
	person := testhelper.PersonRegistry(t).MustType("Person")

	for _, src := range []string{
		"Bogus",
		"Manager.Bogus",
		"{Name,Bogus}",
		"Manager<Employee>.Agency",
		"Reports.Team.Bogus",
	} {
		t.Run(src, func(t *testing.T) {
			p, err := path.Parse(person, src, path.DefaultOptions)
			assert.NoError(t, err)
			assert.Zero(t, p)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	person := testhelper.PersonRegistry(t).MustType("Person")

	tests := []struct {
		name   string
		src    string
		err    error
		column int
	}{
		{name: "unclosed group", src: "Manager.{Name", err: modelexpr.ErrUnmatchedDelimiter, column: 9},
		{name: "unopened group", src: "Name}", err: modelexpr.ErrUnmatchedDelimiter, column: 5},
		{name: "navigation through value", src: "Name.Length", err: modelexpr.ErrNotReference, column: 6},
		{name: "filter outside hierarchy", src: "Manager<Site>.Name", err: modelexpr.ErrIncompatibleFilter, column: 9},
		{name: "filter on value", src: "Name<Person>", err: modelexpr.ErrIncompatibleFilter, column: 6},
		{name: "unknown filter type", src: "Manager<Nope>", err: modelexpr.ErrUnknownFilterType, column: 9},
		{name: "empty step", src: "Manager..Name", err: modelexpr.ErrUnexpectedToken, column: 8},
		{name: "trailing operator", src: "Manager.Name + 1", err: modelexpr.ErrUnexpectedToken, column: 14},
		{name: "empty alternative", src: "{Name,}", err: modelexpr.ErrUnexpectedToken, column: 1},
		{name: "empty input", src: "", err: modelexpr.ErrUnexpectedEndOfInput, column: 1},
		{name: "invalid character", src: "Name#", err: modelexpr.ErrInvalidCharacter, column: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := path.Parse(person, tt.src, path.DefaultOptions)
			assert.Zero(t, p)
			assert.IsError(t, err, tt.err)

			var perr *modelexpr.Error
			assert.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.column, perr.Position.Column)
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	person := testhelper.PersonRegistry(t).MustType("Person")
	src := strings.Repeat("{", 5) + "Name" + strings.Repeat("}", 5)

	_, err := path.Parse(person, src, path.Options{MaxDepth: 3})
	assert.IsError(t, err, modelexpr.ErrDepthExceeded)

	p, err := path.Parse(person, src, path.DefaultOptions)
	assert.NoError(t, err)
	assert.Equal(t, "Name", p.String())
}

func TestParse_Deterministic(t *testing.T) {
	person := testhelper.PersonRegistry(t).MustType("Person")
	src := "{Manager.{Team.Lead,Office},Reports<Contractor>.Agency}"

	first, err := path.Parse(person, src, path.DefaultOptions)
	assert.NoError(t, err)

	second, err := path.Parse(person, src, path.DefaultOptions)
	assert.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.String(), second.String())
}

func TestGetInstances(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	objects := testhelper.PersonGraph(t, r)
	person := r.MustType("Person")

	tests := []struct {
		src  string
		root string
		want []string
	}{
		{src: "Reports.Manager", root: "alice", want: []string{"alice", "bob", "carol"}},
		{src: "Manager.Name", root: "dave", want: []string{"dave"}},
		{src: "Manager.Name", root: "bob", want: []string{"bob", "alice"}},
		{src: "Team.Members", root: "bob", want: []string{"bob", "core", "alice", "carol"}},
		{src: "Reports<Contractor>.Office", root: "alice", want: []string{"alice", "carol", "lab"}},
		{src: "{Manager,Reports}", root: "alice", want: []string{"alice", "bob", "carol"}},
	}

	for _, tt := range tests {
		t.Run(tt.src+" on "+tt.root, func(t *testing.T) {
			p, err := path.Parse(person, tt.src, path.DefaultOptions)
			assert.NoError(t, err)

			var keys []string
			for _, inst := range p.GetInstances(objects[tt.root]) {
				keys = append(keys, inst.(*model.Object).Key())
			}

			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestSubscribe(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	objects := testhelper.PersonGraph(t, r)
	person := r.MustType("Person")
	name, _ := person.Property("Name")
	manager, _ := person.Property("Manager")
	reports, _ := person.Property("Reports")

	p, err := path.Parse(person, "Manager.{Name,Reports.Name}", path.DefaultOptions)
	assert.NoError(t, err)

	var events []path.ChangeEvent

	unsubscribe1, err := p.Subscribe(func(e path.ChangeEvent) { events = append(events, e) })
	assert.NoError(t, err)

	unsubscribe2, err := p.Subscribe(func(path.ChangeEvent) {})
	assert.NoError(t, err)

	assert.Equal(t, 2, p.SubscriberCount())
	assert.Equal(t, 1, manager.Observers().Count())
	assert.Equal(t, 1, reports.Observers().Count())
	assert.Equal(t, 2, name.Observers().Count())

	p.Walk(func(s *path.Step) bool {
		assert.True(t, s.IsSubscribed())
		return true
	})

	assert.NoError(t, objects["bob"].Set(name, "Robert"))
	assert.Equal(t, 2, len(events))
	assert.Equal(t, name, events[0].Step.Property())
	assert.Equal(t, model.Instance(objects["bob"]), events[0].Instance)
	assert.Equal(t, p, events[0].Path)

	unsubscribe1()
	unsubscribe1()
	assert.Equal(t, 2, name.Observers().Count())

	unsubscribe2()
	assert.Equal(t, 0, p.SubscriberCount())
	assert.Equal(t, 0, manager.Observers().Count())
	assert.Equal(t, 0, reports.Observers().Count())
	assert.Equal(t, 0, name.Observers().Count())

	p.Walk(func(s *path.Step) bool {
		assert.False(t, s.IsSubscribed())
		return true
	})

	assert.NoError(t, objects["bob"].Set(name, "Bob"))
	assert.Equal(t, 2, len(events))
}

func TestDispose(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	person := r.MustType("Person")
	manager, _ := person.Property("Manager")

	p, err := path.Parse(person, "Manager.Manager", path.DefaultOptions)
	assert.NoError(t, err)

	_, err = p.Subscribe(func(path.ChangeEvent) {})
	assert.NoError(t, err)
	assert.Equal(t, 2, manager.Observers().Count())

	p.Dispose()
	assert.Equal(t, 0, manager.Observers().Count())

	_, err = p.Subscribe(func(path.ChangeEvent) {})
	assert.IsError(t, err, path.ErrDisposed)
}

func TestSubscribe_Balance(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	person := r.MustType("Person")
	name, _ := person.Property("Name")

	var g errgroup.Group

	for range 16 {
		g.Go(func() error {
			p, err := path.Parse(person, "{Name,Manager.Name,Reports.Name}", path.DefaultOptions)
			if err != nil {
				return err
			}

			for range 10 {
				unsubscribe, err := p.Subscribe(func(path.ChangeEvent) {})
				if err != nil {
					return err
				}

				unsubscribe()
			}

			return nil
		})
	}

	assert.NoError(t, g.Wait())
	assert.Equal(t, 0, name.Observers().Count())
}

func TestCache(t *testing.T) {
	person := testhelper.PersonRegistry(t).MustType("Person")
	cache := path.NewCache(path.DefaultOptions)

	first, err := cache.Parse(person, "Manager.Name")
	assert.NoError(t, err)

	second, err := cache.Parse(person, "Manager.Name")
	assert.NoError(t, err)
	assert.True(t, first == second)

	missing, err := cache.Parse(person, "Bogus")
	assert.NoError(t, err)
	assert.Zero(t, missing)

	_, err = cache.Parse(person, "Manager.{")
	assert.IsError(t, err, modelexpr.ErrUnmatchedDelimiter)
	assert.Equal(t, 2, cache.Len())

	var g errgroup.Group

	results := make([]*path.Path, 32)
	for i := range results {
		g.Go(func() error {
			p, err := cache.Parse(person, "Reports.{Name,Age}")
			results[i] = p

			return err
		})
	}

	assert.NoError(t, g.Wait())

	for _, p := range results {
		assert.True(t, p == results[0])
	}
}
