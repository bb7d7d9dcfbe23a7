// Package path derives the dependencies of an expression: a Path is a forest
// of Steps describing every property an expression result depends on. Paths
// are built from parsed expression trees or from path strings such as
// "Manager.{Name,Reports.Name}" and wire change observers as one unit.
package path

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/shibukawa/modelexpr/model"
)

// ErrDisposed is returned when subscribing to a disposed path.
var ErrDisposed = errors.New("path is disposed")

// ChangeEvent reports that an observed property changed on Instance.
type ChangeEvent struct {
	Path     *Path
	Step     *Step
	Instance model.Instance
}

// Path is the branching tree of Steps an expression depends on.
type Path struct {
	source string
	root   *model.Type
	first  []*Step

	mu       sync.Mutex
	handlers map[uint64]func(ChangeEvent)
	nextID   uint64
	attached bool
	disposed bool
}

func newPath(root *model.Type, source string) *Path {
	return &Path{source: source, root: root}
}

// Source returns the text the path was built from: a path string or an
// expression.
func (p *Path) Source() string {
	return p.source
}

// Root returns the model type the first-level steps start from.
func (p *Path) Root() *model.Type {
	return p.root
}

// Steps returns the first-level steps.
func (p *Path) Steps() []*Step {
	return slices.Clone(p.first)
}

// IsEmpty reports whether the path has no steps.
func (p *Path) IsEmpty() bool {
	return len(p.first) == 0
}

// Walk visits every step depth-first, parents before children. Returning
// false from fn skips the step's children.
func (p *Path) Walk(fn func(*Step) bool) {
	var visit func(steps []*Step)
	visit = func(steps []*Step) {
		for _, s := range steps {
			if fn(s) {
				visit(s.next)
			}
		}
	}

	visit(p.first)
}

// String renders the path in path-string syntax. Parsing the result against
// the same root type yields an equal path.
func (p *Path) String() string {
	return renderSteps(p.first)
}

func renderSteps(steps []*Step) string {
	parts := make([]string, 0, len(steps))

	for _, s := range steps {
		part := renderStep(s)
		if !slices.Contains(parts, part) {
			parts = append(parts, part)
		}
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}

	return "{" + strings.Join(parts, ",") + "}"
}

func renderStep(s *Step) string {
	if len(s.next) == 0 {
		return s.String()
	}

	return s.String() + "." + renderSteps(s.next)
}

// Equal reports whether both paths have the same steps, filters and
// branching. Sibling order is not significant.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}

	return p.root == other.root && equalSteps(p.first, other.first)
}

func equalSteps(a, b []*Step) bool {
	if len(a) != len(b) {
		return false
	}

	for _, s := range a {
		i := slices.IndexFunc(b, func(o *Step) bool { return o.matches(s.property, s.filter) })
		if i < 0 || !equalSteps(s.next, b[i].next) {
			return false
		}
	}

	return true
}

// GetInstances returns root followed by every instance reachable along the
// path, each once, in visiting order.
func (p *Path) GetInstances(root model.Instance) []model.Instance {
	if p == nil || root == nil {
		return nil
	}

	seen := map[model.Instance]struct{}{root: {}}
	result := []model.Instance{root}

	var visit func(steps []*Step, inst model.Instance)
	visit = func(steps []*Step, inst model.Instance) {
		for _, s := range steps {
			if !s.property.IsReference() || !inst.Type().IsSubtypeOf(s.property.DeclaringType) {
				continue
			}

			for _, target := range references(inst.Get(s.property)) {
				if s.filter != nil && !target.Type().IsSubtypeOf(s.filter) {
					continue
				}

				if _, ok := seen[target]; !ok {
					seen[target] = struct{}{}
					result = append(result, target)
				}

				visit(s.next, target)
			}
		}
	}

	visit(p.first, root)

	return result
}

func references(v any) []model.Instance {
	switch tv := v.(type) {
	case model.List:
		return slices.DeleteFunc(slices.Clone(tv.Items), func(inst model.Instance) bool { return inst == nil })
	case model.Instance:
		return []model.Instance{tv}
	}

	return nil
}

// Subscribe registers handler for changes of any property on the path. The
// first subscriber registers every step with its property's observers; the
// returned function removes the subscription and the last one deregisters
// every step again.
func (p *Path) Subscribe(handler func(ChangeEvent)) (unsubscribe func(), err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return nil, ErrDisposed
	}

	if p.handlers == nil {
		p.handlers = make(map[uint64]func(ChangeEvent))
	}

	id := p.nextID
	p.nextID++
	p.handlers[id] = handler

	if !p.attached {
		p.attach()
	}

	var once sync.Once

	return func() {
		once.Do(func() { p.remove(id) })
	}, nil
}

func (p *Path) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.handlers, id)

	if len(p.handlers) == 0 && p.attached {
		p.detach()
	}
}

// SubscriberCount returns the number of active subscriptions.
func (p *Path) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.handlers)
}

// Dispose drops every subscription, deregistering the steps if needed. A
// disposed path cannot be subscribed again.
func (p *Path) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.attached {
		p.detach()
	}

	p.handlers = nil
	p.disposed = true
}

// attach and detach run with p.mu held.
func (p *Path) attach() {
	p.Walk(func(s *Step) bool {
		s.property.Observers().Add(s)
		s.subscribed = true

		return true
	})

	p.attached = true
}

func (p *Path) detach() {
	var steps []*Step

	p.Walk(func(s *Step) bool {
		steps = append(steps, s)
		return true
	})

	for _, s := range slices.Backward(steps) {
		s.property.Observers().Remove(s)
		s.subscribed = false
	}

	p.attached = false
}

func (p *Path) emit(event ChangeEvent) {
	p.mu.Lock()

	handlers := make([]func(ChangeEvent), 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}

	p.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}
