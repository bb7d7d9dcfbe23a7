package path

import (
	"github.com/shibukawa/modelexpr/model"
)

// Step is one hop of a Path: a property access, optionally narrowed to a
// subtype of the property's target. Steps are created while the owning Path
// is built and never change afterwards, apart from their subscription state.
type Step struct {
	property *model.Property
	filter   *model.Type
	previous *Step
	next     []*Step
	owner    *Path

	subscribed bool
}

// Property returns the property the step reads.
func (s *Step) Property() *model.Property {
	return s.property
}

// Filter returns the subtype the step is narrowed to, or nil.
func (s *Step) Filter() *model.Type {
	return s.filter
}

// Previous returns the step this one continues from, or nil for a
// first-level step.
func (s *Step) Previous() *Step {
	return s.previous
}

// Next returns the steps that continue from this one.
func (s *Step) Next() []*Step {
	return s.next
}

// Path returns the owning path.
func (s *Step) Path() *Path {
	return s.owner
}

// IsSubscribed reports whether the step is registered with its property's
// observers.
func (s *Step) IsSubscribed() bool {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	return s.subscribed
}

// Target returns the model type the step navigates to, or nil for a value
// property.
func (s *Step) Target() *model.Type {
	switch {
	case s.filter != nil:
		return s.filter
	case s.property.IsReference():
		return s.property.RefType
	}

	return nil
}

// String renders the step in path syntax, e.g. Manager or Office<Site>.
func (s *Step) String() string {
	if s.filter == nil {
		return s.property.Name
	}

	return s.property.Name + "<" + s.filter.Name() + ">"
}

// PropertyChanged forwards a change of the observed property to the
// subscribers of the owning path.
func (s *Step) PropertyChanged(inst model.Instance, prop *model.Property) {
	s.owner.emit(ChangeEvent{Path: s.owner, Step: s, Instance: inst})
}

func (s *Step) matches(p *model.Property, filter *model.Type) bool {
	return s.property == p && s.filter == filter
}

// child returns the step for (p, filter) under parent, creating it when no
// sibling has that key yet. A nil parent means the first level.
func (path *Path) child(parent *Step, p *model.Property, filter *model.Type) *Step {
	siblings := path.first
	if parent != nil {
		siblings = parent.next
	}

	for _, s := range siblings {
		if s.matches(p, filter) {
			return s
		}
	}

	s := &Step{property: p, filter: filter, previous: parent, owner: path}

	if parent != nil {
		parent.next = append(parent.next, s)
	} else {
		path.first = append(path.first, s)
	}

	return s
}
