package model

import (
	"fmt"
	"strings"
)

// EnumMember is a single named member of an enumeration.
type EnumMember struct {
	Name        string
	Value       int64
	DisplayName string
}

// EnumType is an enumeration usable as the type of a value property.
type EnumType struct {
	Name    string
	Members []EnumMember
}

// EnumValue is the runtime representation of an enumeration value.
type EnumValue struct {
	Enum  *EnumType
	Index int
}

// Member returns the enumeration member by case-sensitive name.
func (e *EnumType) Member(name string) (EnumValue, bool) {
	for i, m := range e.Members {
		if m.Name == name {
			return EnumValue{Enum: e, Index: i}, true
		}
	}

	return EnumValue{}, false
}

// MemberFold returns the enumeration member by case-insensitive name.
func (e *EnumType) MemberFold(name string) (EnumValue, bool) {
	for i, m := range e.Members {
		if strings.EqualFold(m.Name, name) {
			return EnumValue{Enum: e, Index: i}, true
		}
	}

	return EnumValue{}, false
}

// ByValue returns the member with the given numeric value.
func (e *EnumType) ByValue(value int64) (EnumValue, bool) {
	for i, m := range e.Members {
		if m.Value == value {
			return EnumValue{Enum: e, Index: i}, true
		}
	}

	return EnumValue{}, false
}

func (e *EnumType) String() string {
	return e.Name
}

// Valid reports whether v refers to a member.
func (v EnumValue) Valid() bool {
	return v.Enum != nil && v.Index >= 0 && v.Index < len(v.Enum.Members)
}

// Member returns the member v refers to.
func (v EnumValue) Member() EnumMember {
	if !v.Valid() {
		return EnumMember{}
	}

	return v.Enum.Members[v.Index]
}

// ID returns the numeric value of the member.
func (v EnumValue) ID() int64 {
	return v.Member().Value
}

// Name returns the member name.
func (v EnumValue) Name() string {
	return v.Member().Name
}

// DisplayName returns the display name, falling back to the member name.
func (v EnumValue) DisplayName() string {
	m := v.Member()
	if m.DisplayName != "" {
		return m.DisplayName
	}

	return m.Name
}

func (v EnumValue) String() string {
	if !v.Valid() {
		return fmt.Sprintf("<invalid %v>", v.Enum)
	}

	return v.Name()
}
