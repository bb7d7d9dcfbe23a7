package model

import "errors"

// Sentinel errors for metadata definition and instance access
var (
	ErrDuplicateType      = errors.New("duplicate type name")
	ErrDuplicateProperty  = errors.New("duplicate property name")
	ErrUnknownType        = errors.New("unknown type")
	ErrRegistrySealed     = errors.New("registry is sealed")
	ErrRegistryNotSealed  = errors.New("registry is not sealed")
	ErrReadOnlyProperty   = errors.New("property is read-only")
	ErrPropertyNotOnType  = errors.New("property is not declared on the instance type")
	ErrValueTypeMismatch  = errors.New("value does not match the property type")
	ErrUnknownInstanceKey = errors.New("unknown instance key")
	ErrInvalidSchema      = errors.New("invalid schema document")
)
