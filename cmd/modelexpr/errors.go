package main

import "errors"

// Sentinel errors for command operations
var (
	ErrSchemaNotFound    = errors.New("schema file does not exist")
	ErrDataNotFound      = errors.New("data file does not exist")
	ErrUnknownRootType   = errors.New("unknown root type")
	ErrUnknownObject     = errors.New("unknown object key")
	ErrRootTypeMismatch  = errors.New("object is not an instance of the root type")
	ErrInvalidExpression = errors.New("invalid expression")
	ErrEvaluationFailed  = errors.New("evaluation failed")
)
