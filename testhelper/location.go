package testhelper

import (
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
)

// GetCaller returns " (file.go:line)" for the caller, appended to table test
// names so a failing row points back at its declaration.
func GetCaller(t *testing.T) string {
	t.Helper()

	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return " (unknown)"
	}

	return fmt.Sprintf(" (%s:%d)", filepath.Base(file), line)
}
