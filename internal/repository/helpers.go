package repository

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// ErrNotFound is returned, wrapped, when a record does not exist.
var ErrNotFound = domain.ErrNotFound

// codec encodes stored records. Map keys are sorted so unchanged records
// encode to identical bytes.
var codec = sonic.ConfigStd

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
