// Package backend builds the note register selected by LEDGER_BACKEND.
package backend

import (
	"context"

	"tutornotes/internal/ledger"
	"tutornotes/internal/services"
)

// Register records issued notes and lists them back for export.
type Register interface {
	services.NoteRecorder
	ledger.Lister
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the register, the optional publisher and a cleanup function.
type BackendResult struct {
	Register  Register
	Publisher services.Publisher // nil when AMQP is not configured
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
