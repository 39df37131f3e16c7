package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrQueryRejected marks a request the server refused to parse or execute.
	ErrQueryRejected = errors.New("db: query rejected")
)

// Op constants map to Redis command names for error context.
const (
	OpPing      = "PING"
	OpIndexInfo = "FT.INFO"
	OpSearch    = "FT.SEARCH"
	OpSynDump   = "FT.SYNDUMP"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
