package db

import "errors"

// ErrNotReady is returned when the store does not answer PING before the readiness deadline.
var ErrNotReady = errors.New("db: store not ready")

// Op constants map to Redis command names for error context.
const (
	OpPing    = "PING"
	OpHGetAll = "HGETALL"
	OpScan    = "SCAN"
)

// Error records the failed command and, when known, the key it touched.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
