package db

import "errors"

var (
	// ErrKeyNotFound is returned by KV reads for a missing or expired key.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound is returned when the named FT index does not exist.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex when the index is already built.
	ErrIndexExists = errors.New("db: index already exists")
	// ErrSearchUnavailable means the engine has no search module loaded.
	// Listing search then runs on the cosine scan.
	ErrSearchUnavailable = errors.New("db: search module unavailable")
)

// Command names recorded in Error.Op.
const (
	OpPing        = "PING"
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpExists      = "EXISTS"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error records which storage command failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
