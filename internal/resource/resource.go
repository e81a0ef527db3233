package resource

import (
	"strings"

	"calc/internal/value"
)

// Open dispatches a DSN-like string to the right File backend by scheme,
// the `fopen(name)`-style entry point spec.md §3 describes generically
// as "File fid" — concretely, a `postgres://`/`mysql://`/`sqlite://`/
// `sqlserver://` URL opens a DBFile and a `ws://`/`wss://` URL opens a
// SocketFile.
func Open(dsn string) (value.Value, error) {
	scheme := dsn
	if i := strings.Index(dsn, "://"); i >= 0 {
		scheme = dsn[:i]
	}
	switch strings.ToLower(scheme) {
	case "ws", "wss":
		f, err := OpenSocket(dsn)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewFileValue(f), nil
	default:
		f, err := OpenDB(dsn)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewFileValue(f), nil
	}
}
