// Package db provides the persistent index.Index backends and picks one
// from a store URI.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeffreytso/contourdex/index"
	"github.com/mdobak/go-xerrors"
)

var ErrUnknownScheme = xerrors.Message("unknown store scheme")

// Open connects to the store named by uri:
//
//	memory://
//	sqlite://path/to/file.db
//	mongodb://host:port/database
//	badger://path/to/dir
func Open(ctx context.Context, uri string) (index.Index, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, xerrors.New(fmt.Sprintf("store uri %q", uri), ErrUnknownScheme)
	}

	switch scheme {
	case "memory":
		return index.NewMemory(), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(rest)
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, uri)
	case "badger":
		return OpenBadger(BadgerOptions{Dir: rest})
	default:
		return nil, xerrors.New(fmt.Sprintf("store uri %q", uri), ErrUnknownScheme)
	}
}
