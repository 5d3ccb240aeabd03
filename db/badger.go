package db

import (
	"context"
	"encoding/binary"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	entryPrefix = []byte("entry/")
	seqKey      = []byte("meta/seq")
)

type BadgerOptions struct {
	// Dir is required unless InMemory is set.
	Dir      string
	InMemory bool
}

// Badger stores msgpack-encoded entries under big-endian sequence keys so
// that key order is insertion order.
type Badger struct {
	db  *badger.DB
	seq *badger.Sequence
}

func OpenBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, xerrors.Message("badger: Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{
		logging.WithFields(logging.Fields{"component": "badger"}),
	})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, xerrors.New("open badger", err)
	}
	seq, err := db.GetSequence(seqKey, 100)
	if err != nil {
		db.Close()
		return nil, xerrors.New("badger sequence", err)
	}
	return &Badger{db: db, seq: seq}, nil
}

func entryKey(n uint64) []byte {
	k := make([]byte, len(entryPrefix)+8)
	copy(k, entryPrefix)
	binary.BigEndian.PutUint64(k[len(entryPrefix):], n)
	return k
}

func (b *Badger) Insert(_ context.Context, e model.CorpusEntry) error {
	n, err := b.seq.Next()
	if err != nil {
		return xerrors.New("next sequence", err)
	}
	val, err := msgpack.Marshal(e)
	if err != nil {
		return xerrors.New("encode entry "+e.ID, err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(n), val)
	})
}

func (b *Badger) Clear(_ context.Context) error {
	if err := b.db.DropPrefix(entryPrefix); err != nil {
		return xerrors.New("drop entries", err)
	}
	return nil
}

// each walks entries in key order until fn returns false.
func (b *Badger) each(ctx context.Context, fn func(model.CorpusEntry) bool) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(entryPrefix); it.ValidForPrefix(entryPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e model.CorpusEntry
			err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &e)
			})
			if err != nil {
				return xerrors.New(fmt.Sprintf("decode key %x", it.Item().Key()), err)
			}
			if !fn(e) {
				return nil
			}
		}
		return nil
	})
}

func (b *Badger) Query(ctx context.Context, pattern string, limit int) ([]model.CorpusEntry, error) {
	res := []model.CorpusEntry{}
	if index.Empty(pattern, limit) {
		return res, nil
	}
	needle := index.Sanitize(pattern)
	err := b.each(ctx, func(e model.CorpusEntry) bool {
		if index.Matches(e.Contour, needle) {
			res = append(res, e)
		}
		return len(res) < limit
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (b *Badger) Count(ctx context.Context) (int, error) {
	n := 0
	err := b.each(ctx, func(model.CorpusEntry) bool {
		n++
		return true
	})
	return n, err
}

func (b *Badger) Close() error {
	if err := b.seq.Release(); err != nil {
		b.db.Close()
		return err
	}
	return b.db.Close()
}

// badgerLogger routes badger warnings and errors into our logger and drops
// the chatty info/debug output.
type badgerLogger struct {
	logging.Logger
}

func (l badgerLogger) Errorf(f string, v ...any) {
	l.Logger.Error(nil, fmt.Sprintf(f, v...))
}

func (l badgerLogger) Warningf(f string, v ...any) {
	l.Logger.Warn(fmt.Sprintf(f, v...))
}

func (badgerLogger) Infof(string, ...any)  {}
func (badgerLogger) Debugf(string, ...any) {}
