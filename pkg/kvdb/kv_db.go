package kvdb

import (
	"sort"
	"sync"
	"time"

	"github.com/lintang-b-s/tm-search/pkg/compress"
	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	BBOLTDB_UNITS_BUCKET = "units"
	DEFAULT_CACHE_SIZE   = 4096
)

// KVDB is the translation unit store: unit metadata keyed by unit id.
// writes collect in one bbolt write transaction until Commit; reads use the same
// transaction so they see pending writes.
type KVDB struct {
	db     *bbolt.DB
	tx     *bbolt.Tx
	codec  *compress.RecordCodec
	cache  *lru.Cache[string, *datastructure.TranslationUnit]
	memory string
	log    *zap.Logger
	closed bool
	sync.Mutex
}

func Open(path, memory string, cacheSize int, log *zap.Logger) (*KVDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrStorageCorruption, "error when opening unit store of memory %s", memory)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BBOLTDB_UNITS_BUCKET))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, util.WrapErrorf(err, util.ErrStorageCorruption, "error when preparing unit store of memory %s", memory)
	}
	return NewKVDB(db, memory, cacheSize, log)
}

func NewKVDB(db *bbolt.DB, memory string, cacheSize int, log *zap.Logger) (*KVDB, error) {
	if cacheSize <= 0 {
		cacheSize = DEFAULT_CACHE_SIZE
	}
	cache, err := lru.New[string, *datastructure.TranslationUnit](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "error when creating unit cache")
	}
	codec, err := compress.NewRecordCodec()
	if err != nil {
		return nil, err
	}
	return &KVDB{
		db:     db,
		codec:  codec,
		cache:  cache,
		memory: memory,
		log:    log,
	}, nil
}

func (db *KVDB) bucket() (*bbolt.Bucket, error) {
	if db.closed {
		return nil, util.ErrClosed
	}
	if db.tx == nil {
		tx, err := db.db.Begin(true)
		if err != nil {
			return nil, errors.Wrap(err, "error when beginning unit store transaction")
		}
		db.tx = tx
	}
	return db.tx.Bucket([]byte(BBOLTDB_UNITS_BUCKET)), nil
}

// PutUnit stores tu under tu.ID, replacing any previous record. variants are not stored here.
func (db *KVDB) PutUnit(tu *datastructure.TranslationUnit) error {
	db.Lock()
	defer db.Unlock()
	b, err := db.bucket()
	if err != nil {
		return err
	}
	record := cloneUnit(tu)
	buf, err := db.codec.Marshal(record)
	if err != nil {
		return err
	}
	if err := b.Put([]byte(tu.ID), buf); err != nil {
		return errors.Wrapf(err, "error when saving unit %s", tu.ID)
	}
	db.cache.Add(tu.ID, record)
	return nil
}

// GetUnit returns a copy of the stored unit, or util.ErrNotFound.
func (db *KVDB) GetUnit(id string) (*datastructure.TranslationUnit, error) {
	db.Lock()
	defer db.Unlock()
	if db.closed {
		return nil, util.ErrClosed
	}
	if tu, ok := db.cache.Get(id); ok {
		return cloneUnit(tu), nil
	}
	b, err := db.bucket()
	if err != nil {
		return nil, err
	}
	buf := b.Get([]byte(id))
	if buf == nil {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "unit %s not found", id)
	}
	tu, err := db.decode(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "error when reading unit %s", id)
	}
	db.cache.Add(id, tu)
	return cloneUnit(tu), nil
}

// DeleteUnit removes a unit. deleting a missing unit is not an error.
func (db *KVDB) DeleteUnit(id string) error {
	db.Lock()
	defer db.Unlock()
	b, err := db.bucket()
	if err != nil {
		return err
	}
	db.cache.Remove(id)
	if err := b.Delete([]byte(id)); err != nil {
		return errors.Wrapf(err, "error when deleting unit %s", id)
	}
	return nil
}

// ForEach visits every unit in key order. fn must not call back into the store.
func (db *KVDB) ForEach(fn func(tu *datastructure.TranslationUnit) error) error {
	db.Lock()
	defer db.Unlock()
	b, err := db.bucket()
	if err != nil {
		return err
	}
	return b.ForEach(func(k, v []byte) error {
		tu, err := db.decode(v)
		if err != nil {
			return errors.Wrapf(err, "error when reading unit %s", string(k))
		}
		return fn(tu)
	})
}

// DistinctProperty returns the sorted distinct non-empty values of one property over all units.
func (db *KVDB) DistinctProperty(name string) ([]string, error) {
	values := make(map[string]struct{})
	err := db.ForEach(func(tu *datastructure.TranslationUnit) error {
		if v := tu.Properties[name]; v != "" {
			values[v] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Count returns the number of stored units.
func (db *KVDB) Count() (int, error) {
	db.Lock()
	defer db.Unlock()
	b, err := db.bucket()
	if err != nil {
		return 0, err
	}
	return b.Stats().KeyN, nil
}

func (db *KVDB) Commit() error {
	db.Lock()
	defer db.Unlock()
	return db.commitLocked()
}

func (db *KVDB) commitLocked() error {
	if db.tx == nil {
		return nil
	}
	err := db.tx.Commit()
	db.tx = nil
	if err != nil {
		db.cache.Purge()
		return errors.Wrapf(err, "error when committing unit store of memory %s", db.memory)
	}
	return nil
}

// Rollback drops writes made since the last Commit.
func (db *KVDB) Rollback() error {
	db.Lock()
	defer db.Unlock()
	if db.tx == nil {
		return nil
	}
	err := db.tx.Rollback()
	db.tx = nil
	db.cache.Purge()
	if err != nil {
		return errors.Wrapf(err, "error when rolling back unit store of memory %s", db.memory)
	}
	return nil
}

// Close commits pending writes and closes the file. it is safe to call twice.
func (db *KVDB) Close() error {
	db.Lock()
	defer db.Unlock()
	if db.closed {
		return nil
	}
	err := db.commitLocked()
	db.closed = true
	db.codec.Close()
	if cerr := db.db.Close(); cerr != nil {
		err = errors.CombineErrors(err, errors.Wrap(cerr, "error when closing unit store"))
	}
	return err
}

func (db *KVDB) decode(buf []byte) (*datastructure.TranslationUnit, error) {
	tu := &datastructure.TranslationUnit{}
	if err := db.codec.Unmarshal(buf, tu); err != nil {
		return nil, err
	}
	if tu.Properties == nil {
		tu.Properties = make(map[string]string)
	}
	if tu.Languages == nil {
		tu.Languages = []string{}
	}
	if tu.Notes == nil {
		tu.Notes = []string{}
	}
	return tu, nil
}

func cloneUnit(tu *datastructure.TranslationUnit) *datastructure.TranslationUnit {
	c := &datastructure.TranslationUnit{
		ID:         tu.ID,
		Properties: tu.CopyProperties(),
		Languages:  append([]string{}, tu.Languages...),
		Notes:      append([]string{}, tu.Notes...),
		Variants:   make(map[string]datastructure.Variant),
	}
	return c
}
