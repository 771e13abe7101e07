package index

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	BBOLTDB_POSTINGS_BUCKET = "postings"
	FINGERPRINT_SIZE        = 8
)

// languageIndex is the on-disk sorted multimap of one language. writes stay in tx until Commit.
type languageIndex struct {
	db *bbolt.DB
	tx *bbolt.Tx
}

// FuzzyIndex keeps one persistent (fingerprint, unit id) multimap per language.
// per-language handles are opened lazily and all of them share one lock.
type FuzzyIndex struct {
	dir       string
	memory    string
	languages map[string]*languageIndex
	log       *zap.Logger
	closed    bool
	sync.Mutex
}

func NewFuzzyIndex(dir, memory string, log *zap.Logger) (*FuzzyIndex, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, util.WrapErrorf(err, util.ErrConfiguration, "cannot create fuzzy index directory for memory %s", memory)
	}
	return &FuzzyIndex{
		dir:       dir,
		memory:    memory,
		languages: make(map[string]*languageIndex),
		log:       log,
	}, nil
}

// PostingKey is bigEndian(fingerprint) followed by the unit id, so all ids of one fingerprint are contiguous.
func PostingKey(fingerprint uint64, unitID string) []byte {
	key := make([]byte, FINGERPRINT_SIZE+len(unitID))
	binary.BigEndian.PutUint64(key, fingerprint)
	copy(key[FINGERPRINT_SIZE:], unitID)
	return key
}

func fingerprintPrefix(fingerprint uint64) []byte {
	prefix := make([]byte, FINGERPRINT_SIZE)
	binary.BigEndian.PutUint64(prefix, fingerprint)
	return prefix
}

// DecodePostingKey splits a key made by PostingKey.
func DecodePostingKey(key []byte) (uint64, string, error) {
	if len(key) < FINGERPRINT_SIZE {
		return 0, "", errors.Newf("posting key too short: %d bytes", len(key))
	}
	return binary.BigEndian.Uint64(key[:FINGERPRINT_SIZE]), string(key[FINGERPRINT_SIZE:]), nil
}

// openOrCreate must be called with the lock held.
func (fi *FuzzyIndex) openOrCreate(lang string) (*languageIndex, error) {
	if fi.closed {
		return nil, util.ErrClosed
	}
	if li, ok := fi.languages[lang]; ok {
		return li, nil
	}

	path := filepath.Join(fi.dir, lang+".db")
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrStorageCorruption, "error when opening %s fuzzy index of memory %s", lang, fi.memory)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BBOLTDB_POSTINGS_BUCKET))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, util.WrapErrorf(err, util.ErrStorageCorruption, "error when preparing %s fuzzy index of memory %s", lang, fi.memory)
	}

	li := &languageIndex{db: db}
	fi.languages[lang] = li
	fi.log.Debug("fuzzy index opened", zap.String("memory", fi.memory), zap.String("lang", lang), zap.String("path", path))
	return li, nil
}

// writeTx returns the pending write transaction of lang, beginning one if needed.
func (li *languageIndex) writeTx() (*bbolt.Tx, error) {
	if li.tx != nil {
		return li.tx, nil
	}
	tx, err := li.db.Begin(true)
	if err != nil {
		return nil, errors.Wrap(err, "error when beginning fuzzy index transaction")
	}
	li.tx = tx
	return tx, nil
}

// Add inserts (fingerprint, unitID) for lang. inserting an existing pair is a no-op.
func (fi *FuzzyIndex) Add(lang string, fingerprint uint64, unitID string) error {
	fi.Lock()
	defer fi.Unlock()
	li, err := fi.openOrCreate(lang)
	if err != nil {
		return err
	}
	tx, err := li.writeTx()
	if err != nil {
		return err
	}
	b := tx.Bucket([]byte(BBOLTDB_POSTINGS_BUCKET))
	key := PostingKey(fingerprint, unitID)
	if b.Get(key) != nil {
		return nil
	}
	return b.Put(key, []byte{})
}

// AddAll indexes every fingerprint of one variant under a single lock acquisition.
func (fi *FuzzyIndex) AddAll(lang string, fingerprints []uint64, unitID string) error {
	fi.Lock()
	defer fi.Unlock()
	li, err := fi.openOrCreate(lang)
	if err != nil {
		return err
	}
	tx, err := li.writeTx()
	if err != nil {
		return err
	}
	b := tx.Bucket([]byte(BBOLTDB_POSTINGS_BUCKET))
	for _, fp := range fingerprints {
		key := PostingKey(fp, unitID)
		if b.Get(key) != nil {
			continue
		}
		if err := b.Put(key, []byte{}); err != nil {
			return errors.Wrapf(err, "error when adding posting for unit %s", unitID)
		}
	}
	return nil
}

// Lookup returns every unit id stored with fingerprint for lang, in key order.
// a language that was never indexed has no postings.
func (fi *FuzzyIndex) Lookup(lang string, fingerprint uint64) ([]string, error) {
	fi.Lock()
	defer fi.Unlock()
	if fi.closed {
		return nil, util.ErrClosed
	}
	li, ok := fi.languages[lang]
	if !ok {
		if _, err := os.Stat(filepath.Join(fi.dir, lang+".db")); err != nil {
			return []string{}, nil
		}
		var err error
		li, err = fi.openOrCreate(lang)
		if err != nil {
			return nil, err
		}
	}

	ids := []string{}
	prefix := fingerprintPrefix(fingerprint)
	collect := func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BBOLTDB_POSTINGS_BUCKET)).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			ids = append(ids, string(k[FINGERPRINT_SIZE:]))
		}
		return nil
	}

	// uncommitted postings are visible through the pending transaction
	if li.tx != nil {
		err := collect(li.tx)
		return ids, err
	}
	err := li.db.View(collect)
	if err != nil {
		return nil, errors.Wrapf(err, "error when looking up %s fuzzy index", lang)
	}
	return ids, nil
}

// Commit commits every language on its own; a failure in one language does not undo the others.
func (fi *FuzzyIndex) Commit() error {
	fi.Lock()
	defer fi.Unlock()
	return fi.commitLocked()
}

func (fi *FuzzyIndex) commitLocked() error {
	var errs error
	for lang, li := range fi.languages {
		if li.tx == nil {
			continue
		}
		if err := li.tx.Commit(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "error when committing %s fuzzy index", lang))
		}
		li.tx = nil
	}
	return errs
}

// Rollback discards postings added since the last Commit.
func (fi *FuzzyIndex) Rollback() error {
	fi.Lock()
	defer fi.Unlock()
	var errs error
	for lang, li := range fi.languages {
		if li.tx == nil {
			continue
		}
		if err := li.tx.Rollback(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "error when rolling back %s fuzzy index", lang))
		}
		li.tx = nil
	}
	return errs
}

// Close commits pending postings and releases every language file. it is safe to call twice.
func (fi *FuzzyIndex) Close() error {
	fi.Lock()
	defer fi.Unlock()
	if fi.closed {
		return nil
	}
	errs := fi.commitLocked()
	for lang, li := range fi.languages {
		if err := li.db.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "error when closing %s fuzzy index", lang))
		}
	}
	fi.languages = make(map[string]*languageIndex)
	fi.closed = true
	return errs
}

// Languages lists the languages with an open handle.
func (fi *FuzzyIndex) Languages() []string {
	fi.Lock()
	defer fi.Unlock()
	langs := make([]string, 0, len(fi.languages))
	for lang := range fi.languages {
		langs = append(langs, lang)
	}
	return langs
}
