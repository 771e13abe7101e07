package sqlstore

import (
	"database/sql"
	"embed"
	"sync"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	queryUpsertVariant = `INSERT INTO tuv (tuid, lang, seg, puretext, textlength) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (tuid, lang) DO UPDATE SET seg = excluded.seg, puretext = excluded.puretext, textlength = excluded.textlength`
	queryGetVariant      = `SELECT tuid, lang, seg, puretext, textlength FROM tuv WHERE tuid = ? AND lang = ?`
	queryGetVariants     = `SELECT tuid, lang, seg, puretext, textlength FROM tuv WHERE tuid = ? ORDER BY lang`
	queryDeleteVariants  = `DELETE FROM tuv WHERE tuid = ?`
	queryLanguages       = `SELECT DISTINCT lang FROM tuv ORDER BY lang`
	queryScanLanguage    = `SELECT tuid, lang, seg, puretext, textlength FROM tuv WHERE lang = ? ORDER BY rowid`
)

// Store is the relational variant store: one tuv row per (unit id, language).
// statements are prepared on first use and released by Close.
type Store struct {
	db     *sqlx.DB
	driver Driver
	memory string
	stmts  map[string]*sqlx.Stmt
	log    *zap.Logger
	closed bool
	sync.Mutex
}

// Open opens (or creates) the database file at path and brings its schema up to date.
func Open(driver Driver, path, memory string, log *zap.Logger) (*Store, error) {
	db, err := sqlx.Open(driver.Name, driver.DSN(path))
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrStorageCorruption, "error when opening variant store of memory %s", memory)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, util.WrapErrorf(err, util.ErrStorageCorruption, "error when opening variant store of memory %s", memory)
	}
	if err := migrateUp(driver, db.DB); err != nil {
		_ = db.Close()
		return nil, util.WrapErrorf(err, util.ErrStorageCorruption, "error when migrating variant store of memory %s", memory)
	}
	log.Info("variant store opened", zap.String("memory", memory), zap.String("driver", driver.Name), zap.String("path", path))
	return &Store{
		db:     db,
		driver: driver,
		memory: memory,
		stmts:  make(map[string]*sqlx.Stmt),
		log:    log,
	}, nil
}

func migrateUp(driver Driver, db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "error when reading embedded migrations")
	}
	target, err := driver.migrations(db)
	if err != nil {
		return errors.Wrap(err, "error when preparing migration driver")
	}
	// the migrate instance is not closed: that would close db too
	m, err := migrate.NewWithInstance("iofs", src, driver.Name, target)
	if err != nil {
		return errors.Wrap(err, "error when creating migrator")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "error when applying migrations")
	}
	return nil
}

// stmt must be called with the lock held.
func (s *Store) stmt(query string) (*sqlx.Stmt, error) {
	if s.closed {
		return nil, util.ErrClosed
	}
	if st, ok := s.stmts[query]; ok {
		return st, nil
	}
	st, err := s.db.Preparex(query)
	if err != nil {
		return nil, errors.Wrap(err, "error when preparing variant store statement")
	}
	s.stmts[query] = st
	return st, nil
}

// PutVariant inserts v or replaces the variant already stored for (v.UnitID, v.Lang).
func (s *Store) PutVariant(v datastructure.Variant) error {
	s.Lock()
	defer s.Unlock()
	st, err := s.stmt(queryUpsertVariant)
	if err != nil {
		return err
	}
	if _, err := st.Exec(v.UnitID, v.Lang, v.Segment, v.PureText, v.TextLength); err != nil {
		return errors.Wrapf(err, "error when saving %s variant of unit %s", v.Lang, v.UnitID)
	}
	return nil
}

// GetVariant returns util.ErrNotFound when the unit has no variant in lang.
func (s *Store) GetVariant(unitID, lang string) (datastructure.Variant, error) {
	s.Lock()
	defer s.Unlock()
	st, err := s.stmt(queryGetVariant)
	if err != nil {
		return datastructure.Variant{}, err
	}
	var v datastructure.Variant
	err = st.Get(&v, unitID, lang)
	if errors.Is(err, sql.ErrNoRows) {
		return datastructure.Variant{}, util.WrapErrorf(nil, util.ErrNotFound, "unit %s has no %s variant", unitID, lang)
	}
	if err != nil {
		return datastructure.Variant{}, errors.Wrapf(err, "error when reading %s variant of unit %s", lang, unitID)
	}
	return v, nil
}

// GetVariants returns every variant of a unit ordered by language.
func (s *Store) GetVariants(unitID string) ([]datastructure.Variant, error) {
	s.Lock()
	defer s.Unlock()
	st, err := s.stmt(queryGetVariants)
	if err != nil {
		return nil, err
	}
	variants := []datastructure.Variant{}
	if err := st.Select(&variants, unitID); err != nil {
		return nil, errors.Wrapf(err, "error when reading variants of unit %s", unitID)
	}
	return variants, nil
}

func (s *Store) DeleteVariants(unitID string) error {
	s.Lock()
	defer s.Unlock()
	st, err := s.stmt(queryDeleteVariants)
	if err != nil {
		return err
	}
	if _, err := st.Exec(unitID); err != nil {
		return errors.Wrapf(err, "error when deleting variants of unit %s", unitID)
	}
	return nil
}

// Languages lists the distinct languages that have at least one stored variant.
func (s *Store) Languages() ([]string, error) {
	s.Lock()
	defer s.Unlock()
	st, err := s.stmt(queryLanguages)
	if err != nil {
		return nil, err
	}
	langs := []string{}
	if err := st.Select(&langs); err != nil {
		return nil, errors.Wrap(err, "error when listing languages")
	}
	return langs, nil
}

// ScanLanguage visits the variants of lang in insertion order until fn returns false.
// the store lock is not held while fn runs.
func (s *Store) ScanLanguage(lang string, fn func(v datastructure.Variant) bool) error {
	s.Lock()
	st, err := s.stmt(queryScanLanguage)
	if err != nil {
		s.Unlock()
		return err
	}
	rows, err := st.Queryx(lang)
	s.Unlock()
	if err != nil {
		return errors.Wrapf(err, "error when scanning %s variants", lang)
	}
	defer rows.Close()

	for rows.Next() {
		var v datastructure.Variant
		if err := rows.StructScan(&v); err != nil {
			return errors.Wrapf(err, "error when scanning %s variants", lang)
		}
		if !fn(v) {
			return nil
		}
	}
	return errors.Wrapf(rows.Err(), "error when scanning %s variants", lang)
}

// Close releases prepared statements and the database handle. it is safe to call twice.
func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs error
	for _, st := range s.stmts {
		if err := st.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "error when closing statement"))
		}
	}
	s.stmts = nil
	if err := s.db.Close(); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrapf(err, "error when closing variant store of memory %s", s.memory))
	}
	return errs
}

// DriverName is the database/sql driver backing this store.
func (s *Store) DriverName() string {
	return s.driver.Name
}
