package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/index"
	"github.com/lintang-b-s/tm-search/pkg/kvdb"
	"github.com/lintang-b-s/tm-search/pkg/langutil"
	"github.com/lintang-b-s/tm-search/pkg/ngram"
	"github.com/lintang-b-s/tm-search/pkg/searcher"
	"github.com/lintang-b-s/tm-search/pkg/sqlstore"
	"github.com/lintang-b-s/tm-search/pkg/tmx"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	FUZZY_INDEX_DIR         = "fuzzy"
	UNIT_STORE_FILE         = "units.db"
	VARIANT_STORE_FILE      = "tuv.db"
	DEFAULT_COMMIT_INTERVAL = 1000
)

type LocalConfig struct {
	Driver         sqlstore.Driver
	WorkDir        string
	Memory         string
	UnitCacheSize  int
	CommitInterval int
	// User is recorded as creationid/changeid when a unit does not carry one.
	User string
}

// LocalEngine is an embedded memory: variants in sqlite, unit records and the fuzzy index in bbolt.
// the three stores are not updated atomically together.
type LocalEngine struct {
	name           string
	dir            string
	index          *index.FuzzyIndex
	units          *kvdb.KVDB
	variants       *sqlstore.Store
	searcher       *searcher.Searcher
	ids            *IDGenerator
	user           string
	commitInterval int
	now            func() time.Time
	log            *zap.Logger

	// importCtx fills project/customer/subject while an import runs
	importCtx map[string]string
	importMu  sync.Mutex
	writeMu   sync.Mutex
	// pending holds, per unit written since the last commit, its variants as they were
	// before the first write. guarded by writeMu.
	pending map[string][]datastructure.Variant

	closed bool
	sync.RWMutex
}

// NewLocalEngine opens or creates <WorkDir>/<Memory>.
func NewLocalEngine(cfg LocalConfig, log *zap.Logger) (*LocalEngine, error) {
	if cfg.WorkDir == "" || cfg.Memory == "" {
		return nil, util.WrapErrorf(nil, util.ErrConfiguration, "work directory and memory name are required")
	}
	if cfg.Driver.Name == "" {
		return nil, util.WrapErrorf(nil, util.ErrConfiguration, "no sql driver configured for memory %s", cfg.Memory)
	}
	dir := filepath.Join(cfg.WorkDir, cfg.Memory)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, util.WrapErrorf(err, util.ErrConfiguration, "cannot create directory of memory %s", cfg.Memory)
	}
	if cfg.CommitInterval <= 0 {
		cfg.CommitInterval = DEFAULT_COMMIT_INTERVAL
	}

	fuzzy, err := index.NewFuzzyIndex(filepath.Join(dir, FUZZY_INDEX_DIR), cfg.Memory, log)
	if err != nil {
		return nil, err
	}
	units, err := kvdb.Open(filepath.Join(dir, UNIT_STORE_FILE), cfg.Memory, cfg.UnitCacheSize, log)
	if err != nil {
		_ = fuzzy.Close()
		return nil, err
	}
	variants, err := sqlstore.Open(cfg.Driver, filepath.Join(dir, VARIANT_STORE_FILE), cfg.Memory, log)
	if err != nil {
		_ = fuzzy.Close()
		_ = units.Close()
		return nil, err
	}

	e := &LocalEngine{
		name:           cfg.Memory,
		dir:            dir,
		index:          fuzzy,
		units:          units,
		variants:       variants,
		ids:            NewIDGenerator(),
		user:           cfg.User,
		commitInterval: cfg.CommitInterval,
		now:            time.Now,
		log:            log,
		importCtx:      map[string]string{},
		pending:        make(map[string][]datastructure.Variant),
	}
	e.searcher = searcher.NewSearcher(fuzzy, units, variants, e.name, log)
	log.Info("memory opened", zap.String("memory", e.name), zap.String("driver", cfg.Driver.Name), zap.String("dir", dir))
	return e, nil
}

func (e *LocalEngine) Name() string {
	return e.name
}

// acquire guards every operation against Close. release with RUnlock.
func (e *LocalEngine) acquire() error {
	e.RLock()
	if e.closed {
		e.RUnlock()
		return util.ErrClosed
	}
	return nil
}

// Close commits pending writes and releases every store. later calls return util.ErrClosed.
func (e *LocalEngine) Close() error {
	e.Lock()
	defer e.Unlock()
	if e.closed {
		return util.ErrClosed
	}
	e.closed = true

	var errs error
	if err := e.index.Close(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if err := e.units.Close(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if err := e.variants.Close(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	e.log.Info("memory closed", zap.String("memory", e.name))
	return errs
}

func (e *LocalEngine) Commit() error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.RUnlock()
	return e.commit()
}

// commit flushes the index and the unit store; the variant store commits every statement itself.
func (e *LocalEngine) commit() error {
	var errs error
	if err := e.index.Commit(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if err := e.units.Commit(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if errs == nil {
		e.writeMu.Lock()
		e.pending = make(map[string][]datastructure.Variant)
		e.writeMu.Unlock()
	}
	return errs
}

// Rollback drops uncommitted postings and unit records, and puts back the variants
// of every unit written since the last commit.
func (e *LocalEngine) Rollback() error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.RUnlock()
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	var errs error
	if err := e.index.Rollback(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if err := e.units.Rollback(); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	for id, previous := range e.pending {
		if err := e.variants.DeleteVariants(id); err != nil {
			errs = errors.CombineErrors(errs, err)
			continue
		}
		for _, v := range previous {
			if err := e.variants.PutVariant(v); err != nil {
				errs = errors.CombineErrors(errs, err)
			}
		}
	}
	e.pending = make(map[string][]datastructure.Variant)
	return errs
}

// remember snapshots the variants of id before its first write since the last commit.
// the caller holds writeMu.
func (e *LocalEngine) remember(id string) error {
	if _, ok := e.pending[id]; ok {
		return nil
	}
	variants, err := e.variants.GetVariants(id)
	if err != nil {
		return err
	}
	e.pending[id] = variants
	return nil
}

func (e *LocalEngine) StoreUnit(tu *datastructure.TranslationUnit) (string, error) {
	if err := e.acquire(); err != nil {
		return "", err
	}
	defer e.RUnlock()
	return e.storeUnit(tu)
}

func (e *LocalEngine) storeUnit(tu *datastructure.TranslationUnit) (string, error) {
	if tu == nil {
		return "", util.WrapErrorf(nil, util.ErrBadParamInput, "no translation unit given")
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	id := tu.ID
	if id == "" {
		id = e.ids.Next()
	}
	if err := e.remember(id); err != nil {
		return "", err
	}
	existing, err := e.units.GetUnit(id)
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return "", err
	}
	if err != nil {
		existing = nil
	}

	record := datastructure.NewTranslationUnit(id)
	if existing != nil {
		record = existing
	}
	for name, value := range tu.Properties {
		if existing != nil && isCreationProp(name) && existing.HasProperty(name) {
			continue
		}
		record.SetProperty(name, value)
	}
	for name, value := range e.currentImportContext() {
		if value != "" && !record.HasProperty(name) {
			record.SetProperty(name, value)
		}
	}

	now := datastructure.FormatTMXDate(e.now())
	if existing == nil {
		setIfAbsent(record, datastructure.PROP_CREATION_DATE, now)
		setIfAbsent(record, datastructure.PROP_CREATION_ID, e.user)
	} else {
		if _, ok := tu.Properties[datastructure.PROP_CHANGE_DATE]; !ok {
			record.SetProperty(datastructure.PROP_CHANGE_DATE, now)
		}
		if _, ok := tu.Properties[datastructure.PROP_CHANGE_ID]; !ok && e.user != "" {
			record.SetProperty(datastructure.PROP_CHANGE_ID, e.user)
		}
	}
	for _, note := range tu.Notes {
		record.AddNote(note)
	}

	langs := make([]string, 0, len(tu.Variants))
	for lang := range tu.Variants {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		v := tu.Variants[lang]
		pure := v.PureText
		if pure == "" {
			pure = tmx.PureText(v.Segment)
		}
		if strings.TrimSpace(pure) == "" {
			continue
		}
		seg := v.Segment
		if seg == "" {
			seg = tmx.EscapeText(pure)
		}
		lang = langutil.Normalize(lang)
		if lang == "" {
			continue
		}

		variant := datastructure.NewVariant(id, lang, seg, pure)
		if err := e.variants.PutVariant(variant); err != nil {
			return "", err
		}
		if err := e.index.AddAll(lang, ngram.Generate(pure), id); err != nil {
			return "", err
		}
		record.AddLanguage(lang)
	}

	if err := e.units.PutUnit(record); err != nil {
		return "", err
	}
	return id, nil
}

func isCreationProp(name string) bool {
	return name == datastructure.PROP_CREATION_DATE || name == datastructure.PROP_CREATION_ID
}

func setIfAbsent(tu *datastructure.TranslationUnit, name, value string) {
	if value != "" && !tu.HasProperty(name) {
		tu.SetProperty(name, value)
	}
}

// RemoveUnit deletes the unit and its variants. its postings stay in the fuzzy index;
// searches skip them when the unit cannot be loaded. removing an unknown id is not an error.
func (e *LocalEngine) RemoveUnit(id string) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.RUnlock()
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.remember(id); err != nil {
		return err
	}
	if err := e.variants.DeleteVariants(id); err != nil {
		return err
	}
	return e.units.DeleteUnit(id)
}

// GetUnit returns the unit with all of its variants, or util.ErrNotFound.
func (e *LocalEngine) GetUnit(id string) (*datastructure.TranslationUnit, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.RUnlock()
	return e.searcher.LoadUnit(id)
}

func (e *LocalEngine) GetAllLanguages() ([]string, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.RUnlock()
	return e.variants.Languages()
}

func (e *LocalEngine) GetAllProjects() ([]string, error) {
	return e.distinctProperty(datastructure.PROP_PROJECT)
}

func (e *LocalEngine) GetAllSubjects() ([]string, error) {
	return e.distinctProperty(datastructure.PROP_SUBJECT)
}

func (e *LocalEngine) GetAllClients() ([]string, error) {
	return e.distinctProperty(datastructure.PROP_CUSTOMER)
}

func (e *LocalEngine) distinctProperty(name string) ([]string, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.RUnlock()
	return e.units.DistinctProperty(name)
}

func (e *LocalEngine) SearchTranslation(query, srcLang, tgtLang string, minSimilarity int, caseSensitive bool) ([]datastructure.Match, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.RUnlock()
	return e.searcher.SearchTranslation(query, langutil.Normalize(srcLang), langutil.Normalize(tgtLang), minSimilarity, caseSensitive)
}

func (e *LocalEngine) SearchAll(query, srcLang string, minSimilarity int, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.RUnlock()
	return e.searcher.SearchAll(query, langutil.Normalize(srcLang), minSimilarity, caseSensitive)
}

func (e *LocalEngine) ConcordanceSearch(query, srcLang string, limit int, isRegexp, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.RUnlock()
	return e.searcher.ConcordanceSearch(query, langutil.Normalize(srcLang), limit, isRegexp, caseSensitive)
}

func (e *LocalEngine) BatchTranslate(segments []datastructure.Segment) ([]datastructure.Segment, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.RUnlock()
	normalized := make([]datastructure.Segment, len(segments))
	for i, seg := range segments {
		seg.SrcLang = langutil.Normalize(seg.SrcLang)
		seg.TgtLang = langutil.Normalize(seg.TgtLang)
		normalized[i] = seg
	}
	return e.searcher.BatchTranslate(normalized)
}

func (e *LocalEngine) currentImportContext() map[string]string {
	e.importMu.Lock()
	defer e.importMu.Unlock()
	return e.importCtx
}

func (e *LocalEngine) setImportContext(ctx map[string]string) {
	e.importMu.Lock()
	defer e.importMu.Unlock()
	e.importCtx = ctx
}
