package searcher

import (
	"regexp"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lintang-b-s/tm-search/pkg/concurrent"
	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/ngram"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Searcher runs fuzzy and concordance searches over one memory.
// candidates come from the fuzzy index and are verified against the stored plain text.
type Searcher struct {
	index    FuzzyIndex
	units    UnitStore
	variants VariantStore
	origin   string
	workers  int
	log      *zap.Logger
}

func NewSearcher(index FuzzyIndex, units UnitStore, variants VariantStore, origin string, log *zap.Logger) *Searcher {
	return &Searcher{
		index:    index,
		units:    units,
		variants: variants,
		origin:   origin,
		workers:  runtime.NumCPU(),
		log:      log,
	}
}

// scored is a verified candidate.
type scored struct {
	source datastructure.Variant
	score  int
}

// ranked carries what the ordering needs next to the result itself.
type ranked[T any] struct {
	item    T
	score   int
	created int64
	hasDate bool
}

func clampSimilarity(minSimilarity int) int {
	if minSimilarity < 0 {
		return 0
	}
	if minSimilarity > 100 {
		return 100
	}
	return minSimilarity
}

// candidates tallies fingerprint hits per unit and keeps the units whose hit count falls in the band.
func (se *Searcher) candidates(query, srcLang string, minSimilarity int) ([]string, error) {
	fingerprints := ngram.Generate(query)
	size := len(fingerprints)
	if size == 0 {
		return []string{}, nil
	}

	hits := make(map[string]int)
	for _, fp := range fingerprints {
		ids, err := se.index.Lookup(srcLang, fp)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			hits[id]++
		}
	}

	minHits := size * minSimilarity / 100
	maxHits := size * (200 - minSimilarity) / 100
	ids := make([]string, 0, len(hits))
	for id, count := range hits {
		if count >= minHits && count <= maxHits {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	se.log.Debug("fuzzy candidates", zap.String("lang", srcLang), zap.Int("fingerprints", size),
		zap.Int("hit", len(hits)), zap.Int("kept", len(ids)))
	return ids, nil
}

// verify scores the srcLang text of each candidate against query and drops what falls below minSimilarity.
func (se *Searcher) verify(query, srcLang string, minSimilarity int, caseSensitive bool, ids []string) ([]scored, error) {
	queryLen := utf8.RuneCountInString(query)
	minLen := queryLen * minSimilarity / 100
	maxLen := queryLen * (200 - minSimilarity) / 100

	q := query
	if !caseSensitive {
		q = strings.ToLower(query)
	}

	verified := make([]scored, 0, len(ids))
	for _, id := range ids {
		source, err := se.variants.GetVariant(id, srcLang)
		if errors.Is(err, util.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if source.TextLength < minLen || source.TextLength > maxLen {
			continue
		}

		text := source.PureText
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		score := Similarity(q, text)
		if score < minSimilarity {
			continue
		}
		verified = append(verified, scored{source: source, score: score})
	}
	return verified, nil
}

// SearchTranslation returns the units whose srcLang text is at least minSimilarity close to query
// and that also have a tgtLang variant.
func (se *Searcher) SearchTranslation(query, srcLang, tgtLang string, minSimilarity int, caseSensitive bool) ([]datastructure.Match, error) {
	minSimilarity = clampSimilarity(minSimilarity)
	ids, err := se.candidates(query, srcLang, minSimilarity)
	if err != nil {
		return nil, err
	}
	verified, err := se.verify(query, srcLang, minSimilarity, caseSensitive, ids)
	if err != nil {
		return nil, err
	}

	results := make([]ranked[datastructure.Match], 0, len(verified))
	for _, c := range verified {
		target, err := se.variants.GetVariant(c.source.UnitID, tgtLang)
		if errors.Is(err, util.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tu, err := se.units.GetUnit(c.source.UnitID)
		if errors.Is(err, util.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		match := datastructure.NewMatch(c.source, target, c.score, se.origin, tu.Properties)
		results = append(results, newRanked(match, c.score, tu))
	}

	sortRanked(results, func(m datastructure.Match) string { return m.Origin })
	matches := make([]datastructure.Match, len(results))
	for i, r := range results {
		matches[i] = r.item
	}
	return matches, nil
}

// SearchAll is SearchTranslation without a target language: whole units are returned.
func (se *Searcher) SearchAll(query, srcLang string, minSimilarity int, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	minSimilarity = clampSimilarity(minSimilarity)
	ids, err := se.candidates(query, srcLang, minSimilarity)
	if err != nil {
		return nil, err
	}
	verified, err := se.verify(query, srcLang, minSimilarity, caseSensitive, ids)
	if err != nil {
		return nil, err
	}

	results := make([]ranked[*datastructure.TranslationUnit], 0, len(verified))
	for _, c := range verified {
		tu, err := se.LoadUnit(c.source.UnitID)
		if errors.Is(err, util.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, newRanked(tu, c.score, tu))
	}

	sortRanked(results, func(*datastructure.TranslationUnit) string { return se.origin })
	units := make([]*datastructure.TranslationUnit, len(results))
	for i, r := range results {
		units[i] = r.item
	}
	return units, nil
}

// ConcordanceSearch scans the srcLang plain text in store order and returns up to limit units
// containing query, or matching it when isRegexp is set. the fuzzy index is not used.
func (se *Searcher) ConcordanceSearch(query, srcLang string, limit int, isRegexp, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	if query == "" || limit <= 0 {
		return []*datastructure.TranslationUnit{}, nil
	}

	var contains func(text string) bool
	if isRegexp {
		pattern := query
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid concordance pattern %q", query)
		}
		contains = re.MatchString
	} else if caseSensitive {
		contains = func(text string) bool { return strings.Contains(text, query) }
	} else {
		lowered := strings.ToLower(query)
		contains = func(text string) bool { return strings.Contains(strings.ToLower(text), lowered) }
	}

	// a hit counts toward limit only when its unit record exists. variants left
	// behind by a removed unit are skipped without using up the limit.
	units := []*datastructure.TranslationUnit{}
	var loadErr error
	err := se.variants.ScanLanguage(srcLang, func(v datastructure.Variant) bool {
		if !contains(v.PureText) {
			return true
		}
		tu, err := se.units.GetUnit(v.UnitID)
		if errors.Is(err, util.ErrNotFound) {
			return true
		}
		if err != nil {
			loadErr = err
			return false
		}
		units = append(units, tu)
		return len(units) < limit
	})
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		return nil, loadErr
	}

	for _, tu := range units {
		variants, err := se.variants.GetVariants(tu.ID)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			tu.AddVariant(v)
		}
	}
	return units, nil
}

type batchJob struct {
	index   int
	segment datastructure.Segment
}

type batchResult struct {
	index   int
	matches []datastructure.Match
	err     error
}

// BatchTranslate searches every segment with DEFAULT_BATCH_SIMILARITY. the output has the same
// length and order as segments; each entry carries its own matches.
func (se *Searcher) BatchTranslate(segments []datastructure.Segment) ([]datastructure.Segment, error) {
	out := make([]datastructure.Segment, len(segments))
	if len(segments) == 0 {
		return out, nil
	}

	workers := se.workers
	if workers > len(segments) {
		workers = len(segments)
	}
	pool := concurrent.NewBackgroundWorker(workers, len(segments), func(job batchJob) batchResult {
		seg := job.segment
		matches, err := se.SearchTranslation(seg.Text, seg.SrcLang, seg.TgtLang, DEFAULT_BATCH_SIMILARITY, false)
		return batchResult{index: job.index, matches: matches, err: err}
	})
	pool.Start()
	for i, seg := range segments {
		pool.TriggerProcessing(batchJob{index: i, segment: seg})
	}
	pool.Close()

	var errs error
	for res := range pool.Results() {
		if res.err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(res.err, "error when translating segment %d", res.index))
			continue
		}
		seg := segments[res.index]
		seg.Matches = res.matches
		if seg.Matches == nil {
			seg.Matches = []datastructure.Match{}
		}
		out[res.index] = seg
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// LoadUnit rebuilds a unit with every stored variant attached.
func (se *Searcher) LoadUnit(id string) (*datastructure.TranslationUnit, error) {
	tu, err := se.units.GetUnit(id)
	if err != nil {
		return nil, err
	}
	variants, err := se.variants.GetVariants(id)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		tu.AddVariant(v)
	}
	return tu, nil
}

func newRanked[T any](item T, score int, tu *datastructure.TranslationUnit) ranked[T] {
	r := ranked[T]{item: item, score: score}
	if created, ok := tu.CreationDate(); ok {
		r.created = created.Unix()
		r.hasDate = true
	}
	return r
}

// sortRanked orders by score desc, then creation date desc with undated units last, then origin asc.
func sortRanked[T any](rs []ranked[T], origin func(T) string) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.hasDate != b.hasDate {
			return a.hasDate
		}
		if a.created != b.created {
			return a.created > b.created
		}
		return origin(a.item) < origin(b.item)
	})
}
