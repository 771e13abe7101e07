package searcher

const (
	// DEFAULT_BATCH_SIMILARITY is the minimum similarity used by BatchTranslate.
	DEFAULT_BATCH_SIMILARITY = 60
	// FRAGMENT_PENALTY is subtracted per extra common fragment.
	FRAGMENT_PENALTY = 2
	// MIN_FRAGMENT_PERCENT of the longer text a common fragment must exceed to count.
	MIN_FRAGMENT_PERCENT = 2
)
