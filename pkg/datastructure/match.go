package datastructure

// Match is a search result. it is never persisted.
type Match struct {
	Source     Variant           `json:"source"`
	Target     Variant           `json:"target"`
	Similarity int               `json:"similarity"`
	Origin     string            `json:"origin"`
	Properties map[string]string `json:"properties"`
}

func NewMatch(source, target Variant, similarity int, origin string, props map[string]string) Match {
	return Match{
		Source:     source,
		Target:     target,
		Similarity: similarity,
		Origin:     origin,
		Properties: props,
	}
}

// Segment is one entry of a batch translation request; Matches is filled on the way out.
type Segment struct {
	ID      string  `json:"id"`
	SrcLang string  `json:"srcLang"`
	TgtLang string  `json:"tgtLang"`
	Text    string  `json:"text"`
	Matches []Match `json:"matches"`
}
