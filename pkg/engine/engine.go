package engine

import (
	"github.com/lintang-b-s/tm-search/pkg/datastructure"
)

// Engine is one translation memory. the embedded engines and the remote client behave the same
// for the same stored data.
type Engine interface {
	// Name identifies the memory; it is the origin of every match the engine returns.
	Name() string
	Close() error
	Commit() error

	// StoreUnit inserts or merges tu and returns its id, generated when tu.ID is empty.
	StoreUnit(tu *datastructure.TranslationUnit) (string, error)
	RemoveUnit(id string) error
	GetUnit(id string) (*datastructure.TranslationUnit, error)

	GetAllLanguages() ([]string, error)
	GetAllProjects() ([]string, error)
	GetAllSubjects() ([]string, error)
	GetAllClients() ([]string, error)

	ImportTMX(path string, opts ImportOptions) (int, error)
	ExportTMX(path string, langs []string, srcLang string) error

	SearchTranslation(query, srcLang, tgtLang string, minSimilarity int, caseSensitive bool) ([]datastructure.Match, error)
	SearchAll(query, srcLang string, minSimilarity int, caseSensitive bool) ([]*datastructure.TranslationUnit, error)
	ConcordanceSearch(query, srcLang string, limit int, isRegexp, caseSensitive bool) ([]*datastructure.TranslationUnit, error)
	BatchTranslate(segments []datastructure.Segment) ([]datastructure.Segment, error)
}

// ImportOptions is the import context: Project, Customer and Subject fill the matching
// property of every imported unit that does not carry one.
type ImportOptions struct {
	Project  string `json:"project,omitempty"`
	Customer string `json:"customer,omitempty"`
	Subject  string `json:"subject,omitempty"`
	// Progress receives the running count after each periodic commit. optional.
	Progress func(imported int) `json:"-"`
}

func (o ImportOptions) properties() map[string]string {
	return map[string]string{
		datastructure.PROP_PROJECT:  o.Project,
		datastructure.PROP_CUSTOMER: o.Customer,
		datastructure.PROP_SUBJECT:  o.Subject,
	}
}
