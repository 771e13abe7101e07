package controllers

import (
	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/engine"
)

type TMService interface {
	Close() error
	Commit() error
	StoreUnit(tu *datastructure.TranslationUnit) (*datastructure.TranslationUnit, error)
	RemoveUnit(id string) error
	GetUnit(id string) (*datastructure.TranslationUnit, error)
	Languages() ([]string, error)
	Projects() ([]string, error)
	Subjects() ([]string, error)
	Clients() ([]string, error)
	ImportTMX(content []byte, opts engine.ImportOptions) (int, error)
	ExportTMX(langs []string, srcLang string) ([]byte, error)
	SearchTranslation(query, srcLang, tgtLang string, minSimilarity int, caseSensitive bool) ([]datastructure.Match, error)
	SearchAll(query, srcLang string, minSimilarity int, caseSensitive bool) ([]*datastructure.TranslationUnit, error)
	ConcordanceSearch(query, srcLang string, limit int, isRegexp, caseSensitive bool) ([]*datastructure.TranslationUnit, error)
	BatchTranslate(segments []datastructure.Segment) ([]datastructure.Segment, error)
}
