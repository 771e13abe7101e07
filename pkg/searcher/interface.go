package searcher

import (
	"github.com/lintang-b-s/tm-search/pkg/datastructure"
)

type FuzzyIndex interface {
	Lookup(lang string, fingerprint uint64) ([]string, error)
}

type UnitStore interface {
	GetUnit(id string) (*datastructure.TranslationUnit, error)
}

type VariantStore interface {
	GetVariant(unitID, lang string) (datastructure.Variant, error)
	GetVariants(unitID string) ([]datastructure.Variant, error)
	ScanLanguage(lang string, fn func(v datastructure.Variant) bool) error
}
