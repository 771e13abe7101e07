package datastructure

import (
	"sort"
	"time"
)

// tu attribute & property names
const (
	PROP_CREATION_DATE = "creationdate"
	PROP_CREATION_ID   = "creationid"
	PROP_CHANGE_DATE   = "changedate"
	PROP_CHANGE_ID     = "changeid"
	PROP_PROJECT       = "project"
	PROP_CUSTOMER      = "customer"
	PROP_SUBJECT       = "subject"
)

// TMX_DATE_FORMAT is the compact date-time format of creationdate/changedate.
const TMX_DATE_FORMAT = "20060102T150405Z"

// TranslationUnit is a stored translation unit. Variants are kept by the variant store, not with the unit record.
type TranslationUnit struct {
	ID         string             `json:"id" msgpack:"id"`
	Properties map[string]string  `json:"properties" msgpack:"props"`
	Languages  []string           `json:"languages" msgpack:"langs"`
	Notes      []string           `json:"notes,omitempty" msgpack:"notes"`
	Variants   map[string]Variant `json:"variants,omitempty" msgpack:"-"`
}

func NewTranslationUnit(id string) *TranslationUnit {
	return &TranslationUnit{
		ID:         id,
		Properties: make(map[string]string),
		Languages:  []string{},
		Notes:      []string{},
		Variants:   make(map[string]Variant),
	}
}

// Variant is one language rendition of a unit.
type Variant struct {
	UnitID     string `json:"tuid" db:"tuid"`
	Lang       string `json:"lang" db:"lang"`
	Segment    string `json:"seg" db:"seg"`
	PureText   string `json:"pureText" db:"puretext"`
	TextLength int    `json:"textLength" db:"textlength"`
}

func NewVariant(unitID, lang, segment, pureText string) Variant {
	return Variant{
		UnitID:     unitID,
		Lang:       lang,
		Segment:    segment,
		PureText:   pureText,
		TextLength: len([]rune(pureText)),
	}
}

func (tu *TranslationUnit) SetProperty(name, value string) {
	if tu.Properties == nil {
		tu.Properties = make(map[string]string)
	}
	tu.Properties[name] = value
}

func (tu *TranslationUnit) Property(name string) string {
	return tu.Properties[name]
}

// HasProperty reports whether name is set to a non-empty value.
func (tu *TranslationUnit) HasProperty(name string) bool {
	return tu.Properties[name] != ""
}

func (tu *TranslationUnit) AddVariant(v Variant) {
	if tu.Variants == nil {
		tu.Variants = make(map[string]Variant)
	}
	tu.Variants[v.Lang] = v
}

// AddLanguage keeps Languages a sorted set.
func (tu *TranslationUnit) AddLanguage(lang string) {
	i := sort.SearchStrings(tu.Languages, lang)
	if i < len(tu.Languages) && tu.Languages[i] == lang {
		return
	}
	tu.Languages = append(tu.Languages, "")
	copy(tu.Languages[i+1:], tu.Languages[i:])
	tu.Languages[i] = lang
}

func (tu *TranslationUnit) HasLanguage(lang string) bool {
	i := sort.SearchStrings(tu.Languages, lang)
	return i < len(tu.Languages) && tu.Languages[i] == lang
}

func (tu *TranslationUnit) AddNote(note string) {
	for _, n := range tu.Notes {
		if n == note {
			return
		}
	}
	tu.Notes = append(tu.Notes, note)
}

// CreationDate parses the creationdate property. ok is false when it is missing or malformed.
func (tu *TranslationUnit) CreationDate() (time.Time, bool) {
	return ParseTMXDate(tu.Properties[PROP_CREATION_DATE])
}

// CopyProperties returns a snapshot safe to hand out with a match.
func (tu *TranslationUnit) CopyProperties() map[string]string {
	props := make(map[string]string, len(tu.Properties))
	for k, v := range tu.Properties {
		props[k] = v
	}
	return props
}

func FormatTMXDate(t time.Time) string {
	return t.UTC().Format(TMX_DATE_FORMAT)
}

func ParseTMXDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(TMX_DATE_FORMAT, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
