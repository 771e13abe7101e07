package tmx

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"

	"github.com/cockroachdb/errors"
)

// Reader streams translation units out of a TMX document one <tu> at a time.
type Reader struct {
	dec     *xml.Decoder
	srcLang string
}

func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
			return input, nil
		}
		return nil, errors.Newf("unsupported TMX charset %s", charset)
	}
	return &Reader{dec: dec}
}

// SourceLanguage is the header srclang, known once the header has been read.
func (r *Reader) SourceLanguage() string {
	return r.srcLang
}

// Next returns the next unit with its variants attached, or io.EOF after the last one.
// the unit id is the tuid and may be empty.
func (r *Reader) Next() (*datastructure.TranslationUnit, error) {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, "error when reading TMX")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "header":
			for _, attr := range start.Attr {
				if attr.Name.Local == ATTR_SRCLANG {
					r.srcLang = attr.Value
				}
			}
		case "tu":
			var elem tuElement
			if err := r.dec.DecodeElement(&elem, &start); err != nil {
				return nil, errors.Wrap(err, "error when decoding TMX translation unit")
			}
			return toUnit(elem), nil
		}
	}
}

func toUnit(elem tuElement) *datastructure.TranslationUnit {
	tu := datastructure.NewTranslationUnit(elem.TUID)
	attrs := map[string]string{
		datastructure.PROP_CREATION_DATE: elem.CreationDate,
		datastructure.PROP_CREATION_ID:   elem.CreationID,
		datastructure.PROP_CHANGE_DATE:   elem.ChangeDate,
		datastructure.PROP_CHANGE_ID:     elem.ChangeID,
	}
	for name, value := range attrs {
		if value != "" {
			tu.SetProperty(name, value)
		}
	}
	for _, prop := range elem.Props {
		name := strings.TrimPrefix(prop.Type, PROP_PREFIX)
		if name == "" {
			continue
		}
		tu.SetProperty(name, strings.TrimSpace(prop.Value))
	}
	for _, note := range elem.Notes {
		if note = strings.TrimSpace(note); note != "" {
			tu.AddNote(note)
		}
	}
	for _, tuv := range elem.Variants {
		lang := tuv.lang()
		if lang == "" {
			continue
		}
		seg := tuv.Seg.Inner
		tu.AddVariant(datastructure.NewVariant(elem.TUID, lang, seg, PureText(seg)))
	}
	return tu
}
