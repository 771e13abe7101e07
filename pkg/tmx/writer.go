package tmx

import (
	"bufio"
	"encoding/xml"
	"io"
	"sort"
	"time"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"

	"github.com/cockroachdb/errors"
)

const (
	CREATION_TOOL         = "tm-search"
	CREATION_TOOL_VERSION = "1.0"
)

// tu attributes, never written as <prop>
var attributeProps = map[string]bool{
	datastructure.PROP_CREATION_DATE: true,
	datastructure.PROP_CREATION_ID:   true,
	datastructure.PROP_CHANGE_DATE:   true,
	datastructure.PROP_CHANGE_ID:     true,
}

// Writer writes a TMX 1.4 document. Close must be called to finish it.
type Writer struct {
	w   *bufio.Writer
	enc *xml.Encoder
}

// NewWriter writes the fixed header with srcLang and created as the document creation date.
func NewWriter(w io.Writer, srcLang string, created time.Time) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xml.Header + `<tmx version="` + TMX_VERSION + `">` + "\n"); err != nil {
		return nil, errors.Wrap(err, "error when writing TMX header")
	}
	enc := xml.NewEncoder(bw)
	enc.Indent("  ", "  ")
	err := enc.Encode(header{
		CreationTool:        CREATION_TOOL,
		CreationToolVersion: CREATION_TOOL_VERSION,
		DataType:            "plaintext",
		SegType:             "sentence",
		AdminLang:           "en",
		SrcLang:             srcLang,
		OTmf:                CREATION_TOOL,
		CreationDate:        datastructure.FormatTMXDate(created),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error when writing TMX header")
	}
	if err := enc.Flush(); err != nil {
		return nil, errors.Wrap(err, "error when writing TMX header")
	}
	if _, err := bw.WriteString("\n  <body>"); err != nil {
		return nil, errors.Wrap(err, "error when writing TMX header")
	}
	return &Writer{w: bw, enc: enc}, nil
}

// WriteUnit writes tu with its variants in language order.
func (w *Writer) WriteUnit(tu *datastructure.TranslationUnit) error {
	elem := tuElement{
		TUID:         tu.ID,
		CreationDate: tu.Property(datastructure.PROP_CREATION_DATE),
		CreationID:   tu.Property(datastructure.PROP_CREATION_ID),
		ChangeDate:   tu.Property(datastructure.PROP_CHANGE_DATE),
		ChangeID:     tu.Property(datastructure.PROP_CHANGE_ID),
		Notes:        tu.Notes,
	}

	names := make([]string, 0, len(tu.Properties))
	for name := range tu.Properties {
		if !attributeProps[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		elem.Props = append(elem.Props, propElement{Type: PROP_PREFIX + name, Value: tu.Properties[name]})
	}

	langs := make([]string, 0, len(tu.Variants))
	for lang := range tu.Variants {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		elem.Variants = append(elem.Variants, tuvElement{Lang: lang, Seg: segElement{Inner: tu.Variants[lang].Segment}})
	}

	enc := xml.NewEncoder(w.w)
	enc.Indent("    ", "  ")
	if _, err := w.w.WriteString("\n"); err != nil {
		return errors.Wrapf(err, "error when writing unit %s", tu.ID)
	}
	if err := enc.Encode(elem); err != nil {
		return errors.Wrapf(err, "error when writing unit %s", tu.ID)
	}
	return enc.Flush()
}

// Close ends the document and flushes it; it does not close the underlying writer.
func (w *Writer) Close() error {
	if _, err := w.w.WriteString("\n  </body>\n</tmx>\n"); err != nil {
		return errors.Wrap(err, "error when finishing TMX")
	}
	return errors.Wrap(w.w.Flush(), "error when finishing TMX")
}
