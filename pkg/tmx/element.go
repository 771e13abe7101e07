package tmx

import "encoding/xml"

const (
	TMX_VERSION = "1.4"
	// attribute names of the header/tu elements
	ATTR_SRCLANG = "srclang"
	// props that are not TMX attributes are written with this prefix
	PROP_PREFIX = "x-"
)

type header struct {
	XMLName             xml.Name `xml:"header"`
	CreationTool        string   `xml:"creationtool,attr"`
	CreationToolVersion string   `xml:"creationtoolversion,attr"`
	DataType            string   `xml:"datatype,attr"`
	SegType             string   `xml:"segtype,attr"`
	AdminLang           string   `xml:"adminlang,attr"`
	SrcLang             string   `xml:"srclang,attr"`
	OTmf                string   `xml:"o-tmf,attr"`
	CreationDate        string   `xml:"creationdate,attr,omitempty"`
}

type tuElement struct {
	XMLName      xml.Name      `xml:"tu"`
	TUID         string        `xml:"tuid,attr,omitempty"`
	CreationDate string        `xml:"creationdate,attr,omitempty"`
	CreationID   string        `xml:"creationid,attr,omitempty"`
	ChangeDate   string        `xml:"changedate,attr,omitempty"`
	ChangeID     string        `xml:"changeid,attr,omitempty"`
	Notes        []string      `xml:"note"`
	Props        []propElement `xml:"prop"`
	Variants     []tuvElement  `xml:"tuv"`
}

type propElement struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type tuvElement struct {
	Lang       string     `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	LegacyLang string     `xml:"lang,attr,omitempty"`
	Seg        segElement `xml:"seg"`
}

type segElement struct {
	Inner string `xml:",innerxml"`
}

func (tuv tuvElement) lang() string {
	if tuv.Lang != "" {
		return tuv.Lang
	}
	return tuv.LegacyLang
}
