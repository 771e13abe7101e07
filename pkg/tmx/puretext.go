package tmx

import (
	"encoding/xml"
	"io"
	"strings"
)

// inline elements whose content is native code, not text
var codeElements = map[string]bool{
	"bpt": true,
	"ept": true,
	"ph":  true,
	"it":  true,
	"ut":  true,
}

// PureText strips inline markup from a <seg> body. markup that does not parse is returned as is.
func PureText(segment string) string {
	if !strings.ContainsAny(segment, "<&") {
		return segment
	}
	dec := xml.NewDecoder(strings.NewReader("<seg>" + segment + "</seg>"))
	dec.Strict = false

	var sb strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return segment
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 || codeElements[t.Name.Local] {
				depth++
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			if depth == 0 {
				sb.Write(t)
			}
		}
	}
	return sb.String()
}

// EscapeText turns plain text into a <seg> body.
func EscapeText(text string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(text))
	return sb.String()
}
