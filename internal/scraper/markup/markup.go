// Package markup wraps goquery with the few query helpers the bank parsers
// need, plus a pre-processing step that cuts known-bad ranges out of a page
// before it reaches the parser.
package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Excision removes every range of the source that starts with Begin and ends
// with End, markers included.
//
// Some bank pages ship inline scripts that confuse HTML parsers. Those blocks
// are always framed by stable comment markers, so the safest fix is to drop
// the whole framed range before parsing.
type Excision struct {
	Begin string
	End   string
}

// Apply returns src with every Begin..End range removed. A Begin marker
// without a following End marker is left in place, as is everything after it.
func (e Excision) Apply(src string) string {
	if e.Begin == "" || e.End == "" {
		return src
	}

	var out strings.Builder
	rest := src
	for {
		start := strings.Index(rest, e.Begin)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(e.Begin):], e.End)
		if end < 0 {
			break
		}
		out.WriteString(rest[:start])
		rest = rest[start+len(e.Begin)+end+len(e.End):]
	}
	out.WriteString(rest)

	return out.String()
}

// Parse runs the excisions in order and parses the result leniently.
func Parse(src string, excisions ...Excision) (*goquery.Document, error) {
	for _, e := range excisions {
		src = e.Apply(src)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

var spaceReplacer = strings.NewReplacer("\u00a0", " ", "&nbsp;", " ")

// Text returns the text content of the selection with non-breaking spaces
// turned into regular ones and surrounding whitespace trimmed.
func Text(sel *goquery.Selection) string {
	return strings.TrimSpace(spaceReplacer.Replace(sel.Text()))
}

// Attr returns the attribute of the first element in the selection.
func Attr(sel *goquery.Selection, name string) (string, bool) {
	return sel.Attr(name)
}

// Input is a named form control and its server-supplied value. Value is nil
// when the element has no value attribute at all.
type Input struct {
	Name  string
	Value *string
}

// FormInputs collects every named <input> below form, in document order.
func FormInputs(form *goquery.Selection) []Input {
	var inputs []Input

	form.Find("input").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}

		in := Input{Name: name}
		if v, ok := s.Attr("value"); ok {
			in.Value = &v
		}
		inputs = append(inputs, in)
	})

	return inputs
}

// Fields folds inputs into a name/value map. Missing values become empty
// strings and a later input with the same name wins.
func Fields(inputs []Input) map[string]string {
	fields := make(map[string]string, len(inputs))
	for _, in := range inputs {
		v := ""
		if in.Value != nil {
			v = *in.Value
		}
		fields[in.Name] = v
	}
	return fields
}
