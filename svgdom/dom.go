// Package svgdom parses SVG files into a lightweight element tree,
// keeping attributes untouched so that later passes can interpret
// them with full context.
package svgdom

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Element is a node of the parsed document.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Parent   *Element // nil for the root
	Children []*Element
}

// Attr returns the value of the named attribute, matching on the
// local name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// ID returns the id attribute, or an empty string.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Document is a parsed SVG file.
type Document struct {
	Root *Element // the svg element
}

// Parse reads an SVG document from the stream. Character data,
// comments and processing instructions are discarded; the root
// element must be svg.
func Parse(stream io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel

	var root *Element
	var stack []*Element
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "invalid XML document")
		}
		switch se := t.(type) {
		case xml.StartElement:
			el := &Element{Name: se.Name.Local, Attrs: append([]xml.Attr{}, se.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				el.Parent = parent
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, errors.New("empty document")
	}
	if root.Name != "svg" {
		return nil, errors.Errorf("root element is %q, expected svg", root.Name)
	}
	return &Document{Root: root}, nil
}

// ParseFile reads an SVG document from the named file.
func ParseFile(path string) (*Document, error) {
	fin, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return Parse(fin)
}
