package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// xmlEscaper escapes text and attribute values.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// XMLWriter is a streaming writer for indented XML documents.
// Elements nest by two spaces, an element with no content is
// self-closed, and text and attribute values are escaped.
// Write errors are sticky: after the first one every call is
// a no-op and Err returns it.
type XMLWriter struct {
	w          io.Writer
	tags       []string
	indent     string
	tagIsOpen  bool
	needsBreak bool
	err        error
}

// NewXMLWriter creates a writer emitting to w.
func NewXMLWriter(w io.Writer) *XMLWriter {
	return &XMLWriter{w: w}
}

// WriteDeclaration writes the XML declaration. It must come
// before the first element.
func (x *XMLWriter) WriteDeclaration() *XMLWriter {
	x.write(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	return x
}

// StartElement opens a named element. Attributes may follow
// until content or another element is written.
func (x *XMLWriter) StartElement(name string) *XMLWriter {
	x.ensureTagClosed()
	x.breakIfNeeded()
	x.write(x.indent + "<" + name)
	x.tags = append(x.tags, name)
	x.indent += "  "
	x.tagIsOpen = true
	return x
}

// EndElement closes the innermost open element. It is a no-op
// when no element is open.
func (x *XMLWriter) EndElement() *XMLWriter {
	if len(x.tags) == 0 {
		return x
	}
	x.breakIfNeeded()
	x.indent = x.indent[:len(x.indent)-2]
	name := x.tags[len(x.tags)-1]
	x.tags = x.tags[:len(x.tags)-1]
	if x.tagIsOpen {
		x.write("/>\n")
		x.tagIsOpen = false
	} else {
		x.write(x.indent + "</" + name + ">\n")
	}
	return x
}

// Scoped opens an element and returns the function that
// closes it, for use with defer.
func (x *XMLWriter) Scoped(name string) func() {
	x.StartElement(name)
	depth := len(x.tags)
	return func() {
		for len(x.tags) >= depth {
			x.EndElement()
		}
	}
}

// WriteAttribute adds an attribute to the element just
// opened. Strings are escaped and skipped when empty; bools
// render as true or false; other values use their default
// format. Attributes written after content are dropped.
func (x *XMLWriter) WriteAttribute(name string, value any) *XMLWriter {
	if !x.tagIsOpen || name == "" {
		return x
	}

	var s string
	switch v := value.(type) {
	case string:
		if v == "" {
			return x
		}
		s = xmlEscaper.Replace(v)
	case bool:
		s = strconv.FormatBool(v)
	case int:
		s = strconv.Itoa(v)
	default:
		s = xmlEscaper.Replace(fmt.Sprint(v))
	}
	x.write(" " + name + `="` + s + `"`)
	return x
}

// WriteText writes escaped character data inside the current
// element. Empty text is ignored.
func (x *XMLWriter) WriteText(text string) *XMLWriter {
	if text == "" {
		return x
	}
	wasOpen := x.tagIsOpen
	x.ensureTagClosed()
	if wasOpen {
		x.write(x.indent)
	}
	x.write(xmlEscaper.Replace(text))
	x.needsBreak = true
	return x
}

// WriteComment writes a comment at the current depth. A "--"
// in text is split into "- -" and a trailing '-' is followed
// by a space, since neither may appear inside a comment.
func (x *XMLWriter) WriteComment(text string) *XMLWriter {
	x.ensureTagClosed()
	x.breakIfNeeded()
	x.write(x.indent + "<!--" + commentText(text) + "-->")
	x.needsBreak = true
	return x
}

func commentText(text string) string {
	for strings.Contains(text, "--") {
		text = strings.ReplaceAll(text, "--", "- -")
	}
	if strings.HasSuffix(text, "-") {
		text += " "
	}
	return text
}

// WriteBlankLine writes an empty line.
func (x *XMLWriter) WriteBlankLine() *XMLWriter {
	x.ensureTagClosed()
	x.breakIfNeeded()
	x.write("\n")
	return x
}

// Depth returns the number of open elements.
func (x *XMLWriter) Depth() int {
	return len(x.tags)
}

// Err returns the first write error.
func (x *XMLWriter) Err() error {
	return x.err
}

// Close ends every open element and returns the first write
// error.
func (x *XMLWriter) Close() error {
	for len(x.tags) > 0 {
		x.EndElement()
	}
	return x.err
}

func (x *XMLWriter) ensureTagClosed() {
	if x.tagIsOpen {
		x.write(">\n")
		x.tagIsOpen = false
	}
}

func (x *XMLWriter) breakIfNeeded() {
	if x.needsBreak {
		x.write("\n")
		x.needsBreak = false
	}
}

func (x *XMLWriter) write(s string) {
	if x.err != nil {
		return
	}
	if _, err := io.WriteString(x.w, s); err != nil {
		x.err = fmt.Errorf("write xml: %w", err)
	}
}
