// Package xml parses exported tablet XML and runs XPath queries over it.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities, and Validate disables entity
//     expansion entirely.
//   - xmlquery parses with encoding/xml internally and inherits its
//     security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element or attribute.
type Node struct {
	node *xmlquery.Node
}

// ValidationResult contains the result of a well-formedness check.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Offset  int64
	Message string
}

// FormatOptions controls XML formatting behavior.
type FormatOptions struct {
	Indent string // Indentation string (e.g., "  " or "\t")
}

// Parse parses XML data and returns a Document. Data is checked with
// Validate first so malformed input reports the offset of the failure.
func Parse(data []byte) (*Document, error) {
	if r := Validate(data); !r.Valid {
		e := r.Errors[0]
		return nil, fmt.Errorf("parsing XML at offset %d: %s", e.Offset, e.Message)
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Validate checks that data is well-formed.
//
// Security: entity expansion is disabled (CWE-611).
func Validate(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Offset:  decoder.InputOffset(),
				Message: err.Error(),
			})
			break
		}
	}
	return result
}

// Expr is a compiled XPath expression.
type Expr struct {
	src  string
	expr *xpath.Expr
}

// Compile compiles an XPath expression once for repeated evaluation.
func Compile(expr string) (*Expr, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return &Expr{src: expr, expr: e}, nil
}

func (e *Expr) String() string { return e.src }

// Select returns the nodes matched by a compiled expression.
func (d *Document) Select(e *Expr) []*Node {
	nodes := xmlquery.QuerySelectorAll(d.root, e.expr)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result
}

// EvalExpr evaluates a compiled expression and returns its string value.
// Node sets yield the value of their first node, numbers are printed
// without a trailing ".0".
func (d *Document) EvalExpr(e *Expr) string {
	switch v := e.expr.Evaluate(xmlquery.CreateXPathNavigator(d.root)).(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case *xpath.NodeIterator:
		if v.MoveNext() {
			return v.Current().Value()
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Format pretty-prints XML data. Text-only elements stay on one line. The
// XML declaration is written only when data starts with one.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	f := formatter{
		indent: opts.Indent,
		decl:   bytes.HasPrefix(bytes.TrimSpace(data), []byte("<?xml")),
	}
	var buf bytes.Buffer
	f.node(&buf, doc.root, 0)
	return buf.Bytes(), nil
}

type formatter struct {
	indent string
	decl   bool
}

func (f formatter) node(w *bytes.Buffer, n *xmlquery.Node, depth int) {
	indent := f.indent
	switch n.Type {
	case xmlquery.DocumentNode:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			f.node(w, child, depth)
		}

	case xmlquery.DeclarationNode:
		if !f.decl {
			return
		}
		w.WriteString("<?xml")
		for _, attr := range n.Attr {
			fmt.Fprintf(w, " %s=\"%s\"", attr.Name.Local, escapeAttr(attr.Value))
		}
		w.WriteString("?>\n")

	case xmlquery.ElementNode:
		w.WriteString(strings.Repeat(indent, depth))
		w.WriteString("<")
		w.WriteString(qualified(n))
		for _, attr := range n.Attr {
			name := attr.Name.Local
			if attr.Name.Space != "" {
				name = attr.Name.Space + ":" + name
			}
			fmt.Fprintf(w, " %s=\"%s\"", name, escapeAttr(attr.Value))
		}

		if n.FirstChild == nil {
			w.WriteString("/>\n")
			return
		}
		nested := false
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xmlquery.ElementNode {
				nested = true
				break
			}
		}
		w.WriteString(">")
		if nested {
			w.WriteString("\n")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case xmlquery.ElementNode, xmlquery.CommentNode:
				f.node(w, child, depth+1)
			case xmlquery.TextNode, xmlquery.CharDataNode:
				text := child.Data
				if nested {
					text = strings.TrimSpace(text)
					if text == "" {
						continue
					}
					w.WriteString(strings.Repeat(indent, depth+1))
				}
				xml.EscapeText(w, []byte(text))
				if nested {
					w.WriteString("\n")
				}
			}
		}
		if nested {
			w.WriteString(strings.Repeat(indent, depth))
		}
		w.WriteString("</")
		w.WriteString(qualified(n))
		w.WriteString(">\n")

	case xmlquery.CommentNode:
		w.WriteString(strings.Repeat(indent, depth))
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->\n")
	}
}

func qualified(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}
