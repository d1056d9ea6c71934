package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

// Renderable is page content that can produce its own string representation.
type Renderable interface {
	Render() (string, error)
}

// Text is literal page content, written as-is.
type Text string

// Render implements Renderable.
func (t Text) Render() (string, error) { return string(t), nil }

// Func adapts a function to Renderable.
type Func func() (string, error)

// Render implements Renderable.
func (f Func) Render() (string, error) {
	if f == nil {
		return "", errors.RenderError("nil render function").Build()
	}
	return f()
}

// HTML is an x/net/html node tree. Rendering a DocumentNode emits its doctype.
type HTML struct {
	Node *html.Node
}

// Render implements Renderable.
func (h HTML) Render() (string, error) {
	if h.Node == nil {
		return "", errors.RenderError("nil html node").Build()
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, h.Node); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to serialize html").Build()
	}
	return buf.String(), nil
}

// Document wraps root (normally an <html> element) in a document node carrying an
// HTML5 doctype.
func Document(root *html.Node) HTML {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	if root != nil {
		doc.AppendChild(root)
	}
	return HTML{Node: doc}
}

// Markdown is CommonMark source rendered to an HTML fragment.
type Markdown struct {
	Source string
	// Markdown converter; goldmark.New() defaults when nil.
	Converter goldmark.Markdown
}

// Render implements Renderable.
func (m Markdown) Render() (string, error) {
	md := m.Converter
	if md == nil {
		md = goldmark.New()
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(m.Source), &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to convert markdown").Build()
	}
	return buf.String(), nil
}

// Node renders r and returns it as a raw node for embedding inside an html tree.
// Failures surface later, when the enclosing tree is rendered.
func Node(r Renderable) *html.Node {
	s, err := r.Render()
	if err != nil {
		return &html.Node{Type: html.ErrorNode, Data: err.Error()}
	}
	return &html.Node{Type: html.RawNode, Data: strings.TrimSpace(s)}
}

// Element builds an element node with attributes given as name/value pairs and the
// supplied children. A trailing unpaired attribute name is ignored.
func Element(a atom.Atom, attrs []string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

// TextNode builds an escaped text node.
func TextNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Comment builds a comment node.
func Comment(s string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: s}
}
