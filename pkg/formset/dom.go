package formset

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseDocument parses a complete HTML document.
func ParseDocument(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("formset: parse document: %w", err)
	}
	return doc, nil
}

// ParseFragment parses markup in the context of a <body> element and wraps the
// resulting nodes in a detached <div> so callers get a single root to search.
func ParseFragment(r io.Reader) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("formset: parse fragment: %w", err)
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// RenderNode writes n (and its subtree) as HTML.
func RenderNode(w io.Writer, n *html.Node) error {
	if n == nil {
		return nil
	}
	return html.Render(w, n)
}

// RenderChildren writes the children of n without n itself. Useful for the
// wrapper returned by ParseFragment.
func RenderChildren(w io.Writer, n *html.Node) error {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders n to a string, returning "" on failure.
func RenderString(n *html.Node) string {
	var buf bytes.Buffer
	if err := RenderNode(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Walk visits n and its descendants in document order. Returning false from fn
// skips the subtree of the visited node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// FindAll returns every element below root (root excluded) matching pred.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if root == nil {
		return out
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(n *html.Node) bool {
			if n.Type == html.ElementNode && pred(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// FindFirst returns the first element below root matching pred.
func FindFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n != root && n.Type == html.ElementNode && pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByID returns the element with the given id attribute.
func FindByID(root *html.Node, id string) *html.Node {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if root != nil && root.Type == html.ElementNode && Attr(root, "id") == id {
		return root
	}
	return FindFirst(root, func(n *html.Node) bool {
		return Attr(n, "id") == id
	})
}

// FindByClass returns every element below root carrying class.
func FindByClass(root *html.Node, class string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool {
		return HasClass(n, class)
	})
}

// ByTag matches elements by lowercase tag name.
func ByTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, tag := range tags {
			if n.Data == tag {
				return true
			}
		}
		return false
	}
}

// Attr returns the value of key on n, or "" when absent.
func Attr(n *html.Node, key string) string {
	value, _ := LookupAttr(n, key)
	return value
}

// LookupAttr reports the value of key and whether it is present.
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to value on n, appending the attribute when missing.
func SetAttr(n *html.Node, key, value string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr drops key from n.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// HasClass reports whether the class attribute of n contains class.
func HasClass(n *html.Node, class string) bool {
	class = strings.TrimSpace(class)
	if n == nil || class == "" {
		return false
	}
	for _, token := range strings.Fields(Attr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

// AddClass appends class to n unless already present.
func AddClass(n *html.Node, class string) {
	class = strings.TrimSpace(class)
	if n == nil || class == "" || HasClass(n, class) {
		return
	}
	current := strings.TrimSpace(Attr(n, "class"))
	if current == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", current+" "+class)
}

// RemoveClass drops class from n.
func RemoveClass(n *html.Node, class string) {
	if n == nil || !HasClass(n, class) {
		return
	}
	tokens := strings.Fields(Attr(n, "class"))
	kept := tokens[:0]
	for _, token := range tokens {
		if token != class {
			kept = append(kept, token)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// TextContent concatenates every text node below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces the children of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// CloneNode returns a detached deep copy of n. Attribute slices are copied so
// edits on the clone never leak back into the source tree.
func CloneNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(CloneNode(c))
	}
	return clone
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
