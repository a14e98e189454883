// Package xmltree holds a small namespace-free XML tree and a path
// pattern matcher used to mine clinical records.
//
// Patterns are slash separated local names. The first segment names the
// root; each following segment consumes one level of element children,
// where "*" matches any single child.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"strings"
)

// NodeKind distinguishes element and text nodes.
type NodeKind uint8

const (
	ElementNode NodeKind = iota
	TextNode
)

// Node is one element or text node. Names are local names with the
// namespace stripped; namespace declarations are not kept as attributes.
type Node struct {
	Kind     NodeKind
	Name     string
	Attrs    map[string]string
	Data     string // text content, TextNode only
	Children []*Node
}

// Text returns the concatenation of the node's direct text children.
// For a text node it is the node's own data.
func (n *Node) Text() string {
	if n.Kind == TextNode {
		return n.Data
	}
	var b strings.Builder
	for _, c := range n.Children {
		if c.Kind == TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// Match is one result of Query.
type Match struct {
	Node  *Node
	Path  []string          // local names from the root to Node
	Attrs map[string]string // nil for text nodes
	Text  string
}

// Name returns the last element of the matched path.
func (m Match) Name() string {
	if len(m.Path) == 0 {
		return ""
	}
	return m.Path[len(m.Path)-1]
}

// Parse reads a document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Kind: ElementNode, Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Node{Kind: TextNode, Data: string(t)})
		}
	}

	if root == nil {
		return nil, fmt.Errorf("failed to parse xml: no root element")
	}
	return root, nil
}

// Query lazily yields every node reachable from root along pattern.
// Nothing is yielded when the first segment differs from root's name.
func Query(root *Node, pattern string) iter.Seq[Match] {
	segments := strings.Split(pattern, "/")
	return func(yield func(Match) bool) {
		if root == nil || root.Kind != ElementNode || root.Name != segments[0] {
			return
		}
		walk(root, segments[1:], []string{segments[0]}, yield)
	}
}

func walk(n *Node, rest, path []string, yield func(Match) bool) bool {
	if len(rest) == 0 {
		m := Match{Node: n, Path: path, Text: n.Text()}
		if n.Kind == ElementNode {
			m.Attrs = n.Attrs
		}
		return yield(m)
	}

	for _, c := range n.Children {
		if c.Kind != ElementNode {
			continue
		}
		if rest[0] != "*" && rest[0] != c.Name {
			continue
		}
		childPath := append(path[:len(path):len(path)], c.Name)
		if !walk(c, rest[1:], childPath, yield) {
			return false
		}
	}
	return true
}

// LastText returns the text of the final match of pattern, the way a
// barcode lookup reads a single-valued field.
func LastText(root *Node, pattern string) (string, bool) {
	var text string
	found := false
	for m := range Query(root, pattern) {
		text = m.Text
		found = true
	}
	return text, found
}
