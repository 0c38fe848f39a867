package docxfill

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Namespace prefix of WordprocessingML elements
const wordNS = "w"

// xmlHeader is written in front of every serialized part
var xmlHeader = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")

// xmlNode is a generic element of a document part.
// XMLName.Space holds the raw prefix ("w" for <w:p>), not the namespace URL,
// so the tree serializes back with the same prefixes it was read with.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr
	Content []byte
	Nodes   []*xmlNode

	parent *xmlNode
}

// newWordNode creates detached <w:tag>
func newWordNode(tag string) *xmlNode {
	return &xmlNode{
		XMLName: xml.Name{Space: wordNS, Local: tag},
	}
}

// parseXMLNodes reads raw part bytes into a tree.
// The returned root is a holder without name, its children are top level elements.
func parseXMLNodes(buf []byte) (*xmlNode, error) {
	root := &xmlNode{}
	cur := root

	d := xml.NewDecoder(bytes.NewReader(buf))
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{
				XMLName: tok.Name,
				Attrs:   append([]xml.Attr(nil), tok.Attr...),
				parent:  cur,
			}
			cur.Nodes = append(cur.Nodes, n)
			cur = n
		case xml.EndElement:
			if cur == root {
				return nil, fmt.Errorf("unexpected closing tag </%s>", qualifiedName(tok.Name))
			}
			cur = cur.parent
		case xml.CharData:
			if cur != root {
				cur.Content = append(cur.Content, tok...)
			}
		}
	}

	if cur != root {
		return nil, fmt.Errorf("unclosed tag <%s>", cur.Tag())
	}
	return root, nil
}

// Tag - element name with prefix as written in the part: "w:p"
func (xnode *xmlNode) Tag() string {
	return qualifiedName(xnode.XMLName)
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// Is node a WordprocessingML element with given local name
func (xnode *xmlNode) isWord(local string) bool {
	return xnode.XMLName.Space == wordNS && xnode.XMLName.Local == local
}

// WalkWithEnd - walk down all nodes, do not go deeper when fn returns true
func (xnode *xmlNode) WalkWithEnd(fn func(*xmlNode) bool) {
	for _, n := range xnode.Nodes {
		if fn(n) {
			continue
		}
		n.WalkWithEnd(fn)
	}
}

// Direct children with given word tag
func (xnode *xmlNode) children(local string) []*xmlNode {
	var nodes []*xmlNode
	for _, n := range xnode.Nodes {
		if n.isWord(local) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// First direct child with given word tag
func (xnode *xmlNode) child(local string) *xmlNode {
	for _, n := range xnode.Nodes {
		if n.isWord(local) {
			return n
		}
	}
	return nil
}

// Find first node down the tree with given word tag
func (xnode *xmlNode) find(local string) *xmlNode {
	var found *xmlNode
	xnode.WalkWithEnd(func(n *xmlNode) bool {
		if found != nil {
			return true
		}
		if n.isWord(local) {
			found = n
			return true
		}
		return false
	})
	return found
}

// Find closest parent with given word tag
func (xnode *xmlNode) closestUp(local string) *xmlNode {
	for n := xnode.parent; n != nil; n = n.parent {
		if n.isWord(local) {
			return n
		}
	}
	return nil
}

// Attr - value of attribute by local name, prefix is ignored
func (xnode *xmlNode) Attr(local string) string {
	for _, attr := range xnode.Attrs {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// Set attribute value, add it when missing
func (xnode *xmlNode) setAttr(name xml.Name, value string) {
	for i, attr := range xnode.Attrs {
		if attr.Name == name {
			xnode.Attrs[i].Value = value
			return
		}
	}
	xnode.Attrs = append(xnode.Attrs, xml.Attr{Name: name, Value: value})
}

// index of element inside parent.Nodes slice
func (xnode *xmlNode) index() int {
	if xnode.parent != nil {
		for i, n := range xnode.parent.Nodes {
			if xnode == n {
				return i
			}
		}
	}
	return -1
}

// Append child at the end
func (xnode *xmlNode) add(n *xmlNode) {
	n.parent = xnode
	xnode.Nodes = append(xnode.Nodes, n)
}

// Insert child at given index of Nodes
func (xnode *xmlNode) insertAt(i int, n *xmlNode) {
	if i < 0 || i > len(xnode.Nodes) {
		i = len(xnode.Nodes)
	}
	n.parent = xnode
	xnode.Nodes = append(xnode.Nodes[:i], append([]*xmlNode{n}, xnode.Nodes[i:]...)...)
}

// Insert given node right before this one
func (xnode *xmlNode) insertBefore(n *xmlNode) {
	if xnode.parent == nil {
		return
	}
	xnode.parent.insertAt(xnode.index(), n)
}

// Insert given node right after this one
func (xnode *xmlNode) insertAfter(n *xmlNode) {
	if xnode.parent == nil {
		return
	}
	xnode.parent.insertAt(xnode.index()+1, n)
}

// Clone and add right after this node
// return new xmlNode
func (xnode *xmlNode) cloneAndAppend() *xmlNode {
	nnew := xnode.clone()
	if xnode.index() == -1 {
		// not in any structure, so dissapears in output
		return nnew
	}
	xnode.insertAfter(nnew)
	return nnew
}

// Copy node as new and all childs as new too
// no shared addresses as it would be by only copying it
func (xnode *xmlNode) clone() *xmlNode {
	if xnode == nil {
		return nil
	}

	xnodeCopy := &xmlNode{
		XMLName: xnode.XMLName,
		Attrs:   append([]xml.Attr(nil), xnode.Attrs...),
		Content: append([]byte(nil), xnode.Content...),
	}
	for _, n := range xnode.Nodes {
		xnodeCopy.add(n.clone())
	}

	return xnodeCopy
}

// Delete node from parent list
func (xnode *xmlNode) delete() {
	index := xnode.index()
	if index == -1 {
		return
	}
	nodes := xnode.parent.Nodes
	xnode.parent.Nodes = append(nodes[:index:index], nodes[index+1:]...)
	xnode.parent = nil
}

// Contents - return text of all <w:t> nodes merged
func (xnode *xmlNode) Contents() []byte {
	var buf []byte
	for _, n := range xnode.textNodes() {
		buf = append(buf, n.Content...)
	}
	return buf
}

// All <w:t> nodes of this element.
// Nested paragraphs (text boxes) and tables are not part of this element text.
func (xnode *xmlNode) textNodes() []*xmlNode {
	var texts []*xmlNode
	xnode.WalkWithEnd(func(n *xmlNode) bool {
		if n.isWord("p") || n.isWord("tbl") {
			return true
		}
		if n.isWord("t") {
			texts = append(texts, n)
			return true
		}
		return false
	})
	return texts
}

// Set plain text of <w:t> node, keep spaces visible in Word
func (xnode *xmlNode) setText(s string) {
	xnode.Content = []byte(s)
	if s != "" && (isSpace(s[0]) || isSpace(s[len(s)-1])) {
		xnode.setAttr(xml.Name{Space: "xml", Local: "space"}, "preserve")
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Write node and all childs as xml
func (xnode *xmlNode) writeTo(buf *bytes.Buffer) {
	tag := xnode.Tag()

	buf.WriteByte('<')
	buf.WriteString(tag)
	for _, attr := range xnode.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(qualifiedName(attr.Name))
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(attr.Value)) // #nosec G104 - bytes.Buffer never fails
		buf.WriteByte('"')
	}

	// whitespace between child elements is formatting only
	content := xnode.Content
	if len(xnode.Nodes) > 0 && len(bytes.TrimSpace(content)) == 0 {
		content = nil
	}

	if len(content) == 0 && len(xnode.Nodes) == 0 {
		buf.WriteString("/>")
		return
	}

	buf.WriteByte('>')
	xml.EscapeText(buf, content) // #nosec G104
	for _, n := range xnode.Nodes {
		n.writeTo(buf)
	}
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteByte('>')
}

// Bytes of the whole part when called on root holder
func (xnode *xmlNode) Bytes() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(xmlHeader)
	for _, n := range xnode.Nodes {
		n.writeTo(buf)
	}
	return buf.Bytes()
}

// String get node as string for debugging purposes
// prints useful information
func (xnode *xmlNode) String() string {
	s := fmt.Sprintf("%s: ", xnode.Tag())
	s += fmt.Sprintf("[%s] == ", xnode.Content)
	s += fmt.Sprintf("[%s]", xnode.Contents())
	if xnode.parent != nil {
		s += fmt.Sprintf("\tParent: %s", xnode.parent.Tag())
	}
	return s
}
