package client

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// xmlNode is a generic element tree. Sportradar feeds nest the interesting
// elements at depths that vary between feed versions, so lookups search
// descendants by local name instead of binding a fixed struct path.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
}

func parseXML(data []byte) (*xmlNode, error) {
	var root xmlNode
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse xml: %w", err)
	}
	return &root, nil
}

// attr returns the value of the named attribute
func (n *xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// child returns the first direct child with the given local name
func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// find returns the first descendant (depth-first, document order) with the given local name
func (n *xmlNode) find(name string) *xmlNode {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant with the given local name in document order
func (n *xmlNode) findAll(name string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			out = append(out, c)
		}
		out = append(out, c.findAll(name)...)
	}
	return out
}
