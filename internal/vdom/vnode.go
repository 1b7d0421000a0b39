// Package vdom is the output of render functions: a plain tree that can be
// serialised to HTML.
package vdom

// VNode is one rendered node. Exactly one of Tag, Text, Raw or Comment
// describes it.
type VNode struct {
	Tag      string
	Data     map[string]any
	Children []*VNode
	Text     string
	Comment  bool
	Raw      string // pre-rendered markup, emitted as is
}

// RenderFunc produces a tree from component data.
type RenderFunc func(data map[string]any) (*VNode, error)

// NewText returns a text node.
func NewText(s string) *VNode {
	return &VNode{Text: s}
}

// NewComment returns a comment node.
func NewComment(s string) *VNode {
	return &VNode{Text: s, Comment: true}
}

// NewRaw returns a node holding markup.
func NewRaw(html string) *VNode {
	return &VNode{Raw: html}
}

// IsText reports whether n is a text node.
func (n *VNode) IsText() bool {
	return n != nil && n.Tag == "" && n.Raw == "" && !n.Comment
}
