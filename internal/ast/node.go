package ast

// Kind classifies template nodes.
type Kind uint8

const (
	// KindElement is a tag with attributes and children.
	KindElement Kind = iota + 1
	// KindText is literal text.
	KindText
	// KindExpression is text containing interpolations.
	KindExpression
	// KindComment is an HTML comment kept on request.
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindExpression:
		return "expression"
	case KindComment:
		return "comment"
	}
	return "unknown"
}

// Attr is one raw attribute as written in the template.
// Start/End cover the whole name="value" pair.
type Attr struct {
	Name    string
	Value   string
	Dynamic bool
	Start   uint32
	End     uint32
}

// Directive is a v-* attribute that is not handled by the parser itself.
type Directive struct {
	Name    string // without the v- prefix
	RawName string
	Value   string
	Arg     string
	Start   uint32
	End     uint32
}

// IfCondition is one branch of a v-if / v-else-if / v-else chain.
// Exp is empty for the v-else branch.
type IfCondition struct {
	Exp   string
	Block *Node
}

// Token is a piece of an interpolated text node. Interp tokens hold the
// trimmed expression found between delimiters; the others hold literal text.
type Token struct {
	Text   string
	Interp bool
}

// Node is a template AST node. One struct serves all kinds; fields that do
// not apply to a kind stay zero.
type Node struct {
	Kind     Kind
	Tag      string
	Parent   *Node
	Children []*Node

	Attrs      []Attr            // plain attributes, in order
	AttrsMap   map[string]string // every raw attribute by name
	RawAttrs   map[string]Attr   // every raw attribute with its range
	Bindings   []Attr            // :x and v-bind:x
	Events     []Attr            // @x and v-on:x
	Props      []Attr            // DOM properties added by directives; Value is code
	Directives []Directive

	Text   string
	Tokens []Token

	If           string
	ElseIf       string
	Else         bool
	IfConditions []IfCondition

	For      string
	Alias    string
	Iterator string
	Key      string

	Pre        bool
	Plain      bool
	Forbidden  bool
	ModuleData map[string]string // keyed by module-specific name

	Static      bool
	StaticRoot  bool
	StaticInFor bool
	StaticIndex int // position in StaticRenderFns, -1 when not hoisted
	SSRString   bool

	Start uint32
	End   uint32
}

// NewElement returns an element node with maps ready for use.
func NewElement(tag string, parent *Node) *Node {
	return &Node{
		Kind:        KindElement,
		Tag:         tag,
		Parent:      parent,
		AttrsMap:    make(map[string]string),
		RawAttrs:    make(map[string]Attr),
		StaticIndex: -1,
	}
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.Kind == KindElement
}

// Attr returns the raw attribute value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.AttrsMap == nil {
		return "", false
	}
	v, ok := n.AttrsMap[name]
	return v, ok
}

// RemoveAttr drops a plain attribute from Attrs and returns its value. The
// raw maps keep it so later passes can still report positions.
func (n *Node) RemoveAttr(name string) (string, bool) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return a.Value, true
		}
	}
	return "", false
}

// RemoveBindingAttr drops a ":name" or "v-bind:name" attribute and returns
// its expression.
func (n *Node) RemoveBindingAttr(name string) (string, bool) {
	if v, ok := n.RemoveAttr(":" + name); ok {
		return v, true
	}
	return n.RemoveAttr("v-bind:" + name)
}

// SetModuleData stores a module-owned value.
func (n *Node) SetModuleData(key, value string) {
	if n.ModuleData == nil {
		n.ModuleData = make(map[string]string)
	}
	n.ModuleData[key] = value
}

// AddIfCondition appends a branch to the v-if chain.
func (n *Node) AddIfCondition(exp string, block *Node) {
	n.IfConditions = append(n.IfConditions, IfCondition{Exp: exp, Block: block})
}

// Walk visits n and every descendant in document order, including the
// alternate branches of v-if chains. Returning false skips children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
	for i := 1; i < len(n.IfConditions); i++ {
		Walk(n.IfConditions[i].Block, visit)
	}
}
