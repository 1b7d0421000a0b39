package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"tmplc/internal/ast"
)

// ASTNodeOutput is the JSON shape of one template node.
type ASTNodeOutput struct {
	Kind     string            `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Start    uint32            `json:"start"`
	End      uint32            `json:"end"`
	Text     string            `json:"text,omitempty"`
	Fields   map[string]any    `json:"fields,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []ASTNodeOutput   `json:"children,omitempty"`
}

// FormatASTPretty prints the tree with box-drawing prefixes. Alternate
// v-else-if / v-else branches are printed under their v-if owner.
func FormatASTPretty(w io.Writer, root *ast.Node) error {
	if root == nil {
		_, err := fmt.Fprintln(w, "<empty>")
		return err
	}
	if _, err := fmt.Fprintln(w, describe(root)); err != nil {
		return err
	}
	return prettyChildren(w, root, "")
}

func prettyChildren(w io.Writer, n *ast.Node, prefix string) error {
	kids := treeChildren(n)
	for i, c := range kids {
		branch, next := "├─ ", "│  "
		if i == len(kids)-1 {
			branch, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, describe(c)); err != nil {
			return err
		}
		if err := prettyChildren(w, c, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

// treeChildren returns children plus the non-first if-branches.
func treeChildren(n *ast.Node) []*ast.Node {
	out := append([]*ast.Node{}, n.Children...)
	for i, cond := range n.IfConditions {
		if i == 0 || cond.Block == nil {
			continue
		}
		out = append(out, cond.Block)
	}
	return out
}

func describe(n *ast.Node) string {
	var b strings.Builder
	switch n.Kind {
	case ast.KindElement:
		fmt.Fprintf(&b, "<%s>", n.Tag)
	case ast.KindText, ast.KindComment, ast.KindExpression:
		fmt.Fprintf(&b, "%s %q", n.Kind, n.Text)
	default:
		b.WriteString(n.Kind.String())
	}
	fmt.Fprintf(&b, " [%d-%d]", n.Start, n.End)
	for _, f := range flags(n) {
		b.WriteByte(' ')
		b.WriteString(f)
	}
	return b.String()
}

func flags(n *ast.Node) []string {
	var out []string
	if n.If != "" {
		out = append(out, "if="+n.If)
	}
	if n.ElseIf != "" {
		out = append(out, "else-if="+n.ElseIf)
	}
	if n.Else {
		out = append(out, "else")
	}
	if n.For != "" {
		out = append(out, "for="+n.For)
	}
	if n.Key != "" {
		out = append(out, "key="+n.Key)
	}
	if n.Pre {
		out = append(out, "pre")
	}
	if n.StaticRoot {
		out = append(out, "static-root")
	} else if n.Static {
		out = append(out, "static")
	}
	if n.SSRString {
		out = append(out, "ssr")
	}
	return out
}

// FormatASTJSON encodes the tree as indented JSON.
func FormatASTJSON(w io.Writer, root *ast.Node) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if root == nil {
		return encoder.Encode(nil)
	}
	return encoder.Encode(NodeJSON(root))
}

// NodeJSON converts n and its subtree into the JSON shape.
func NodeJSON(n *ast.Node) ASTNodeOutput {
	out := ASTNodeOutput{
		Kind:  n.Kind.String(),
		Tag:   n.Tag,
		Start: n.Start,
		End:   n.End,
		Text:  n.Text,
	}
	if len(n.AttrsMap) > 0 {
		out.Attrs = make(map[string]string, len(n.AttrsMap))
		for k, v := range n.AttrsMap {
			out.Attrs[k] = v
		}
	}
	fields := map[string]any{}
	for _, f := range flags(n) {
		name, val, ok := strings.Cut(f, "=")
		if ok {
			fields[name] = val
		} else {
			fields[name] = true
		}
	}
	if len(n.Directives) > 0 {
		names := make([]string, 0, len(n.Directives))
		for _, d := range n.Directives {
			names = append(names, d.Name)
		}
		sort.Strings(names)
		fields["directives"] = names
	}
	if len(fields) > 0 {
		out.Fields = fields
	}
	for _, c := range treeChildren(n) {
		out.Children = append(out.Children, NodeJSON(c))
	}
	return out
}
