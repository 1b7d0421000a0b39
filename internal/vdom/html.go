package vdom

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTML serialises n. Template elements render their children only.
func (n *VNode) HTML() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *VNode) write(b *strings.Builder) {
	switch {
	case n == nil:
		return
	case n.Raw != "":
		b.WriteString(n.Raw)
		return
	case n.Comment:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
		return
	case n.Tag == "":
		b.WriteString(html.EscapeString(n.Text))
		return
	case n.Tag == "template":
		for _, c := range n.Children {
			c.write(b)
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	writeAttr(b, "class", RenderClass(n.Data["staticClass"], n.Data["class"]))
	writeAttr(b, "style", RenderStyle(n.Data["staticStyle"], n.Data["style"]))
	if attrs, ok := n.Data["attrs"].(map[string]any); ok {
		for _, k := range sortedKeys(attrs) {
			if k == "class" || k == "style" {
				continue
			}
			writeAttr(b, k, attrs[k])
		}
	}
	b.WriteByte('>')
	if voidTags[n.Tag] {
		return
	}
	props, _ := n.Data["domProps"].(map[string]any)
	switch {
	case props["innerHTML"] != nil:
		b.WriteString(Stringify(props["innerHTML"]))
	case props["textContent"] != nil:
		b.WriteString(html.EscapeString(Stringify(props["textContent"])))
	default:
		for _, c := range n.Children {
			c.write(b)
		}
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func writeAttr(b *strings.Builder, name string, v any) {
	switch v := v.(type) {
	case nil:
		return
	case bool:
		if v {
			b.WriteByte(' ')
			b.WriteString(name)
		}
		return
	case string:
		if v == "" && (name == "class" || name == "style") {
			return
		}
	}
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(Stringify(v)))
	b.WriteByte('"')
}

// RenderClass merges a static class string with a dynamic class value:
// a string, a list of values or a map of name to condition.
func RenderClass(static, dynamic any) string {
	var parts []string
	if s, ok := static.(string); ok && s != "" {
		parts = append(parts, s)
	}
	if d := stringifyClass(dynamic); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, " ")
}

func stringifyClass(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		var parts []string
		for _, e := range v {
			if s := stringifyClass(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		var parts []string
		for _, k := range sortedKeys(v) {
			if Truthy(v[k]) {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// RenderStyle merges a static style string with a dynamic map of
// property to value.
func RenderStyle(static, dynamic any) string {
	var b strings.Builder
	if s, ok := static.(string); ok && s != "" {
		b.WriteString(strings.TrimSuffix(strings.TrimSpace(s), ";"))
		b.WriteByte(';')
	}
	switch d := dynamic.(type) {
	case string:
		if d != "" {
			b.WriteString(strings.TrimSuffix(strings.TrimSpace(d), ";"))
			b.WriteByte(';')
		}
	case map[string]any:
		for _, k := range sortedKeys(d) {
			if d[k] == nil {
				continue
			}
			b.WriteString(k)
			b.WriteByte(':')
			b.WriteString(Stringify(d[k]))
			b.WriteByte(';')
		}
	}
	return b.String()
}

// Stringify converts a data value to display text.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return fmt.Sprint(v)
}

// Truthy follows the template language: nil, false, "" and 0 are false.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
