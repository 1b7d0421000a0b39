package web

import (
	"fmt"
	"strconv"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/expr"
	"tmplc/internal/options"
	"tmplc/internal/parser"
	"tmplc/internal/source"
)

// Module data keys. Static ones hold render code, bindings hold expressions.
const (
	KeyStaticClass  = "staticClass"
	KeyClassBinding = "classBinding"
	KeyStaticStyle  = "staticStyle"
	KeyStyleBinding = "styleBinding"
)

// ClassModule moves class and :class out of the attribute list into the
// element data as staticClass and class.
func ClassModule() *options.Module {
	return &options.Module{
		Name:          "class",
		StaticKeys:    []string{KeyStaticClass},
		TransformNode: bindingTransform("class", KeyStaticClass, KeyClassBinding, strings.Fields),
		GenData:       bindingGenData(KeyStaticClass, KeyClassBinding, "class"),
	}
}

// StyleModule does the same for style and :style.
func StyleModule() *options.Module {
	return &options.Module{
		Name:          "style",
		StaticKeys:    []string{KeyStaticStyle},
		TransformNode: bindingTransform("style", KeyStaticStyle, KeyStyleBinding, styleDecls),
		GenData:       bindingGenData(KeyStaticStyle, KeyStyleBinding, "style"),
	}
}

func bindingTransform(attr, staticKey, bindingKey string, split func(string) []string) func(*ast.Node, *options.Config) {
	sep := " "
	if attr == "style" {
		sep = ";"
	}
	return func(n *ast.Node, cfg *options.Config) {
		if static, ok := n.RemoveAttr(attr); ok {
			if _, interp := parser.ParseText(static, cfg.Delimiters()); interp {
				cfg.Warn(fmt.Sprintf("%s=%q: Interpolation inside attributes has been removed. "+
					"Use v-bind or the colon shorthand instead. For example, "+
					"instead of <div %s=\"{{ val }}\">, use <div :%s=\"val\">.", attr, static, attr, attr),
					rawRange(n, attr), false)
			}
			n.SetModuleData(staticKey, strconv.Quote(strings.Join(split(static), sep)))
		}
		if binding, ok := n.RemoveBindingAttr(attr); ok {
			n.SetModuleData(bindingKey, strings.TrimSpace(binding))
		}
	}
}

func bindingGenData(staticKey, bindingKey, dataKey string) func(*ast.Node) []options.DataEntry {
	return func(n *ast.Node) []options.DataEntry {
		var out []options.DataEntry
		if code, ok := n.ModuleData[staticKey]; ok {
			out = append(out, options.DataEntry{Key: staticKey, Code: code})
		}
		if binding, ok := n.ModuleData[bindingKey]; ok {
			out = append(out, options.DataEntry{Key: dataKey, Code: expr.Code(binding)})
		}
		return out
	}
}

// styleDecls splits style text into trimmed "prop:value" declarations.
func styleDecls(text string) []string {
	var out []string
	for _, decl := range strings.Split(text, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop, value = strings.TrimSpace(prop), strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		out = append(out, prop+":"+value)
	}
	return out
}

func rawRange(n *ast.Node, name string) source.Range {
	if a, ok := n.RawAttrs[name]; ok {
		return source.Span(a.Start, a.End)
	}
	return source.Span(n.Start, n.End)
}
