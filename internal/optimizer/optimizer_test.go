package optimizer

import (
	"testing"

	"tmplc/internal/ast"
	"tmplc/internal/options"
	"tmplc/internal/parser"
)

func reserved(tag string) bool {
	switch tag {
	case "div", "p", "span", "ul", "li", "template", "slot", "component":
		return true
	}
	return false
}

func optimized(t *testing.T, src string, extra *options.Options) *ast.Node {
	t.Helper()
	cfg := options.Merge(&options.Options{IsReservedTag: reserved}, extra)
	root, err := parser.Parse(src, cfg)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	Optimize(root, cfg)
	return root
}

func TestOptimizeNil(t *testing.T) {
	Optimize(nil, options.Merge(nil, nil))
}

func TestStaticRoots(t *testing.T) {
	root := optimized(t, `<div><p><span>a</span></p><p>b</p>{{ x }}</div>`, nil)
	if root.Static || root.StaticRoot {
		t.Fatalf("root with interpolation must not be static")
	}
	nested, single := root.Children[0], root.Children[1]
	if !nested.Static || !nested.StaticRoot {
		t.Fatalf("<p><span> must be a static root: static=%v root=%v", nested.Static, nested.StaticRoot)
	}
	if !single.Static || single.StaticRoot {
		t.Fatalf("<p> with a single text child is static but not a root")
	}
	if root.Children[2].Static {
		t.Fatalf("expression node must not be static")
	}
}

func TestDynamicMarkers(t *testing.T) {
	tests := map[string]string{
		"binding":   `<div><p :id="a"><span>x</span></p></div>`,
		"event":     `<div><p @click="a"><span>x</span></p></div>`,
		"directive": `<div><p v-show="a"><span>x</span></p></div>`,
		"for":       `<div><p v-for="a in b"><span>x</span></p></div>`,
		"key":       `<div><p key="k"><span>x</span></p></div>`,
		"component": `<div><my-comp><span>x</span></my-comp></div>`,
		"slot":      `<div><slot><span>x</span></slot></div>`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			root := optimized(t, src, nil)
			if p := root.Children[0]; p.Static || p.StaticRoot {
				t.Fatalf("%s must not be static", src)
			}
			if root.Static {
				t.Fatalf("parent of a dynamic node must not be static")
			}
		})
	}
}

func TestComponentChildrenUntouched(t *testing.T) {
	root := optimized(t, `<div><my-comp><span>x</span></my-comp></div>`, nil)
	span := root.Children[0].Children[0]
	if span.Static {
		t.Fatalf("children of components are not visited")
	}
}

func TestIfBranchesAffectOwner(t *testing.T) {
	root := optimized(t, `<div><p v-if="a"><span>x</span></p><p v-else><span>{{ y }}</span></p></div>`, nil)
	owner := root.Children[0]
	if owner.Static {
		t.Fatalf("v-if owner is never static")
	}
	alt := owner.IfConditions[1].Block
	if alt.Static {
		t.Fatalf("else branch with interpolation must not be static")
	}
}

func TestStaticInFor(t *testing.T) {
	root := optimized(t, `<ul><li v-for="x in xs"><p><span>a</span></p></li></ul>`, nil)
	li := root.Children[0]
	p := li.Children[0]
	if !p.StaticRoot || !p.StaticInFor {
		t.Fatalf("static subtree inside v-for must be flagged: root=%v inFor=%v", p.StaticRoot, p.StaticInFor)
	}
}

func TestTemplateForChildrenAreDynamic(t *testing.T) {
	root := optimized(t, `<div><template v-for="x in xs"><p>a</p></template></div>`, nil)
	p := root.Children[0].Children[0]
	if p.Static {
		t.Fatalf("direct children of <template v-for> must not be static")
	}
}

func TestPreIsStatic(t *testing.T) {
	root := optimized(t, `<div><p v-pre><span>{{ raw }}</span></p></div>`, nil)
	if !root.Static || !root.StaticRoot {
		t.Fatalf("fully static parent must be the static root")
	}
	if p := root.Children[0]; !p.Static || p.StaticRoot {
		t.Fatalf("v-pre child under a static root: static=%v root=%v", p.Static, p.StaticRoot)
	}

	root = optimized(t, `<div><p v-pre><span>{{ raw }}</span></p>{{ y }}</div>`, nil)
	if root.Static {
		t.Fatalf("interpolation sibling must keep the parent dynamic")
	}
	if p := root.Children[0]; !p.Static || !p.StaticRoot {
		t.Fatalf("v-pre subtree must be static root: static=%v root=%v", p.Static, p.StaticRoot)
	}
}

func TestModuleDataRespectsStaticKeys(t *testing.T) {
	mod := func(keys ...string) *options.Module {
		return &options.Module{
			Name:       "mark",
			StaticKeys: keys,
			TransformNode: func(n *ast.Node, _ *options.Config) {
				if n.Tag == "p" {
					if n.ModuleData == nil {
						n.ModuleData = map[string]string{}
					}
					n.ModuleData["marked"] = "1"
				}
			},
		}
	}
	src := `<div><p><span>a</span></p></div>`

	root := optimized(t, src, &options.Options{Modules: []*options.Module{mod()}})
	if root.Children[0].Static {
		t.Fatalf("unknown module data must make the node dynamic")
	}
	root = optimized(t, src, &options.Options{Modules: []*options.Module{mod("marked")}})
	if !root.Children[0].Static {
		t.Fatalf("module data under a static key keeps the node static")
	}
	root = optimized(t, src, &options.Options{Modules: []*options.Module{mod()}, StaticKeys: []string{"marked"}})
	if !root.Children[0].Static {
		t.Fatalf("configured static keys must be honoured")
	}
}
