package vdom

import "testing"

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want string
	}{
		{"nil", nil, ""},
		{"text escaped", NewText("a < b"), "a &lt; b"},
		{"comment", NewComment(" c "), "<!-- c -->"},
		{"raw", NewRaw("<b>x</b>"), "<b>x</b>"},
		{
			"element with attrs",
			&VNode{
				Tag: "a",
				Data: map[string]any{
					"attrs": map[string]any{"href": "/x?a=1&b=2", "hidden": false, "download": true, "n": float64(3)},
				},
				Children: []*VNode{NewText("go")},
			},
			`<a download href="/x?a=1&amp;b=2" n="3">go</a>`,
		},
		{
			"class and style merge",
			&VNode{
				Tag: "div",
				Data: map[string]any{
					"staticClass": "a",
					"class":       map[string]any{"on": true, "off": false},
					"staticStyle": "color: red;",
					"style":       map[string]any{"width": "1px"},
				},
			},
			`<div class="a on" style="color: red;width:1px;"></div>`,
		},
		{"void", &VNode{Tag: "br"}, "<br>"},
		{
			"template is transparent",
			&VNode{Tag: "template", Children: []*VNode{{Tag: "p"}, NewText("t")}},
			"<p></p>t",
		},
		{
			"text content",
			&VNode{Tag: "p", Data: map[string]any{"domProps": map[string]any{"textContent": "<i>"}}},
			"<p>&lt;i&gt;</p>",
		},
		{
			"inner html",
			&VNode{Tag: "p", Data: map[string]any{"domProps": map[string]any{"innerHTML": "<i>"}}},
			"<p><i></p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.HTML(); got != tt.want {
				t.Fatalf("HTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderClassList(t *testing.T) {
	got := RenderClass("", []any{"a", map[string]any{"b": 1.0, "c": 0.0}, nil})
	if got != "a b" {
		t.Fatalf("RenderClass = %q", got)
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{nil, false, "", 0.0, 0} {
		if Truthy(v) {
			t.Fatalf("Truthy(%#v) = true", v)
		}
	}
	for _, v := range []any{true, "x", 1.0, []any{}, map[string]any{}} {
		if !Truthy(v) {
			t.Fatalf("Truthy(%#v) = false", v)
		}
	}
}
