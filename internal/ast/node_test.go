package ast

import "testing"

func TestWalkVisitsIfBranches(t *testing.T) {
	root := NewElement("div", nil)
	a := NewElement("a", root)
	b := NewElement("b", root)
	c := NewElement("c", root)
	a.If = "ok"
	a.AddIfCondition("ok", a)
	a.AddIfCondition("", b)
	root.Children = []*Node{a, c}

	var seen []string
	Walk(root, func(n *Node) bool {
		seen = append(seen, n.Tag)
		return true
	})
	want := []string{"div", "a", "b", "c"}
	if len(seen) != len(want) {
		t.Fatalf("Walk visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Walk visited %v, want %v", seen, want)
		}
	}
}

func TestRemoveAttrKeepsRawMaps(t *testing.T) {
	n := NewElement("p", nil)
	n.Attrs = []Attr{{Name: "id", Value: "x"}, {Name: "title", Value: "t"}}
	n.AttrsMap["id"] = "x"
	n.AttrsMap["title"] = "t"

	if v, ok := n.RemoveAttr("id"); !ok || v != "x" {
		t.Fatalf("RemoveAttr(id) = %q, %v", v, ok)
	}
	if len(n.Attrs) != 1 || n.Attrs[0].Name != "title" {
		t.Fatalf("unexpected attrs after removal: %+v", n.Attrs)
	}
	if v, ok := n.Attr("id"); !ok || v != "x" {
		t.Fatalf("AttrsMap must keep removed attribute, got %q %v", v, ok)
	}
	if _, ok := n.RemoveAttr("missing"); ok {
		t.Fatalf("RemoveAttr(missing) reported success")
	}
}
