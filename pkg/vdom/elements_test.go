package vdom

import "testing"

func TestCreateElement(t *testing.T) {
	node := Div(ID("main"), Class("a", "b"), H1("Title"), "text")

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("got %v <%s>, want element <div>", node.Kind, node.Tag)
	}
	if node.Props["id"] != "main" {
		t.Errorf("id = %v, want main", node.Props["id"])
	}
	if node.Props["class"] != "a b" {
		t.Errorf("class = %v, want 'a b'", node.Props["class"])
	}
	if len(node.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(node.Children))
	}
	if node.Children[1].Kind != KindText {
		t.Errorf("string child should become text node")
	}
}

func TestCreateElementAttrSlice(t *testing.T) {
	node := Input([]Attr{Type("text"), Name("q"), {}})
	if node.Props["type"] != "text" || node.Props["name"] != "q" {
		t.Errorf("Props = %v", node.Props)
	}
	if len(node.Props) != 2 {
		t.Errorf("empty Attr should be ignored, got %d props", len(node.Props))
	}
}

func TestCustomElement(t *testing.T) {
	node := El("my-custom-element", AttrOf("x-event", "click"))
	if node.Tag != "my-custom-element" {
		t.Errorf("Tag = %q", node.Tag)
	}
	if node.Props["x-event"] != "click" {
		t.Errorf("x-event = %v", node.Props["x-event"])
	}
}

func TestInvalidChildRecordsFault(t *testing.T) {
	node := Ul(Li("ok"), 42, struct{}{})

	err := node.Err()
	if err == nil {
		t.Fatal("expected a build fault")
	}
	fault, ok := err.(*BuildFault)
	if !ok {
		t.Fatalf("err = %T, want *BuildFault", err)
	}
	if fault.Tag != "ul" || fault.Index != 1 {
		t.Errorf("fault = %+v, want ul argument 1", fault)
	}
	if len(node.Children) != 1 {
		t.Errorf("valid children should still be appended")
	}
}

func TestAttrOnFragmentRecordsFault(t *testing.T) {
	node := Fragment(Class("x"), "text")
	if node.Err() == nil {
		t.Fatal("attribute on fragment should be a build fault")
	}
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("br") || !IsVoidElement("img") {
		t.Error("br and img are void")
	}
	if IsVoidElement("div") {
		t.Error("div is not void")
	}
}
