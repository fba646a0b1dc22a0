package vdom

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		node    *VNode
		wantErr bool
	}{
		{"nil", nil, false},
		{"valid tree", Html(Body(Div("hello"), Fragment(P("a")))), false},
		{"nested fault", Html(Body(Div(3.14))), true},
		{"fault in fallback", Suspense(Div(true), Text("x")), true},
		{"fault in suspense child", Suspense(Text("loading"), Div(P(1))), true},
		{"unknown kind", &VNode{Kind: VKind(99)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.node)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var fault *BuildFault
				if !errors.As(err, &fault) {
					t.Errorf("error %T is not a *BuildFault", err)
				}
			}
		})
	}
}

func TestValidateReportsFirstFaultInPreOrder(t *testing.T) {
	root := Div(Span(1), P(2))
	err := Validate(root)
	var fault *BuildFault
	if !errors.As(err, &fault) {
		t.Fatalf("err = %v", err)
	}
	if fault.Tag != "span" {
		t.Errorf("fault.Tag = %q, want span", fault.Tag)
	}
}
