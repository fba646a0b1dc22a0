package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/vstream/pkg/vdom"
)

func TestRenderToString(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "text is escaped",
			node: vdom.Text(`<script>alert("x")</script> & 'y'`),
			want: "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt; &amp; &#39;y&#39;",
		},
		{
			name: "element with children",
			node: vdom.Div(vdom.H1("Hello Hono!"), vdom.P("x")),
			want: "<div><h1>Hello Hono!</h1><p>x</p></div>",
		},
		{
			name: "attributes sorted and escaped",
			node: vdom.Div(vdom.ID("main"), vdom.Class("a"), vdom.Data("v", `"q"`)),
			want: `<div class="a" data-v="&quot;q&quot;" id="main"></div>`,
		},
		{
			name: "void element",
			node: vdom.Input(vdom.Type("text"), vdom.Disabled()),
			want: `<input disabled type="text">`,
		},
		{
			name: "false boolean attribute omitted",
			node: vdom.Button(vdom.AttrOf("disabled", false), "Push!"),
			want: "<button>Push!</button>",
		},
		{
			name: "className and htmlFor",
			node: vdom.Label(vdom.AttrOf("className", "c"), vdom.AttrOf("htmlFor", "f")),
			want: `<label class="c" for="f"></label>`,
		},
		{
			name: "key and internal props hidden",
			node: vdom.Li(vdom.Key(1), vdom.AttrOf("_internal", "x"), "a"),
			want: "<li>a</li>",
		},
		{
			name: "fragment has no wrapper",
			node: vdom.Fragment(vdom.P("first child"), vdom.P("second child"), vdom.P("third child")),
			want: "<p>first child</p><p>second child</p><p>third child</p>",
		},
		{
			name: "raw html",
			node: vdom.Div(vdom.Raw("JSX &middot; SSR")),
			want: "<div>JSX &middot; SSR</div>",
		},
		{
			name: "dangerouslySetInnerHTML",
			node: vdom.Div(vdom.DangerouslySetInnerHTML("JSX &middot; SSR"), vdom.P("ignored")),
			want: "<div>JSX &middot; SSR</div>",
		},
		{
			name: "component output substituted",
			node: vdom.Div(vdom.Func(func() *vdom.VNode { return vdom.Span("c") })),
			want: "<div><span>c</span></div>",
		},
		{
			name: "suspense renders children in place",
			node: vdom.Suspense(vdom.Text("loading..."), vdom.P("ready")),
			want: "<p>ready</p>",
		},
		{
			name: "custom element",
			node: vdom.El("my-custom-element", vdom.AttrOf("x-event", "click")),
			want: `<my-custom-element x-event="click"></my-custom-element>`,
		},
		{
			name: "numeric attributes",
			node: vdom.Img(vdom.Width(10), vdom.AttrOf("data-ratio", 1.5)),
			want: `<img data-ratio="1.5" width="10">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustString(t, tt.node); got != tt.want {
				t.Errorf("RenderToString() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderToStringRejectsAsync(t *testing.T) {
	_, err := RenderToString(vdom.Div(immediate(vdom.Text("x"))))
	var rf *RenderFault
	if !errors.As(err, &rf) {
		t.Fatalf("error = %v, want *RenderFault", err)
	}
	if !errors.Is(err, ErrAsyncInSync) {
		t.Errorf("error should wrap ErrAsyncInSync: %v", err)
	}
}

func TestRenderToStringComponentPanic(t *testing.T) {
	_, err := RenderToString(vdom.Div(vdom.Func(func() *vdom.VNode { panic("boom") })))
	var rf *RenderFault
	if !errors.As(err, &rf) {
		t.Fatalf("error = %v, want *RenderFault", err)
	}
	if rf.Panic != "boom" {
		t.Errorf("Panic = %v, want boom", rf.Panic)
	}
	if len(rf.Stack) == 0 {
		t.Error("Stack should be captured")
	}
}

func TestRenderToStringBuildFault(t *testing.T) {
	_, err := RenderToString(vdom.Div(vdom.P(42)))
	var tf *TreeBuildFault
	if !errors.As(err, &tf) {
		t.Fatalf("error = %v, want *TreeBuildFault", err)
	}
	var bf *vdom.BuildFault
	if !errors.As(err, &bf) || bf.Tag != "p" {
		t.Errorf("cause = %v, want BuildFault on <p>", err)
	}
}

func TestComponentOutputFault(t *testing.T) {
	_, err := RenderToString(vdom.Fragment(vdom.Func(func() *vdom.VNode { return vdom.Div(struct{}{}) })))
	var rf *RenderFault
	if !errors.As(err, &rf) {
		t.Fatalf("error = %v, want *RenderFault", err)
	}
	var bf *vdom.BuildFault
	if !errors.As(err, &bf) {
		t.Errorf("RenderFault should wrap the BuildFault: %v", err)
	}
}

func TestRenderToWriterDoctype(t *testing.T) {
	r := NewRenderer(RendererConfig{Doctype: true})
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, vdom.Html(vdom.Body("x"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "<!DOCTYPE html><html><body>x</body></html>" {
		t.Errorf("got %q", got)
	}
}

func TestCustomEscaper(t *testing.T) {
	r := NewRenderer(RendererConfig{Escape: strings.ToUpper})
	html, err := r.RenderToString(vdom.P("shout"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "<p>SHOUT</p>" {
		t.Errorf("got %q", html)
	}
}

func TestEscapeAttr(t *testing.T) {
	if got := escapeAttr("a\nb\t\"c\""); got != "a&#10;b&#9;&quot;c&quot;" {
		t.Errorf("escapeAttr() = %q", got)
	}
}

func TestPage(t *testing.T) {
	tree := Page(PageData{
		Title:       "My favorites",
		Body:        vdom.Div(vdom.Ul(vdom.Li("Eating sushi"))),
		StyleSheets: []string{"/app.css"},
		Meta:        []MetaTag{{Name: "description", Content: "d"}},
	})
	html := mustString(t, tree)

	for _, want := range []string{
		`<html lang="en">`,
		`<meta charset="utf-8">`,
		`<meta content="d" name="description">`,
		`<title>My favorites</title>`,
		`<link href="/app.css" rel="stylesheet">`,
		`<body><div><ul><li>Eating sushi</li></ul></div></body>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q:\n%s", want, html)
		}
	}
}
