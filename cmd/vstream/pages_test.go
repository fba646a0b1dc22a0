package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vstream/pkg/export"
	"github.com/vango-dev/vstream/pkg/render"
)

func TestDemoPages(t *testing.T) {
	site := newDemoSite(time.Millisecond)
	renderer := render.NewRenderer(render.RendererConfig{Memo: render.NewMemoCache()})

	tests := []struct {
		page string
		want string
	}{
		{"index", "<html><body><h1>Hello Hono!</h1><ul><li>Good Morning!!</li><li>Good Evening!!</li><li>Good Night!!</li></ul></body></html>"},
		{"suspense", "<html><body><div>Done!</div></body></html>"},
		{"await", "<html><body><div>Done!</div></body></html>"},
		{"dashboard", "<html><body><h1>Dashboard</h1><section><h2>Stats</h2><div>No recent activity</div></section><div>All quiet</div></body></html>"},
		{"memo", "<div><header>Welcome to Hono</header><p>Hono is cool!</p><footer>Powered by Hono</footer></div>"},
		{"list", "<p>first child</p><p>second child</p><p>third child</p>"},
		{"raw", "<div>JSX &middot; SSR</div>"},
		{"custom", `<my-custom-element x-event="click">Custom element</my-custom-element>`},
		{"favorites", "<html><head><title>My favorites</title></head><body><header>Menu</header><div><ul><li>Eating sushi</li><li>Watching baseball games</li></ul></div></body></html>"},
		{"toolbar", `<div><div><button style="color: #ffffff; background: #222222">Push!</button></div></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			page, ok := site.lookup(tt.page)
			if !ok {
				t.Fatalf("page %q missing", tt.page)
			}
			tree, err := page.build(nil)
			if err != nil {
				t.Fatal(err)
			}
			doc, _, err := export.Resolve(context.Background(), renderer, tree)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if doc != tt.want {
				t.Errorf("got  %s\nwant %s", doc, tt.want)
			}
		})
	}
}

func TestDashboardStreamsIndependently(t *testing.T) {
	page, _ := newDemoSite(20 * time.Millisecond).lookup("dashboard")
	tree, _ := page.build(nil)

	_, chunks, err := export.Resolve(context.Background(), render.NewRenderer(render.RendererConfig{}), tree)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected shell and three patches, got %d chunks", len(chunks))
	}
	for _, fallback := range []string{"loading stats...", "loading news..."} {
		if !strings.Contains(chunks[0].Markup, fallback) {
			t.Errorf("shell missing %q: %s", fallback, chunks[0].Markup)
		}
	}
	if !strings.Contains(chunks[1].Markup, "All quiet") {
		t.Errorf("the fastest boundary should flush first, got %s", chunks[1].Markup)
	}
}

func TestServerPagesReadQuery(t *testing.T) {
	pages := newDemoSite(0).serverPages()

	tree, err := pages["hello"](httptest.NewRequest("GET", "/hello?name=Gopher", nil))
	if err != nil {
		t.Fatal(err)
	}
	html, err := render.RenderToString(tree)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>JSX with html sample</title>", "<h1>Hello Gopher</h1>"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}

	tree, _ = pages["toolbar"](httptest.NewRequest("GET", "/toolbar?theme=light", nil))
	html, _ = render.RenderToString(tree)
	if !strings.Contains(html, "#eeeeee") {
		t.Errorf("light theme not applied: %s", html)
	}
}

func TestExportPagesCoverSite(t *testing.T) {
	site := newDemoSite(0)
	pages := site.exportPages()
	if len(pages) != len(site) {
		t.Fatalf("got %d export pages, want %d", len(pages), len(site))
	}
	for i, p := range pages {
		if p.Name != site[i].name {
			t.Errorf("page %d = %q, want %q", i, p.Name, site[i].name)
		}
		if _, err := p.Build(); err != nil {
			t.Errorf("%s: %v", p.Name, err)
		}
	}
}
