package main

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/vango-dev/vstream/pkg/export"
	"github.com/vango-dev/vstream/pkg/render"
	"github.com/vango-dev/vstream/pkg/server"
	"github.com/vango-dev/vstream/pkg/vdom"
)

// demoPage is a page of the built-in demo site. params carries the query
// string when served over HTTP and is nil for render and export.
type demoPage struct {
	name  string
	build func(params url.Values) (*vdom.VNode, error)
}

type demoSite []demoPage

var themes = map[string]string{
	"light": "color: #000000; background: #eeeeee",
	"dark":  "color: #ffffff; background: #222222",
}

// newDemoSite returns the demo pages. delay is how long each async
// component sleeps before resolving.
func newDemoSite(delay time.Duration) demoSite {
	site := demoSite{
		{name: server.IndexPage, build: static(topPage([]string{"Good Morning", "Good Evening", "Good Night"}))},
		{name: "suspense", build: static(func() *vdom.VNode {
			return layout(vdom.Suspense(vdom.Div("loading..."), sleepy(delay, "Done!")))
		})},
		{name: "await", build: static(func() *vdom.VNode {
			return layout(sleepy(delay, "Done!"))
		})},
		{name: "dashboard", build: static(func() *vdom.VNode {
			return dashboardPage(delay)
		})},
		{name: "memo", build: static(memoPage)},
		{name: "list", build: static(func() *vdom.VNode {
			return vdom.Fragment(
				vdom.P("first child"),
				vdom.P("second child"),
				vdom.P("third child"),
			)
		})},
		{name: "raw", build: static(func() *vdom.VNode {
			return vdom.Div(vdom.DangerouslySetInnerHTML("JSX &middot; SSR"))
		})},
		{name: "custom", build: static(func() *vdom.VNode {
			return vdom.El("my-custom-element", vdom.AttrOf("x-event", "click"), "Custom element")
		})},
		{name: "favorites", build: static(func() *vdom.VNode {
			return menuLayout("My favorites", vdom.Ul(
				vdom.Li("Eating sushi"),
				vdom.Li("Watching baseball games"),
			))
		})},
		{name: "toolbar", build: func(params url.Values) (*vdom.VNode, error) {
			theme, ok := themes[params.Get("theme")]
			if !ok {
				theme = themes["dark"]
			}
			return vdom.Div(vdom.Div(vdom.Button(vdom.StyleAttr(theme), "Push!"))), nil
		}},
		{name: "hello", build: func(params url.Values) (*vdom.VNode, error) {
			name := params.Get("name")
			if name == "" {
				name = "Hono"
			}
			return render.Page(render.PageData{
				Title: "JSX with html sample",
				Body:  vdom.H1("Hello ", name),
			}), nil
		}},
	}
	sort.Slice(site, func(i, j int) bool { return site[i].name < site[j].name })
	return site
}

func static(build func() *vdom.VNode) func(url.Values) (*vdom.VNode, error) {
	return func(url.Values) (*vdom.VNode, error) {
		return build(), nil
	}
}

func (s demoSite) lookup(name string) (demoPage, bool) {
	for _, p := range s {
		if p.name == name {
			return p, true
		}
	}
	return demoPage{}, false
}

func (s demoSite) names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.name
	}
	return names
}

// serverPages adapts the site to server.Pages.
func (s demoSite) serverPages() server.Pages {
	pages := make(server.Pages, len(s))
	for _, p := range s {
		build := p.build
		pages[p.name] = func(r *http.Request) (*vdom.VNode, error) {
			return build(r.URL.Query())
		}
	}
	return pages
}

// exportPages adapts the site to export pages.
func (s demoSite) exportPages() []export.Page {
	pages := make([]export.Page, len(s))
	for i, p := range s {
		build := p.build
		pages[i] = export.Page{
			Name:  p.name,
			Build: func() (*vdom.VNode, error) { return build(nil) },
		}
	}
	return pages
}

func layout(children ...any) *vdom.VNode {
	return vdom.Html(vdom.Body(children...))
}

func menuLayout(title string, content *vdom.VNode) *vdom.VNode {
	return vdom.Html(
		vdom.Head(vdom.Title(title)),
		vdom.Body(
			vdom.Header("Menu"),
			vdom.Div(content),
		),
	)
}

func topPage(messages []string) func() *vdom.VNode {
	return func() *vdom.VNode {
		return layout(
			vdom.H1("Hello Hono!"),
			vdom.Ul(vdom.Range(messages, func(m string, _ int) *vdom.VNode {
				return vdom.Li(m + "!!")
			})),
		)
	}
}

func memoPage() *vdom.VNode {
	return vdom.Div(
		vdom.Memo("Header", nil, func() *vdom.VNode { return vdom.Header("Welcome to Hono") }),
		vdom.P("Hono is cool!"),
		vdom.Memo("Footer", nil, func() *vdom.VNode { return vdom.Footer("Powered by Hono") }),
	)
}

// dashboardPage streams two independent panels, the second one nested in
// the first and slower than its parent.
func dashboardPage(delay time.Duration) *vdom.VNode {
	return layout(
		vdom.H1("Dashboard"),
		vdom.Suspense(vdom.P("loading stats..."),
			vdom.Async(func(ctx context.Context) (*vdom.VNode, error) {
				if err := sleep(ctx, delay); err != nil {
					return nil, err
				}
				return vdom.Section(
					vdom.H2("Stats"),
					vdom.Suspense(vdom.P("loading activity..."), sleepy(2*delay, "No recent activity")),
				), nil
			}),
		),
		vdom.Suspense(vdom.P("loading news..."), sleepy(delay/2, "All quiet")),
	)
}

// sleepy returns an async component that resolves to <div>text</div>
// after delay.
func sleepy(delay time.Duration, text string) *vdom.VNode {
	return vdom.Async(func(ctx context.Context) (*vdom.VNode, error) {
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
		return vdom.Div(text), nil
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
