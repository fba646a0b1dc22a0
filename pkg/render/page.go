package render

import "github.com/vango-dev/vstream/pkg/vdom"

// PageData describes a complete HTML document around a body tree.
type PageData struct {
	// Body is the root VNode for the page content
	Body *vdom.VNode

	// Title is the page title
	Title string

	// Lang is the language attribute for the html element
	// Defaults to "en" if not specified
	Lang string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// Styles contains inline CSS styles
	Styles []string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name     string // name attribute
	Content  string // content attribute
	Property string // property attribute (for OpenGraph)
	Charset  string // charset attribute
}

// Page wraps page.Body in an html/head/body layout. The result is an
// ordinary tree, so Suspense boundaries in the body stream as usual.
func Page(page PageData) *vdom.VNode {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	head := vdom.Head(vdom.Meta(vdom.Charset("utf-8")))
	for _, m := range page.Meta {
		head.Children = append(head.Children, vdom.Meta(
			vdom.AttrOf("name", m.Name),
			vdom.AttrOf("property", m.Property),
			vdom.AttrOf("charset", m.Charset),
			vdom.Content(m.Content),
		))
	}
	if page.Title != "" {
		head.Children = append(head.Children, vdom.Title(page.Title))
	}
	for _, href := range page.StyleSheets {
		head.Children = append(head.Children, vdom.Link(vdom.Rel("stylesheet"), vdom.Href(href)))
	}
	for _, css := range page.Styles {
		head.Children = append(head.Children, vdom.Style(vdom.Raw(css)))
	}

	return vdom.Html(vdom.Lang(lang), head, vdom.Body(page.Body))
}
