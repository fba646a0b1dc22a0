package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// A generic attribute, for anything without a dedicated helper
// (e.g. custom element attributes like "x-event").
func AttrOf(key string, value any) Attr { return attr(key, value) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute (named to avoid conflict with Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// ClassIf adds a class only when condition is true.
func ClassIf(condition bool, class string) Attr {
	if !condition {
		return Attr{}
	}
	return Class(class)
}

// Global attributes

func Hidden() Attr                { return attr("hidden", true) }
func TitleAttr(title string) Attr { return attr("title", title) }
func Lang(lang string) Attr       { return attr("lang", lang) }
func Role(role string) Attr       { return attr("role", role) }
func AriaLabel(label string) Attr { return attr("aria-label", label) }
func AriaBusy(busy bool) Attr     { return attr("aria-busy", busy) }

// Links and resources

func Href(url string) Attr       { return attr("href", url) }
func Target(target string) Attr  { return attr("target", target) }
func Rel(rel string) Attr        { return attr("rel", rel) }
func Src(url string) Attr        { return attr("src", url) }
func Alt(text string) Attr       { return attr("alt", text) }
func Charset(cs string) Attr     { return attr("charset", cs) }
func Content(c string) Attr      { return attr("content", c) }
func Defer() Attr                { return attr("defer", true) }
func Width(w int) Attr           { return attr("width", w) }
func Height(h int) Attr          { return attr("height", h) }
func Loading(mode string) Attr   { return attr("loading", mode) }

// Forms

func Name(name string) Attr       { return attr("name", name) }
func Value(value string) Attr     { return attr("value", value) }
func Type(t string) Attr          { return attr("type", t) }
func Placeholder(t string) Attr   { return attr("placeholder", t) }
func Disabled() Attr              { return attr("disabled", true) }
func Checked() Attr               { return attr("checked", true) }
func Required() Attr              { return attr("required", true) }
func Readonly() Attr              { return attr("readonly", true) }
func For(id string) Attr          { return attr("for", id) }
func Method(method string) Attr   { return attr("method", method) }
func ActionAttr(url string) Attr  { return attr("action", url) }

// DangerouslySetInnerHTML sets the element's inner markup verbatim,
// bypassing child rendering and escaping.
func DangerouslySetInnerHTML(html string) Attr {
	return attr("dangerouslySetInnerHTML", html)
}
