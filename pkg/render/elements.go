package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// booleanAttrs are attributes that don't need a value.
// When true, they're rendered as just the attribute name.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"ismap":           true,
	"itemscope":       true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// isBooleanAttr returns true if the attribute is a boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

// writeOpenTag writes "<tag attrs>". Attributes are emitted in sorted key
// order so identical trees serialize to identical bytes.
func writeOpenTag(w io.Writer, node *vdom.VNode) error {
	if _, err := io.WriteString(w, "<"+node.Tag); err != nil {
		return err
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		// Skip internal props
		if strings.HasPrefix(key, "_") {
			continue
		}

		name := key
		switch key {
		case "className":
			name = "class"
		case "htmlFor":
			name = "for"
		case "dangerouslySetInnerHTML", "key":
			continue
		}

		if isBooleanAttr(name) {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := io.WriteString(w, " "+name); err != nil {
						return err
					}
				}
				continue
			}
		}

		s := attrToString(value)
		if s == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, name, escapeAttr(s)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, ">")
	return err
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
