package vdom

import "fmt"

// BuildFault reports malformed composition input, such as a child value of
// an unsupported type. It is detected before any output is produced.
type BuildFault struct {
	Tag    string // enclosing element tag, or the node kind for non-elements
	Index  int    // argument position that was rejected
	Reason string
}

// Error implements the error interface.
func (f *BuildFault) Error() string {
	return fmt.Sprintf("vdom: <%s> argument %d: %s", f.Tag, f.Index, f.Reason)
}

// Err returns the composition fault recorded on this node, if any.
// It does not look at descendants; use Validate for that.
func (v *VNode) Err() error {
	if v == nil || v.fault == nil {
		return nil
	}
	return v.fault
}

// Validate walks the statically known part of the tree and returns the
// first BuildFault found in pre-order. Component output is produced lazily
// during rendering and is validated there.
func Validate(root *VNode) error {
	if root == nil {
		return nil
	}
	if root.fault != nil {
		return root.fault
	}
	switch root.Kind {
	case KindElement, KindText, KindFragment, KindComponent, KindAsync, KindRaw:
	case KindSuspense:
		if err := Validate(root.Fallback); err != nil {
			return err
		}
	default:
		return &BuildFault{Tag: root.Kind.String(), Reason: fmt.Sprintf("unknown node kind %d", root.Kind)}
	}
	for _, child := range root.Children {
		if err := Validate(child); err != nil {
			return err
		}
	}
	return nil
}
