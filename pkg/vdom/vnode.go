package vdom

import "context"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Synchronous component
	KindAsync                  // Asynchronous component
	KindSuspense               // Suspense boundary with fallback
	KindRaw                    // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindAsync:
		return "Async"
	case KindSuspense:
		return "Suspense"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is an immutable description of one tree node.
// Nodes are built once per render pass and never mutated by the renderer.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes
	Children []*VNode  // Child nodes
	Key      string    // Reconciliation key
	Text     string    // For KindText and KindRaw
	Comp     Component // For KindComponent
	Async    AsyncFunc // For KindAsync
	Memo     *MemoSpec // For memoizable KindComponent nodes

	// Fallback is rendered in place of a KindSuspense node's children
	// until every task registered directly beneath it has completed.
	Fallback *VNode

	// OnError, when set on a KindSuspense node, recovers failures of the
	// boundary's direct tasks by rendering its result instead of aborting.
	OnError func(err error) *VNode

	// fault records malformed composition input found by the builders.
	fault *BuildFault
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Component is anything that can render to a VNode synchronously.
type Component interface {
	Render() *VNode
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}

// AsyncFunc computes a subtree off the render goroutine.
// Implementations should return promptly once ctx is done.
type AsyncFunc func(ctx context.Context) (*VNode, error)

// MemoSpec identifies a memoizable component invocation.
// Name is the component identity and Props its input; together they key
// the renderer's memo cache.
type MemoSpec struct {
	Name  string
	Props any
}
