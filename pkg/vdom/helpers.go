package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{
		Kind: KindRaw,
		Text: html,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0, len(children)),
	}
	appendArgs(node, "fragment", children)
	return node
}

// Group is an alias for Fragment.
func Group(children ...any) *VNode {
	return Fragment(children...)
}

// Suspense declares a boundary. The fallback is shown until every async
// component registered directly beneath the boundary has resolved; the
// resolved children are then streamed as a patch.
func Suspense(fallback *VNode, children ...any) *VNode {
	node := &VNode{
		Kind:     KindSuspense,
		Fallback: fallback,
		Children: make([]*VNode, 0, len(children)),
	}
	appendArgs(node, "suspense", children)
	return node
}

// SuspenseWithError is Suspense with local error recovery: a failure of
// one of the boundary's direct async components resolves the boundary to
// onError(err) instead of aborting the whole stream.
func SuspenseWithError(fallback *VNode, onError func(err error) *VNode, children ...any) *VNode {
	node := Suspense(fallback, children...)
	node.OnError = onError
	return node
}

// Async creates an asynchronous component. fn starts as soon as the
// renderer reaches the node and runs concurrently with the rest of the walk.
func Async(fn AsyncFunc) *VNode {
	return &VNode{
		Kind:  KindAsync,
		Async: fn,
	}
}

// Memo creates a memoizable synchronous component identified by name and
// props. Renderers configured with a memo cache reuse the markup of an
// earlier invocation with equal name and props.
func Memo(name string, props any, render func() *VNode) *VNode {
	return &VNode{
		Kind: KindComponent,
		Comp: Func(render),
		Memo: &MemoSpec{Name: name, Props: props},
	}
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Key creates a key attribute for reconciliation.
// The key is converted to a string using fmt.Sprintf.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}
