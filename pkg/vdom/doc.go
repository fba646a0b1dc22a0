// Package vdom provides the component tree description consumed by the
// streaming renderer.
//
// # Core Types
//
// VNode is the fundamental building block. Its Kind is a closed set:
// elements, text, fragments, synchronous components, asynchronous
// components, Suspense boundaries and raw HTML. Props holds attributes;
// Attr is used to build them.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// # Async Components and Suspense
//
// An async component computes its subtree off the render goroutine.
// Wrapping it in a Suspense boundary lets the renderer send the fallback
// first and stream the real content later:
//
//	Suspense(Div(Text("loading...")),
//	    Async(func(ctx context.Context) (*VNode, error) {
//	        post, err := load(ctx)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return Div(Text(post.Title)), nil
//	    }),
//	)
//
// # Validation
//
// Builders never fail. Unsupported arguments are recorded on the node and
// reported by Validate as a *BuildFault before the renderer writes anything.
package vdom
