// Package render provides streaming server-side rendering of vdom trees.
//
// A render produces an ordered, pull-based sequence of chunks. The first
// chunk is the shell: all markup that is ready when the walk finishes, with
// the fallback of every unresolved Suspense boundary wrapped in placeholder
// markers. Each later chunk is a patch carrying the real content of one
// boundary, emitted in the order the boundaries resolve. The client
// runtime splices patches by slot id, so the final document always follows
// tree order regardless of resolution order.
//
// # Basic Usage
//
//	r := render.NewRenderer(render.RendererConfig{Doctype: true})
//	stream, err := r.Render(ctx, tree)
//	if err != nil {
//	    return err // *TreeBuildFault
//	}
//	defer stream.Close()
//	for {
//	    chunk, err := stream.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err // *RenderFault or *StreamFault
//	    }
//	    send(chunk)
//	}
//
// # Concurrency
//
// Async components start as soon as the walk reaches them and run on
// their own goroutines. Their results are resumed one at a time on the
// goroutine calling Next, so a Session is never accessed concurrently.
//
// # Wire Format
//
// A pending boundary with slot N appears in the shell as
//
//	<template id="vs:N"></template>fallback<!--/vs:N-->
//
// and its patch is encoded by Encoder as
//
//	<template data-vs="N">content</template><script>__vs(N)</script>
//
// with ClientRuntime preceding the first patch. Reconstruct replays the
// splicing on the server, which is useful for tests and static export.
//
// # Security
//
// All text content is escaped by default. Raw HTML can be inserted using
// KindRaw nodes or DangerouslySetInnerHTML, but should only be used with
// trusted content.
package render
