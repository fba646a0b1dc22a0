// Package server delivers render streams to clients.
//
// Pages are served two ways:
//
//   - GET /{page} responds with chunked HTML. The shell is flushed first,
//     then each patch as its Suspense boundary resolves. The client runtime
//     embedded before the first patch splices it into place.
//   - GET /ws/{page} upgrades to a WebSocket and sends every chunk as a
//     JSON Frame, for clients that apply patches themselves.
//
// Routing uses chi, so additional routes can be mounted on Server.Router:
//
//	srv := server.New(&server.Config{Address: ":3000"}, pages)
//	srv.Router().Handle("/metrics", promhttp.Handler())
//	srv.Run(ctx)
package server
