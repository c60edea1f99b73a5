// Package serve exposes the generated HTML documentation over HTTP.
//
// The handler is a github.com/go-chi/chi/v5 router that serves the build
// directory as static files. Server wraps it in an http.Server that shuts
// down gracefully when its context is cancelled.
package serve
