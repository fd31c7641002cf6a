// Package server provides HTTP routing, middleware, sessions, and the JSON API surface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally; route patterns
// use the Go 1.22 "METHOD /path/{param}" form.
//
// # Sessions
//
// [SessionManager] issues and verifies signed session cookies (HMAC JWTs holding
// the user ID). The [SessionManager.WithUser] middleware resolves the cookie to a
// stored user and attaches it to the request context; handlers that require
// authentication call [RequireUser].
//
// # Handlers
//
// [AuthHandler] implements the Spotify OAuth2 authorization code flow: login
// redirect with a CSRF state cookie, the callback exchange, profile lookup, and
// logout. [PlaylistHandler] exposes playlist generation, draft editing,
// publishing, and history. [HealthHandler] reports process and database health.
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
