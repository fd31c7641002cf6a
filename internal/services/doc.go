// Package services implements clients for external music providers.
//
// # Provider Interface
//
// The [Provider] interface covers every upstream call the playlist pipeline
// needs: OAuth code exchange, profile lookup, search, top items, audio
// features, and playlist creation.
//
// # Authorization
//
// Every call takes an [Authorization], a tagged variant resolved once per
// request: either a stored user credential (access + refresh pair, keyed by
// local user id) or the application-level client-credentials token. User
// credentials can be refreshed; app tokens cannot.
//
// # Token Refresh
//
// On a 401 response with a refreshable authorization, the client performs
// exactly one refresh_token grant, persists the rotated tokens through the
// [CredentialStore], and retries the original call once. A second 401 is
// terminal.
package services
