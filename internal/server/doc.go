// Package server provides the HTTP pieces of the OAuth2 consent flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] implements it on [http.ServeMux]; the first [Middleware] added is the outermost wrapper.
// [LoggingMiddleware] records each request at debug level without the query string.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code callback. It validates the state parameter,
// exchanges the code (with any PKCE verifier option), and sends exactly one [OAuthResult] through its channel.
// A second callback is rejected.
//
// # Loopback Listener
//
// [Listen] binds the callback address up front and returns a [Server]; the auth package starts it,
// opens the consent URL, waits for the result, and always shuts it down.
package server
