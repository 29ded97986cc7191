// Package auth gates a request pipeline on authentication status.
//
// Authentication state lives in a request-scoped principal slot carried on
// the context: an upstream credential-resolution step (the Bearer middleware,
// or any custom extractor) resolves a presented token to its owning user and
// populates the slot; the redirect gate downstream reads the slot and either
// forwards the request or short-circuits with a redirect to a login path.
//
// The slot is keyed by principal type, so gates for different principal
// kinds compose independently in one pipeline. Nothing in this package is
// shared across requests.
package auth
