// Package reqctx carries per-request values on context.Context: request
// metadata set by HTTP middleware and the authenticated principal resolved
// from the bearer token. Values are always passed explicitly through
// context; no package-level or thread-local state exists.
package reqctx
