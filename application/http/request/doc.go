// Package request turns raw inbound HTTP requests into structured,
// queryable request records: ordered GET/POST parameter lists,
// cookies, a resolved text encoding and an on-demand raw body.
//
// A record has exactly one owner for its whole lifetime, the worker
// handling the request, so none of its lazy caches are guarded.
// Malformed client input never escapes this package as an error: it
// degrades to a 400 status signal recorded on the record for the
// response collaborator.
package request
