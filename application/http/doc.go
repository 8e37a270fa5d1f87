// Package http holds the raw wire-level header types shared by the
// request decoding layer.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
package http
