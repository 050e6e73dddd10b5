// Package quiz holds the server-side quiz logic: typed questions, answer
// matching, attempt scoring and sanitization of questions before they are
// sent to a client.
//
// Everything in this package is pure and safe for concurrent use, except a
// Sanitizer built on a caller-supplied *rand.Rand.
package quiz
