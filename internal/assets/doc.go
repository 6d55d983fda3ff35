// Package assets combines ordered stylesheet or script file lists into one
// minified artifact, keeps it in the disk cache, and serves it over HTTP with
// Last-Modified/ETag revalidation and optional gzip.
//
// A request moves through: key computed, staleness checked, regenerated or
// cache hit, validators sent, then either 304 or the body. Source files are
// only read when the artifact is missing or a source changed after the last
// generation.
package assets
