// Package cache defines the disk-backed blob store that holds combined assets
// under StoragePath/<kind>/<digest>.<kind>. The store exposes stat/read/write
// primitives with safe semantics (temp file + rename) and surfaces file info
// (size, modtime) so the asset server can use the modtime as the generation
// time of an entry. The package also owns cache-key derivation and a small
// in-memory memo for compressed response bodies.
package cache
