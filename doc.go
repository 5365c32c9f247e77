// Package unigraph provides the read path primitives of the university graph
// API: entity mapping, offset and cursor pagination, and per-request batch
// loading of related records.
//
// # Overview
//
// unigraph implements two pagination strategies over any Storage:
//   - Offset pagination: GetPage returns page number N of size S ordered by
//     the primary key, together with the total number of records.
//   - Cursor pagination: GetSlice walks the primary key order forward or
//     backward starting strictly after (or before) the key encoded in an
//     opaque Cursor. One extra row is fetched to tell whether the sequence
//     continues.
//
// Relations between records are resolved through Loader, which collects the
// keys requested during one resolution tick and fetches them with a single
// grouped storage call.
//
// Key concepts
//   - Kind: storage location and row mapper of one entity kind.
//   - Storage: the five read operations the package needs from a database.
//   - Cursor: base64 encoded decimal primary key.
//   - Loader: deduplicating, batching, request scoped cache.
package unigraph
