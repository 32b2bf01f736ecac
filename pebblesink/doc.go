// Package pebblesink persists flushed log records in a Pebble key-value store.
//
// Keys are laid out as
//
//	"rec/" | session (16 bytes, UUIDv7) | sequence (8 bytes, big-endian)
//
// so that iteration yields boots in start order and records of one boot in
// flush order. Values are msgpack-encoded Entry structs.
package pebblesink
