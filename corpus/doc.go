// Package corpus holds the immutable collection of research documents
// served by the assistant.
//
// A Store is built once at startup, either from the embedded default
// corpus or from a YAML file, and is validated on construction: document
// IDs must be unique and non-empty and every category must be one of the
// known values. After construction nothing mutates the store, so it is
// safe for concurrent use without locking.
package corpus
