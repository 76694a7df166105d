// Package cache implements the local result cache for remote warehouse
// queries.
//
// Query text is fingerprinted with SHA-256 and each result is persisted as
// one Arrow IPC stream file per fingerprint inside a configured directory.
// The schema metadata of every file carries the original query text, the
// creation timestamp, and the row count, so maintenance operations can list
// and describe entries without materializing row data. Writes go through a
// temp-file-plus-rename replace so a reader never observes a partial entry.
//
// The Manager layers a read-through policy on top of the store: fresh
// entries (age within the configured maximum) are served from disk, anything
// else re-executes against the warehouse and overwrites the entry.
package cache
