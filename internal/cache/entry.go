package cache

import (
	"time"

	"github.com/sqlstash/sqlstash/internal/table"
)

// Entry is the metadata of one cache entry. It is read from the schema
// message of the entry file without materializing row data.
type Entry struct {
	// Fingerprint is the SHA-256 cache key, also the file basename.
	Fingerprint string

	// Query is the original query text the entry was produced from.
	Query string

	// CreatedAt is when the entry was created or last refreshed.
	CreatedAt time.Time

	// Rows is the number of rows in the persisted payload.
	Rows int64

	// Columns is the column schema of the persisted payload.
	Columns []table.Column

	// SizeBytes is the size of the entry file on disk.
	SizeBytes int64

	// Corrupt marks an entry whose file exists but cannot be parsed.
	// Such entries still show up in listings so they can be cleared.
	Corrupt bool
}

// Age returns the elapsed time since the entry was created or refreshed.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// QueryPreview returns the query text truncated to max runes for listings.
func (e *Entry) QueryPreview(max int) string {
	q := []rune(e.Query)
	if len(q) <= max {
		return e.Query
	}
	return string(q[:max]) + "…"
}
