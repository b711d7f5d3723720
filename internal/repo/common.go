package repo

import "time"

// sqliteTimeLayout matches SQLite's datetime('now') format, which the
// mattn/go-sqlite3 driver returns as a plain TEXT value for columns not
// declared DATE/DATETIME.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// parseSQLiteTime parses a timestamp produced by datetime('now'),
// falling back to the zero time on malformed input rather than erroring
// — a missing or unparseable timestamp on a display field is never
// worth failing the surrounding operation over.
func parseSQLiteTime(s string) time.Time {
	if t, err := time.Parse(sqliteTimeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
