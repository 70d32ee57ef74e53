package store

// PrefsSchema is a flat key/value table. Structured values are stored as JSON.
const PrefsSchema = `
CREATE TABLE IF NOT EXISTS prefs (
	key TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const (
	keyTheme  = "ui.theme"
	keyRecent = "history.recent"
)
