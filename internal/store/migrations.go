package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Gesture to action overrides. Gestures without a row use the
		// built-in table.
		`CREATE TABLE IF NOT EXISTS action_bindings (
			gesture TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			plugin_name TEXT NOT NULL DEFAULT '',
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Recognitions table - one row per smoothed result that was reported
		`CREATE TABLE IF NOT EXISTS recognitions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			gesture TEXT NOT NULL,
			confidence REAL NOT NULL,
			action TEXT NOT NULL DEFAULT '',
			handedness TEXT NOT NULL DEFAULT 'Unknown',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recognitions_created_at ON recognitions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recognitions_session_id ON recognitions(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
