package store

// schema is the idempotent DDL applied on every open.
var schema = []string{
	// Key-value settings, including the stored calibration offset.
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	// One plugin action per posture metric, run when the metric goes into
	// alert.
	`CREATE TABLE IF NOT EXISTS alert_actions (
		id TEXT PRIMARY KEY,
		metric TEXT NOT NULL UNIQUE CHECK(metric IN ('neckFlexion', 'cva', 'fsa')),
		plugin_name TEXT NOT NULL,
		action_name TEXT NOT NULL,
		config TEXT NOT NULL DEFAULT '{}',
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_alert_actions_metric ON alert_actions(metric)`,
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
