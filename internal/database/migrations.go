package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is a single schema change applied in order
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_sessions",
		SQL: `CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			capacity INTEGER NOT NULL,
			point_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			stopped_at DATETIME
		);`,
	},
	{
		Version: 2,
		Name:    "create_gaze_points",
		SQL: `CREATE TABLE IF NOT EXISTS gaze_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			confidence REAL NOT NULL,
			timestamp REAL NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_gaze_points_session ON gaze_points(session_id, timestamp);`,
	},
	{
		Version: 3,
		Name:    "create_fixations",
		SQL: `CREATE TABLE IF NOT EXISTS fixations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			analysis_id INTEGER,
			x REAL NOT NULL,
			y REAL NOT NULL,
			duration_ms REAL NOT NULL,
			intensity REAL NOT NULL,
			visit_count INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_fixations_session ON fixations(session_id);`,
	},
	{
		Version: 4,
		Name:    "create_attention_analyses",
		SQL: `CREATE TABLE IF NOT EXISTS attention_analyses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			total_duration_ms REAL NOT NULL,
			average_fixation_duration_ms REAL NOT NULL,
			saccade_count INTEGER NOT NULL,
			fixation_count INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_attention_analyses_session ON attention_analyses(session_id);`,
	},
	{
		Version: 5,
		Name:    "create_analysis_tasks",
		SQL: `CREATE TABLE IF NOT EXISTS analysis_tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			skill_name TEXT NOT NULL,
			task_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			progress_percent INTEGER NOT NULL DEFAULT 0,
			session_id TEXT NOT NULL,
			params_json TEXT,
			total_points INTEGER NOT NULL DEFAULT 0,
			processed_points INTEGER NOT NULL DEFAULT 0,
			failed_points INTEGER NOT NULL DEFAULT 0,
			result_summary TEXT,
			error_message TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_analysis_tasks_session ON analysis_tasks(session_id, status);`,
	},
}

// Migrate applies all pending migrations in version order
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		log.Printf("[Migration] applied %d_%s", m.Version, m.Name)
	}

	return nil
}
