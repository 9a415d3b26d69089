package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion tracks the layout of exported databases.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the steps, lessons and points tables.
func createCoreTables(db *sql.DB) error {
	stepsSQL := `
		CREATE TABLE IF NOT EXISTS steps (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT
		)
	`
	if _, err := db.Exec(stepsSQL); err != nil {
		return fmt.Errorf("create steps table: %w", err)
	}

	// step_id is NULL for ungrouped lessons
	lessonsSQL := `
		CREATE TABLE IF NOT EXISTS lessons (
			id TEXT PRIMARY KEY,
			step_id TEXT,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			point_count INTEGER NOT NULL,
			change_pct REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (step_id) REFERENCES steps(id)
		)
	`
	if _, err := db.Exec(lessonsSQL); err != nil {
		return fmt.Errorf("create lessons table: %w", err)
	}

	pointsSQL := `
		CREATE TABLE IF NOT EXISTS points (
			lesson_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			time TEXT NOT NULL,
			open REAL NOT NULL,
			high REAL NOT NULL,
			low REAL NOT NULL,
			close REAL NOT NULL,
			PRIMARY KEY (lesson_id, seq),
			FOREIGN KEY (lesson_id) REFERENCES lessons(id)
		)
	`
	if _, err := db.Exec(pointsSQL); err != nil {
		return fmt.Errorf("create points table: %w", err)
	}

	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_lessons_step ON lessons(step_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_points_time ON points(lesson_id, time)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the database into a single self-contained file.
func OptimizeDatabase(db *sql.DB) error {
	optimizations := []string{
		`PRAGMA journal_mode=DELETE`,
		`ANALYZE`,
		`PRAGMA optimize`,
	}
	for _, stmt := range optimizations {
		// Some pragmas may fail depending on state; none are required.
		_, _ = db.Exec(stmt)
	}

	// VACUUM must be last and outside a transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
