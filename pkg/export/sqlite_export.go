// Package export writes curriculum content out of the browser: chart
// snapshots (PNG/SVG), a SQLite database and a JSON document that the
// loader can read back.
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/series"
	"github.com/vanderheijden86/candlecourse/pkg/version"

	_ "modernc.org/sqlite"
)

// DatabaseName is the file written by SQLiteExporter.Export.
const DatabaseName = "candlecourse.sqlite3"

// SQLiteExporter exports a curriculum to a SQLite database.
type SQLiteExporter struct {
	Repo   *curriculum.Repository
	Title  string
	Source string
	Logger *zap.Logger

	now func() time.Time
}

// NewSQLiteExporter creates an exporter for repo.
func NewSQLiteExporter(repo *curriculum.Repository) *SQLiteExporter {
	return &SQLiteExporter{Repo: repo, now: time.Now}
}

// Export writes the database into outputDir, replacing any previous export,
// and returns its path.
func (e *SQLiteExporter) Export(outputDir string) (string, error) {
	log := debug.Or(e.Logger).Named("export")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	dbPath := filepath.Join(outputDir, DatabaseName)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return "", fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertContent(db); err != nil {
		return "", fmt.Errorf("insert content: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return "", fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return "", fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return "", fmt.Errorf("close database: %w", err)
	}
	dbClosed = true

	log.Info("sqlite export written",
		zap.String("path", dbPath),
		zap.Int("steps", e.Repo.StepCount()),
		zap.Int("lessons", e.Repo.LessonCount()))
	return dbPath, nil
}

// insertContent writes steps, lessons and points in one transaction.
func (e *SQLiteExporter) insertContent(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stepStmt, err := tx.Prepare(`INSERT INTO steps (id, position, title, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stepStmt.Close()

	lessonStmt, err := tx.Prepare(`
		INSERT INTO lessons (id, step_id, position, title, description, point_count, change_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer lessonStmt.Close()

	pointStmt, err := tx.Prepare(`
		INSERT INTO points (lesson_id, seq, time, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer pointStmt.Close()

	insertLesson := func(l model.Lesson, pos int) error {
		var stepID any
		if l.StepID != "" {
			stepID = l.StepID
		}
		sum := series.Summarize(l.Data)
		if _, err := lessonStmt.Exec(l.ID, stepID, pos, l.Title, l.Description, len(l.Data), sum.ChangePct); err != nil {
			return fmt.Errorf("lesson %s: %w", l.ID, err)
		}
		for seq, p := range l.Data {
			if _, err := pointStmt.Exec(l.ID, seq, p.Time.String(), p.Open, p.High, p.Low, p.Close); err != nil {
				return fmt.Errorf("lesson %s point %d: %w", l.ID, seq, err)
			}
		}
		return nil
	}

	for i, s := range e.Repo.AllSteps() {
		if _, err := stepStmt.Exec(s.ID, i, s.Title, s.Description); err != nil {
			return fmt.Errorf("step %s: %w", s.ID, err)
		}
		for j, l := range s.Lessons {
			if err := insertLesson(l, j); err != nil {
				return err
			}
		}
	}
	for i, l := range e.Repo.LooseLessons() {
		if err := insertLesson(l, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	meta := map[string]string{
		"version":        version.Version,
		"generated_at":   now().UTC().Format(time.RFC3339),
		"step_count":     strconv.Itoa(e.Repo.StepCount()),
		"lesson_count":   strconv.Itoa(e.Repo.LessonCount()),
		"schema_version": strconv.Itoa(SchemaVersion),
	}
	if e.Title != "" {
		meta["title"] = e.Title
	}
	if e.Source != "" {
		meta["source"] = e.Source
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
