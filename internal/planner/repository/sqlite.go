package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"floorplanner/internal/planner/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("layout not found")

//go:embed migrations/001_init_layouts.sql
var initMigration string

const timeLayout = "2006-01-02T15:04:05.000000Z"

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Init применяет миграции.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, initMigration); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save создает макет или полностью заменяет его комнаты.
func (r *Repository) Save(ctx context.Context, l models.Layout) (models.Layout, error) {
	now := r.now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Layout{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var created string
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM layouts WHERE id = ?`, l.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		l.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
            INSERT INTO layouts (id, name, canvas_width, canvas_height, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?)
        `, l.ID, l.Name, l.CanvasWidth, l.CanvasHeight, now.Format(timeLayout), now.Format(timeLayout))
		if err != nil {
			return models.Layout{}, fmt.Errorf("insert layout: %w", err)
		}
	case err != nil:
		return models.Layout{}, fmt.Errorf("lookup layout: %w", err)
	default:
		l.CreatedAt, _ = time.Parse(timeLayout, created)
		_, err = tx.ExecContext(ctx, `
            UPDATE layouts SET name = ?, canvas_width = ?, canvas_height = ?, updated_at = ?
            WHERE id = ?
        `, l.Name, l.CanvasWidth, l.CanvasHeight, now.Format(timeLayout), l.ID)
		if err != nil {
			return models.Layout{}, fmt.Errorf("update layout: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM layout_rooms WHERE layout_id = ?`, l.ID); err != nil {
			return models.Layout{}, fmt.Errorf("clear rooms: %w", err)
		}
	}

	for i, it := range l.Rooms {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO layout_rooms (layout_id, position, room_id, type, x, y, width, height, attached_json)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, l.ID, i, it.ID, it.Type, it.X, it.Y, it.Width, it.Height, it.AttachedJSON)
		if err != nil {
			return models.Layout{}, fmt.Errorf("insert room %s: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Layout{}, fmt.Errorf("commit: %w", err)
	}
	l.UpdatedAt = now
	if l.Rooms == nil {
		l.Rooms = []models.LayoutItem{}
	}
	return l, nil
}

func (r *Repository) Get(ctx context.Context, id string) (models.Layout, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, canvas_width, canvas_height, created_at, updated_at
        FROM layouts
        WHERE id = ?
    `, id)
	return r.load(ctx, row)
}

// Latest возвращает последний сохраненный макет.
func (r *Repository) Latest(ctx context.Context) (models.Layout, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, canvas_width, canvas_height, created_at, updated_at
        FROM layouts
        ORDER BY updated_at DESC
        LIMIT 1
    `)
	return r.load(ctx, row)
}

func (r *Repository) List(ctx context.Context) ([]models.LayoutSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT l.id, l.name, l.updated_at, COUNT(lr.room_id)
        FROM layouts l
        LEFT JOIN layout_rooms lr ON lr.layout_id = l.id
        GROUP BY l.id
        ORDER BY l.updated_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.LayoutSummary{}
	for rows.Next() {
		var s models.LayoutSummary
		var updated string
		if err := rows.Scan(&s.ID, &s.Name, &updated, &s.RoomCount); err != nil {
			return nil, err
		}
		s.UpdatedAt, _ = time.Parse(timeLayout, updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM layout_rooms WHERE layout_id = ?`, id); err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// MetadataReferenced сообщает, ссылается ли хоть один сохранённый макет на файл.
func (r *Repository) MetadataReferenced(ctx context.Context, ref string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM layout_rooms WHERE attached_json = ?`, ref).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count metadata refs: %w", err)
	}
	return n > 0, nil
}

// ============================================================
// Helpers
// ============================================================

func (r *Repository) load(ctx context.Context, row *sql.Row) (models.Layout, error) {
	var l models.Layout
	var created, updated string
	if err := row.Scan(&l.ID, &l.Name, &l.CanvasWidth, &l.CanvasHeight, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Layout{}, ErrNotFound
		}
		return models.Layout{}, err
	}
	l.CreatedAt, _ = time.Parse(timeLayout, created)
	l.UpdatedAt, _ = time.Parse(timeLayout, updated)

	rows, err := r.db.QueryContext(ctx, `
        SELECT room_id, type, x, y, width, height, attached_json
        FROM layout_rooms
        WHERE layout_id = ?
        ORDER BY position
    `, l.ID)
	if err != nil {
		return models.Layout{}, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	l.Rooms = []models.LayoutItem{}
	for rows.Next() {
		var it models.LayoutItem
		if err := rows.Scan(&it.ID, &it.Type, &it.X, &it.Y, &it.Width, &it.Height, &it.AttachedJSON); err != nil {
			return models.Layout{}, err
		}
		l.Rooms = append(l.Rooms, it)
	}
	return l, rows.Err()
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
