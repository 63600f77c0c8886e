package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/imagecat/catalog/domain"
	"github.com/dfryer1193/imagecat/shared/db"
)

var _ domain.ImageRepository = (*SQLiteImageRepository)(nil)

// SQLiteImageRepository implements domain.ImageRepository using SQL database (SQLite).
// Every call takes its own connection from the pool and hands it back before returning.
type SQLiteImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new SQLiteImageRepository from a standard sql.DB
func NewImageRepository(sqlDB *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{
		db: sqlDB,
	}
}

const insertImageQuery = `
	INSERT INTO images (name, size, width, height, type, date_added, file_path)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// Insert stores a new image record and sets img.ID to the assigned id
func (r *SQLiteImageRepository) Insert(ctx context.Context, img *domain.ImageRecord) (int64, error) {
	if img == nil {
		return 0, fmt.Errorf("%w: image record cannot be nil", domain.ErrValidation)
	}

	var id int64
	err := db.WithConn(ctx, r.db, func(ctx context.Context, exec db.Executor) error {
		result, err := exec.ExecContext(ctx, insertImageQuery,
			img.Name,
			img.Size,
			img.Width,
			img.Height,
			img.Type,
			img.DateAdded,
			img.FilePath,
		)
		if err != nil {
			return fmt.Errorf("failed to insert image record: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	img.ID = id
	return id, nil
}

const updateDimensionsQuery = `
	UPDATE images SET width = ?, height = ? WHERE file_path = ?
`

// UpdateDimensions overwrites width and height on every row stored at filePath
// and reports how many rows matched
func (r *SQLiteImageRepository) UpdateDimensions(ctx context.Context, filePath string, width, height int) (int64, error) {
	var affected int64
	err := db.WithConn(ctx, r.db, func(ctx context.Context, exec db.Executor) error {
		result, err := exec.ExecContext(ctx, updateDimensionsQuery, width, height, filePath)
		if err != nil {
			return fmt.Errorf("failed to update image dimensions: %w", err)
		}

		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	return affected, nil
}

const listImagesQuery = `
	SELECT id, name, size, width, height, type, date_added, file_path
	FROM images
	ORDER BY id ASC
`

// ListAll returns every image record ordered by id
func (r *SQLiteImageRepository) ListAll(ctx context.Context) ([]*domain.ImageRecord, error) {
	images := make([]*domain.ImageRecord, 0)

	err := db.WithConn(ctx, r.db, func(ctx context.Context, exec db.Executor) error {
		rows, err := exec.QueryContext(ctx, listImagesQuery)
		if err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var row imageRow
			err := rows.Scan(
				&row.ID,
				&row.Name,
				&row.Size,
				&row.Width,
				&row.Height,
				&row.Type,
				&row.DateAdded,
				&row.FilePath,
			)
			if err != nil {
				return fmt.Errorf("failed to scan image row: %w", err)
			}
			images = append(images, row.toDomain())
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating image rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	return images, nil
}

// imageRow is a private struct used to scan database rows
type imageRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Size      int64  `db:"size"`
	Width     int    `db:"width"`
	Height    int    `db:"height"`
	Type      string `db:"type"`
	DateAdded string `db:"date_added"`
	FilePath  string `db:"file_path"`
}

// toDomain converts an imageRow to a domain.ImageRecord
func (ir *imageRow) toDomain() *domain.ImageRecord {
	return &domain.ImageRecord{
		ID:        ir.ID,
		Name:      ir.Name,
		Size:      ir.Size,
		Width:     ir.Width,
		Height:    ir.Height,
		Type:      ir.Type,
		DateAdded: ir.DateAdded,
		FilePath:  ir.FilePath,
	}
}
