package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"streamscout/models"
)

// WatchlistRepository persists per-user saved titles.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a repository on the given connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

const watchlistColumns = "id, user_id, title_id, title, media_type, poster_url, added_at"

func scanWatchlistItem(scanner interface{ Scan(...any) error }) (models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := scanner.Scan(&item.ID, &item.UserID, &item.TitleID, &item.Title, &item.MediaType, &item.PosterURL, &item.AddedAt)
	return item, err
}

// List returns the user's watchlist, most recently added first.
func (r *WatchlistRepository) List(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+watchlistColumns+`
		  FROM watchlist
		 WHERE user_id = ?
		 ORDER BY added_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	items := []models.WatchlistItem{}
	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Upsert inserts the entry or, when the (user, title) pair already exists,
// refreshes its metadata and timestamp.
func (r *WatchlistRepository) Upsert(ctx context.Context, userID int64, input models.WatchlistUpsert) (models.WatchlistItem, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO watchlist (user_id, title_id, title, media_type, poster_url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, title_id) DO UPDATE SET
			title = excluded.title,
			media_type = excluded.media_type,
			poster_url = excluded.poster_url,
			added_at = CURRENT_TIMESTAMP
		RETURNING `+watchlistColumns,
		userID, input.TitleID, input.Title, input.MediaType, input.PosterURL)

	item, err := scanWatchlistItem(row)
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("upsert watchlist item: %w", err)
	}
	return item, nil
}

// Contains reports whether the user has saved the given title.
func (r *WatchlistRepository) Contains(ctx context.Context, userID int64, titleID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM watchlist WHERE user_id = ? AND title_id = ? LIMIT 1`,
		userID, titleID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check watchlist: %w", err)
	}
	return true, nil
}

// Remove deletes the entry and reports whether anything was removed.
func (r *WatchlistRepository) Remove(ctx context.Context, userID int64, titleID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM watchlist WHERE user_id = ? AND title_id = ?`, userID, titleID)
	if err != nil {
		return false, fmt.Errorf("remove watchlist item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
