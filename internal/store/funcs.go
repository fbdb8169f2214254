package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound   = errors.New("video not found")
	ErrConstraint = errors.New("video already exists")
)

type Video struct {
	URL           string
	Transcription sql.NullString
	CreatedAt     time.Time
}

const findVideoByURL = `SELECT url, transcription, created_at FROM videos WHERE url = ?`

// FindByURL returns ErrNotFound if the url was never cached.
func (q *Queries) FindByURL(ctx context.Context, url string) (Video, error) {
	var i Video
	var created int64
	row := q.db.QueryRowContext(ctx, q.bind(findVideoByURL), url)
	if err := row.Scan(&i.URL, &i.Transcription, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Video{}, ErrNotFound
		}

		return Video{}, fmt.Errorf("querying video %q: %w", url, err)
	}

	i.CreatedAt = time.Unix(created, 0).UTC()
	return i, nil
}

type CreateVideoParams struct {
	URL           string
	Transcription string
}

const createVideo = `INSERT INTO videos (url, transcription, created_at) VALUES (?, ?, ?) ON CONFLICT (url) DO NOTHING`

// CreateVideo inserts the row in one statement, if the url already has a row
// nothing is written and ErrConstraint is returned.
func (q *Queries) CreateVideo(ctx context.Context, arg CreateVideoParams) (Video, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := q.db.ExecContext(ctx, q.bind(createVideo), arg.URL, arg.Transcription, now.Unix())
	if err != nil {
		return Video{}, fmt.Errorf("inserting video %q: %w", arg.URL, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Video{}, fmt.Errorf("inserting video %q: rows affected: %w", arg.URL, err)
	}

	if n == 0 {
		return Video{}, fmt.Errorf("inserting video %q: %w", arg.URL, ErrConstraint)
	}

	return Video{
		URL:           arg.URL,
		Transcription: sql.NullString{String: arg.Transcription, Valid: true},
		CreatedAt:     now,
	}, nil
}
