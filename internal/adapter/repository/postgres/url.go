package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type urlDB struct {
	ID          int64        `db:"id"`
	OriginalURL string       `db:"original_url"`
	ShortCode   string       `db:"short_code"`
	CreatedAt   time.Time    `db:"created_at"`
	ExpireAt    sql.NullTime `db:"expire_at"`
}

func (u *urlDB) toEntity() *entity.URL {
	url := &entity.URL{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		CreatedAt:   u.CreatedAt,
	}

	if u.ExpireAt.Valid {
		expireAt := u.ExpireAt.Time
		url.ExpireAt = &expireAt
	}

	return url
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Save inserts a new URL record. The record is committed when Save returns.
func (r *URLRepository) Save(ctx context.Context, shortCode, originalURL string, expireAt *time.Time) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const query = `INSERT INTO urls(short_code, original_url, expire_at) VALUES ($1, $2, $3)
		RETURNING id, original_url, short_code, created_at, expire_at`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode, originalURL, expireAt); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, storeError(op, "failed to insert into urls table", err)
	}

	return url.toEntity(), nil
}

func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByShortCode"
	const query = `SELECT id, original_url, short_code, created_at, expire_at FROM urls WHERE short_code = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, storeError(op, "failed to get row from urls table", err)
	}

	return url.toEntity(), nil
}
