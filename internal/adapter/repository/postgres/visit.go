package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type visitDB struct {
	ID        int64     `db:"id"`
	URLID     int64     `db:"url_id"`
	IP        string    `db:"ip"`
	Timestamp time.Time `db:"timestamp"`
}

func (v *visitDB) toEntity() *entity.Visit {
	return &entity.Visit{
		ID:        v.ID,
		URLID:     v.URLID,
		IP:        v.IP,
		Timestamp: v.Timestamp,
	}
}

type VisitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Save appends a visit for the URL with the given id. A urlID that matches
// no URL record yields entity.ErrURLReference.
func (r *VisitRepository) Save(ctx context.Context, urlID int64, ip string) (*entity.Visit, error) {
	const op = "adapter.repository.postgres.VisitRepository.Save"
	const query = `INSERT INTO visits(url_id, ip) VALUES ($1, $2) RETURNING id, url_id, ip, timestamp`

	var visit visitDB

	if err := r.db.GetContext(ctx, &visit, query, urlID, ip); err != nil {
		if isForeignKeyViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLReference)
		}

		return nil, storeError(op, "failed to insert into visits table", err)
	}

	return visit.toEntity(), nil
}
