package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/models"
)

// Repository defines persistence operations for users
type Repository interface {
	UpsertByEmail(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

// BunRepository implements Repository on a relational store through bun.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// UpsertByEmail inserts the user or, when a record with the same email already
// exists, refreshes its username. The statement is atomic: two concurrent
// first-time syncs for one identity resolve to a single row via the unique
// email constraint. ID and email are immutable once created.
func (r *BunRepository) UpsertByEmail(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(u).
		On("CONFLICT (email) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u := new(models.User)
	err := r.db.NewSelect().Model(u).Where("usr.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *BunRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.NewSelect().Model(&out).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BunRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := r.db.NewInsert().Model(u).Exec(ctx)
	return err
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("user %s not found", id)
	}
	return nil
}
