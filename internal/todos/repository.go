package todos

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/models"
)

// sortColumns whitelists the exposed sort keys and maps them to columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
}

// Repository defines persistence operations for todos
type Repository interface {
	Insert(ctx context.Context, td *models.Todo) error
	// FindByID resolves by id alone, unscoped by owner, so the caller can
	// distinguish "does not exist" from "exists but not yours".
	FindByID(ctx context.Context, id string) (*models.Todo, error)
	ListPage(ctx context.Context, userID string, q Query) ([]models.Todo, int, error)
	Update(ctx context.Context, td *models.Todo) error
	Delete(ctx context.Context, id string) error
	CountByCompletion(ctx context.Context, userID string) (total, completed int, err error)
}

// BunRepository implements Repository on a relational store through bun.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Insert(ctx context.Context, td *models.Todo) error {
	now := time.Now().UTC()
	td.CreatedAt = now
	td.UpdatedAt = now
	_, err := r.db.NewInsert().Model(td).Exec(ctx)
	return err
}

func (r *BunRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	td := new(models.Todo)
	err := r.db.NewSelect().Model(td).Where("td.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("todo %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return td, nil
}

func (r *BunRepository) ListPage(ctx context.Context, userID string, q Query) ([]models.Todo, int, error) {
	filter := func(sq *bun.SelectQuery) *bun.SelectQuery {
		sq = sq.Where("user_id = ?", userID)
		if q.Completed != nil {
			sq = sq.Where("completed = ?", *q.Completed)
		}
		if q.Search != "" {
			needle := "%" + strings.ToLower(q.Search) + "%"
			sq = sq.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
				return g.
					Where("lower(title) LIKE ?", needle).
					WhereOr("lower(summary) LIKE ?", needle)
			})
		}
		return sq
	}

	total, err := filter(r.db.NewSelect().Model((*models.Todo)(nil))).Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var out []models.Todo
	err = filter(r.db.NewSelect().Model(&out)).
		OrderExpr("? ?", bun.Ident(sortColumns[q.SortBy]), bun.Safe(strings.ToUpper(q.SortOrder))).
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Scan(ctx)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BunRepository) Update(ctx context.Context, td *models.Todo) error {
	td.UpdatedAt = time.Now().UTC()
	_, err := r.db.NewUpdate().Model(td).WherePK().Exec(ctx)
	return err
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().Model((*models.Todo)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *BunRepository) CountByCompletion(ctx context.Context, userID string) (int, int, error) {
	total, err := r.db.NewSelect().
		Model((*models.Todo)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	completed, err := r.db.NewSelect().
		Model((*models.Todo)(nil)).
		Where("user_id = ?", userID).
		Where("completed = ?", true).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}
