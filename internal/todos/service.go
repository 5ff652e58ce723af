package todos

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/models"
)

// Query carries the normalized list parameters. Defaults and whitelists are
// applied by Normalize before the query reaches the repository.
type Query struct {
	Search    string
	Completed *bool
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalize applies defaults and rejects out-of-range or non-whitelisted
// values before any persistence access.
func (q *Query) Normalize() error {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
	if q.Page < 1 {
		return apperrors.Validation("page must be >= 1")
	}
	if q.Limit < 1 {
		return apperrors.Validation("limit must be >= 1")
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		return apperrors.Validation("sortBy must be one of createdAt, updatedAt, title")
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return apperrors.Validation("sortOrder must be asc or desc")
	}
	return nil
}

// CreateInput is a validated todo creation payload.
type CreateInput struct {
	Title     string
	Summary   *string
	Completed bool
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title     *string
	Summary   *string
	Completed *bool
}

// Paginated wraps a page of todos with its pagination metadata.
type Paginated struct {
	Data []models.Todo `json:"data"`
	Meta Meta          `json:"meta"`
}

type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Statistics summarizes a user's todos.
type Statistics struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

// Service encapsulates todo business logic, including the per-resource
// ownership checks.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Todo, error) {
	td := &models.Todo{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Summary:   in.Summary,
		Completed: in.Completed,
		UserID:    userID,
	}
	if err := s.repo.Insert(ctx, td); err != nil {
		return nil, err
	}
	return td, nil
}

func (s *Service) List(ctx context.Context, userID string, q Query) (*Paginated, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	data, total, err := s.repo.ListPage(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []models.Todo{}
	}
	return &Paginated{
		Data: data,
		Meta: Meta{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}

// Get resolves the todo by id alone, then enforces ownership: a missing id is
// NotFound, an existing todo owned by someone else is Forbidden. The two-step
// order is deliberate so the two outcomes stay distinguishable.
func (s *Service) Get(ctx context.Context, id, userID string) (*models.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Validation("%s is not a valid UUID", id)
	}
	td, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if td.UserID != userID {
		return nil, apperrors.Forbidden("you do not have access to this todo")
	}
	return td, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (*models.Todo, error) {
	td, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		td.Title = *in.Title
	}
	if in.Summary != nil {
		td.Summary = in.Summary
	}
	if in.Completed != nil {
		td.Completed = *in.Completed
	}
	if err := s.repo.Update(ctx, td); err != nil {
		return nil, err
	}
	return td, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context, userID string) (*Statistics, error) {
	total, completed, err := s.repo.CountByCompletion(ctx, userID)
	if err != nil {
		return nil, err
	}
	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return &Statistics{
		Total:          total,
		Completed:      completed,
		Pending:        total - completed,
		CompletionRate: rate,
	}, nil
}
