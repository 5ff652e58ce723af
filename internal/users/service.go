package users

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/identity"
	"github.com/taskory/taskory-api/internal/models"
)

// Service encapsulates user-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// SyncFromClaims reconciles the local user record with the verified identity.
// Keyed by email rather than subject id so the record survives subject-id
// rotation across identity-provider migrations. Returns nil without error
// when the claims carry no email; there is nothing to key the record on.
func (s *Service) SyncFromClaims(ctx context.Context, claims *identity.Claims) (*models.User, error) {
	if claims == nil || claims.Email == "" {
		return nil, nil
	}
	u := &models.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Username: claims.UsernameOrLocalPart(),
		Password: "", // managed by the identity provider
	}
	return s.repo.UpsertByEmail(ctx, u)
}

// CreateLocal registers a locally administered user with a bcrypt-hashed
// password. Only reachable through the admin API.
func (s *Service) CreateLocal(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		Password: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Validation("%s is not a valid UUID", id)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Validation("%s is not a valid UUID", id)
	}
	return s.repo.Delete(ctx, id)
}
