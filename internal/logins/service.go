package logins

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/angelmondragon/records-backend/pkg/validation"
)

// Service records and queries sign-in audit entries.
type Service interface {
	// ListLogins returns entries newest first. A nil email lists everything;
	// a non-nil empty email is rejected.
	ListLogins(ctx context.Context, email *string) ([]LoginDTO, error)
	CreateLogin(ctx context.Context, input CreateLoginInput) (*LoginDTO, error)
	DeleteLoginsByEmail(ctx context.Context, email string) (int64, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a logins service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("logins repository required")
	}
	return &service{
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}, nil
}

func (s *service) ListLogins(ctx context.Context, email *string) ([]LoginDTO, error) {
	if email != nil {
		key, err := validation.RequireEmail(*email)
		if err != nil {
			return nil, err
		}
		email = &key
	}
	rows, err := s.repo.List(ctx, email)
	if err != nil {
		return nil, pkgerrors.Internal(err)
	}
	out := make([]LoginDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateLogin(ctx context.Context, input CreateLoginInput) (*LoginDTO, error) {
	presence := types.FieldErrors{}
	rec := record{
		Username: validation.TakeString(presence, "username", input.Username),
		Email:    validation.TakeString(presence, "email", input.Email),
	}
	if errs := validation.Override(validation.Struct(rec), presence); !errs.Empty() {
		return nil, validation.Failed(errs)
	}

	login := &models.Login{
		Username:  rec.Username,
		Email:     rec.Email,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, login); err != nil {
		return nil, pkgerrors.Internal(err)
	}
	dto := fromModel(login)
	return &dto, nil
}

func (s *service) DeleteLoginsByEmail(ctx context.Context, email string) (int64, error) {
	email, err := validation.RequireEmail(email)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByEmail(ctx, email)
	if err != nil {
		return 0, pkgerrors.Internal(err)
	}
	return deleted, nil
}
