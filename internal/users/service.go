package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/records-backend/pkg/db"
	"github.com/angelmondragon/records-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/angelmondragon/records-backend/pkg/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const msgNotFound = "User not found"

// Service exposes user account operations addressed by email.
type Service interface {
	ListUsers(ctx context.Context) ([]UserDTO, error)
	GetUser(ctx context.Context, email string) (*UserDTO, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	UpdateUser(ctx context.Context, email string, input UpdateUserInput) (*UserDTO, error)
	DeleteUser(ctx context.Context, email string) error
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a user service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}, nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Internal(err)
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetUser(ctx context.Context, email string) (*UserDTO, error) {
	user, err := s.load(ctx, email)
	if err != nil {
		return nil, err
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	presence := types.FieldErrors{}
	rec := record{
		Username:  validation.TakeString(presence, "username", input.Username),
		Email:     validation.TakeString(presence, "email", input.Email),
		Password:  validation.TakeString(presence, "password", input.Password),
		AuthToken: input.AuthToken.Apply(nil),
	}
	if err := s.check(ctx, rec, presence, uuid.Nil); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  rec.Username,
		Email:     rec.Email,
		Password:  rec.Password,
		AuthToken: rec.AuthToken,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, writeError(err)
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) UpdateUser(ctx context.Context, email string, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.load(ctx, email)
	if err != nil {
		return nil, err
	}

	presence := types.FieldErrors{}
	rec := record{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		AuthToken: input.AuthToken.Apply(user.AuthToken),
	}
	if input.Username.Valid {
		rec.Username = validation.TakeString(presence, "username", input.Username)
	}
	if input.Password.Valid {
		rec.Password = validation.TakeString(presence, "password", input.Password)
	}
	if err := s.check(ctx, rec, presence, user.ID); err != nil {
		return nil, err
	}

	user.Username = rec.Username
	user.Password = rec.Password
	user.AuthToken = rec.AuthToken
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, writeError(err)
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) DeleteUser(ctx context.Context, email string) error {
	user, err := s.load(ctx, email)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, user.ID)
	if err != nil {
		return pkgerrors.Internal(err)
	}
	if !deleted {
		return pkgerrors.NotFound(msgNotFound)
	}
	return nil
}

func (s *service) load(ctx context.Context, email string) (*models.User, error) {
	email, err := validation.RequireEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(msgNotFound)
		}
		return nil, pkgerrors.Internal(err)
	}
	return user, nil
}

// check validates the merged record, then the uniqueness of the fields that
// passed their own rules.
func (s *service) check(ctx context.Context, rec record, presence types.FieldErrors, self uuid.UUID) error {
	errs := validation.Override(validation.Struct(rec), presence)
	for _, field := range []struct{ column, value string }{
		{"username", rec.Username},
		{"email", rec.Email},
	} {
		if _, failed := errs[field.column]; failed {
			continue
		}
		taken, err := s.repo.Taken(ctx, field.column, field.value, self)
		if err != nil {
			return pkgerrors.Internal(err)
		}
		if taken {
			errs.Add(field.column, uniqueMessage(field.column))
		}
	}
	if !errs.Empty() {
		return validation.Failed(errs)
	}
	return nil
}

// writeError turns a unique index failure lost to a concurrent writer into
// the same field error the pre-check reports.
func writeError(err error) error {
	for _, column := range []string{"username", "email"} {
		if db.IsUniqueViolation(err, column) {
			return validation.Failed(types.FieldErrors{column: {uniqueMessage(column)}})
		}
	}
	return pkgerrors.Internal(err)
}

func uniqueMessage(column string) string {
	return fmt.Sprintf("user with this %s already exists.", column)
}
