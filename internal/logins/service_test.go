package logins

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/angelmondragon/records-backend/pkg/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tickingClock struct {
	at time.Time
}

func (c *tickingClock) now() time.Time {
	c.at = c.at.Add(time.Minute)
	return c.at
}

func newTestService(t *testing.T) (*service, *gorm.DB, *tickingClock) {
	t.Helper()
	dsn := fmt.Sprintf("file:logins_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Login{}))

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	clock := &tickingClock{at: time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)}
	impl := svc.(*service)
	impl.now = clock.now
	return impl, conn, clock
}

func str(v string) types.NullableString {
	return types.NullableString{Valid: true, Value: &v}
}

func mustCreate(t *testing.T, svc Service, username, email string) *LoginDTO {
	t.Helper()
	login, err := svc.CreateLogin(context.Background(), CreateLoginInput{Username: str(username), Email: str(email)})
	require.NoError(t, err)
	return login
}

func TestCreateLoginValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateLogin(context.Background(), CreateLoginInput{Email: str("nope")})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	errs := typed.Details().(types.FieldErrors)
	assert.Equal(t, []string{validation.MsgRequired}, errs["username"])
	assert.Equal(t, []string{validation.MsgEmail}, errs["email"])
}

func TestListLoginsNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, "john", "john@example.com")
	second := mustCreate(t, svc, "jane", "jane@example.com")
	third := mustCreate(t, svc, "john", "john@example.com")

	all, err := svc.ListLogins(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	email := "john@example.com"
	johns, err := svc.ListLogins(ctx, &email)
	require.NoError(t, err)
	require.Len(t, johns, 2)
	assert.Equal(t, third.ID, johns[0].ID)
	assert.Equal(t, first.ID, johns[1].ID)

	nobody := "nobody@example.com"
	none, err := svc.ListLogins(ctx, &nobody)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	empty := ""
	_, err = svc.ListLogins(ctx, &empty)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, validation.MsgEmailParamMissing, pkgerrors.As(err).Message())
}

func TestListLoginsBreaksTimestampTiesByID(t *testing.T) {
	svc, _, _ := newTestService(t)
	at := time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	a := mustCreate(t, svc, "a", "a@example.com")
	b := mustCreate(t, svc, "b", "b@example.com")

	all, err := svc.ListLogins(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	hi, lo := a.ID, b.ID
	if b.ID.String() > a.ID.String() {
		hi, lo = b.ID, a.ID
	}
	assert.Equal(t, hi, all[0].ID)
	assert.Equal(t, lo, all[1].ID)
}

func TestDeleteLoginsByEmail(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "john", "john@example.com")
	mustCreate(t, svc, "john", "john@example.com")
	mustCreate(t, svc, "jane", "jane@example.com")

	deleted, err := svc.DeleteLoginsByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	deleted, err = svc.DeleteLoginsByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	var remaining int64
	require.NoError(t, conn.Model(&models.Login{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)

	_, err = svc.DeleteLoginsByEmail(ctx, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
