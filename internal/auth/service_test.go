package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"memberportal/web-service/internal/hasher"
	"memberportal/web-service/internal/logging"
	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/store"
	"memberportal/web-service/internal/store/memory"
	"memberportal/web-service/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*Service, *memory.UserStore) {
	t.Helper()
	users := memory.NewUserStore()
	svc, err := NewService(users, hasher.New(bcrypt.MinCost), logging.Discard())
	require.NoError(t, err)
	return svc, users
}

func signupAlice(t *testing.T, svc *Service) models.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), SignupInput{Username: "alice1", Password: "Abc123!", Email: "a@b.com"})
	require.NoError(t, err)
	return user
}

func TestSignupStoresHashNotPlaintext(t *testing.T) {
	svc, users := newService(t)
	user := signupAlice(t, svc)

	assert.Equal(t, models.RoleUser, user.Role)
	stored, err := users.FindByIdentifier(context.Background(), "alice1")
	require.NoError(t, err)
	assert.NotEqual(t, "Abc123!", stored.PasswordHash)
	assert.True(t, hasher.New(bcrypt.MinCost).Verify("Abc123!", stored.PasswordHash))
}

func TestSignupDuplicates(t *testing.T) {
	svc, _ := newService(t)
	signupAlice(t, svc)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "ALICE1", Password: "Abc123!", Email: "c@d.com"})
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)

	_, err = svc.Signup(ctx, SignupInput{Username: "bob", Password: "Abc123!", Email: "A@B.com"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestSignupValidation(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "alice1", Password: "Abcdef!", Email: "a@b.com"})
	assert.ErrorIs(t, err, validate.ErrInvalid)

	_, err = svc.Signup(ctx, SignupInput{Username: strings.Repeat("a", 21), Password: "Abc123!", Email: "a@b.com"})
	assert.ErrorIs(t, err, validate.ErrInvalid)

	_, err = svc.Signup(ctx, SignupInput{Username: strings.Repeat("a", 20), Password: "Abc123!", Email: "a@b.com"})
	assert.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Username: "bob", Password: "Abc123!", Email: ""})
	field, _ := validate.FieldOf(err)
	assert.Equal(t, validate.FieldEmail, field)

	list, _ := users.ListAll(ctx)
	assert.Len(t, list, 1)
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	signupAlice(t, svc)
	ctx := context.Background()

	for _, id := range []string{"alice1", "ALICE1", "a@b.com", "A@B.com"} {
		user, err := svc.Login(ctx, id, "Abc123!")
		require.NoError(t, err, id)
		assert.Equal(t, "alice1", user.Username)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newService(t)
	signupAlice(t, svc)
	ctx := context.Background()

	_, wrongPassword := svc.Login(ctx, "alice1", "nope")
	_, unknownUser := svc.Login(ctx, "mallory", "Abc123!")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLoginValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, validate.ErrBlank)

	_, err = svc.Login(context.Background(), strings.Repeat("x", 21), "pw")
	assert.ErrorIs(t, err, validate.ErrInvalid)
}

type brokenUsers struct {
	*memory.UserStore
}

func (brokenUsers) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	return models.User{}, errors.New("db down")
}

func TestLoginBackendError(t *testing.T) {
	svc, err := NewService(brokenUsers{memory.NewUserStore()}, hasher.New(bcrypt.MinCost), logging.Discard())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice1", "Abc123!")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestToggleRoleRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	signupAlice(t, svc)
	ctx := context.Background()

	role, err := svc.ToggleRole(ctx, "alice1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	role, err = svc.ToggleRole(ctx, "alice1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	_, err = svc.ToggleRole(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestCreateUserWithRole(t *testing.T) {
	svc, _ := newService(t)

	user, err := svc.CreateUser(context.Background(), SignupInput{Username: "root1", Password: "Abc123!", Email: "r@b.com"}, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	role, err := svc.CurrentRole(context.Background(), "root1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
}

// insertOnlyUsers fails every role update, so CreateUser must set the role
// on insert.
type insertOnlyUsers struct {
	*memory.UserStore
	insertedRoles []models.Role
}

func (u *insertOnlyUsers) Insert(ctx context.Context, in store.NewUser) (models.User, error) {
	u.insertedRoles = append(u.insertedRoles, in.Role)
	return u.UserStore.Insert(ctx, in)
}

func (u *insertOnlyUsers) SetRole(ctx context.Context, username string, role models.Role) error {
	return errors.New("role updates unavailable")
}

func TestCreateUserSingleWrite(t *testing.T) {
	users := &insertOnlyUsers{UserStore: memory.NewUserStore()}
	svc, err := NewService(users, hasher.New(bcrypt.MinCost), logging.Discard())
	require.NoError(t, err)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, SignupInput{Username: "root1", Password: "Abc123!", Email: "r@b.com"}, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, []models.Role{models.RoleAdmin}, users.insertedRoles)

	stored, err := users.FindByIdentifier(ctx, "root1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	_, err = svc.CreateUser(ctx, SignupInput{Username: "bob", Password: "Abc123!", Email: "bob@b.com"}, models.Role("owner"))
	assert.ErrorIs(t, err, store.ErrInvalidRole)
	assert.Len(t, users.insertedRoles, 1)
}

func TestCheckAdmin(t *testing.T) {
	svc, _ := newService(t)
	signupAlice(t, svc)
	ctx := context.Background()
	now := time.Now()

	authed := models.Session{Authenticated: true, Username: "alice1", Role: models.RoleUser, ExpiresAt: now.Add(time.Hour)}

	assert.ErrorIs(t, svc.CheckAdmin(ctx, models.Session{}, now), ErrUnauthenticated)
	assert.ErrorIs(t, svc.CheckAdmin(ctx, authed, now), ErrForbidden)
	assert.ErrorIs(t, svc.CheckAdmin(ctx, authed, now), ErrForbidden)

	require.NoError(t, svc.SetRole(ctx, "alice1", models.RoleAdmin))
	assert.NoError(t, svc.CheckAdmin(ctx, authed, now))
	assert.NoError(t, svc.CheckAdmin(ctx, authed, now))

	expired := authed
	expired.ExpiresAt = now.Add(-time.Second)
	assert.ErrorIs(t, svc.CheckAdmin(ctx, expired, now), ErrUnauthenticated)

	ghost := authed
	ghost.Username = "ghost"
	assert.ErrorIs(t, svc.CheckAdmin(ctx, ghost, now), ErrForbidden)
}

func TestCheckAuthenticated(t *testing.T) {
	now := time.Now()

	assert.NoError(t, CheckAuthenticated(models.Session{Authenticated: true, Username: "a", ExpiresAt: now.Add(time.Minute)}, now))
	assert.ErrorIs(t, CheckAuthenticated(models.Session{Authenticated: true, ExpiresAt: now.Add(time.Minute)}, now), ErrUnauthenticated)
	assert.ErrorIs(t, CheckAuthenticated(models.Session{Username: "a", ExpiresAt: now.Add(time.Minute)}, now), ErrUnauthenticated)
}
