package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"memberportal/web-service/internal/config"
	"memberportal/web-service/internal/logging"
	"memberportal/web-service/internal/models"
	"memberportal/web-service/internal/store"
	"memberportal/web-service/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryStores(t *testing.T) *memory.UserStore {
	t.Helper()
	t.Setenv("BCRYPT_COST", "4")
	users := memory.NewUserStore()
	original := openStores
	openStores = func(ctx context.Context, cfg config.Config, logger logging.Logger, allowMemory bool) (stores, error) {
		return stores{users: users, sessions: memory.NewSessionStore(), close: func() {}}, nil
	}
	t.Cleanup(func() { openStores = original })
	return users
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUsersCreateAdminAndList(t *testing.T) {
	users := useMemoryStores(t)

	out, err := run(t, "Root123!\n", "users", "create-admin", "root", "root@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin root")

	user, err := users.FindByIdentifier(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	out, err = run(t, "", "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "root@example.com")
	assert.Contains(t, out, "admin")
}

func TestUsersCreateAdminRejectsWeakPassword(t *testing.T) {
	users := useMemoryStores(t)

	_, err := run(t, "weak\n", "users", "create-admin", "root", "root@example.com")
	require.Error(t, err)

	_, err = users.FindByIdentifier(context.Background(), "root")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUsersSetRole(t *testing.T) {
	users := useMemoryStores(t)
	_, err := run(t, "Abc123!\n", "users", "create-admin", "alice1", "a@b.com")
	require.NoError(t, err)

	out, err := run(t, "", "users", "set-role", "alice1", "user")
	require.NoError(t, err)
	assert.Contains(t, out, "alice1 is now user")

	user, err := users.FindByIdentifier(context.Background(), "alice1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = run(t, "", "users", "set-role", "alice1", "owner")
	assert.ErrorContains(t, err, "unknown role")

	_, err = run(t, "", "users", "set-role", "ghost", "admin")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestMigrateRequiresDatabase(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := run(t, "", "migrate")
	assert.ErrorIs(t, err, errNoDatabase)
}

func TestPromptPasswordFromPipe(t *testing.T) {
	var prompt bytes.Buffer
	pw, err := promptPassword(strings.NewReader("Secret1!\r\n"), &prompt)
	require.NoError(t, err)
	assert.Equal(t, "Secret1!", pw)
	assert.Contains(t, prompt.String(), "Enter password:")

	_, err = promptPassword(strings.NewReader(""), &prompt)
	assert.Error(t, err)
}

func TestNewCatalogDefaultsToStatic(t *testing.T) {
	catalog, err := newCatalog(context.Background(), config.Config{})
	require.NoError(t, err)

	keys, err := catalog.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}
