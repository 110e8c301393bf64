package models

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"eventreg/internal/auth"
	"eventreg/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "models.db"), db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestInsertRegistration_SetsID(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	r := &Registration{Name: "Ada", Phone: "5551234", Comment: "vegan"}
	ok, err := InsertRegistration(ctx, database, r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotZero(t, r.ID)
}

func TestInsertRegistration_DuplicateReportsFalse(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	ok, err := InsertRegistration(ctx, database, &Registration{Name: "Ada", Phone: "5551234"})
	require.NoError(t, err)
	require.True(t, ok)

	dup := &Registration{Name: "Ada", Phone: "5551234", Comment: "again"}
	ok, err = InsertRegistration(ctx, database, dup)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, dup.ID)

	count, err := CountRegistrations(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInsertRegistration_SameNameDifferentPhone(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	ok, err := InsertRegistration(ctx, database, &Registration{Name: "Ada", Phone: "5551234"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = InsertRegistration(ctx, database, &Registration{Name: "Ada", Phone: "5559999"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListRegistrations_NewestFirst(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := InsertRegistration(ctx, database, &Registration{Name: name, Phone: "5551234"})
		require.NoError(t, err)
	}

	list, err := ListRegistrations(ctx, database)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Name)
	assert.Equal(t, "first", list[2].Name)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestListRegistrations_Empty(t *testing.T) {
	list, err := ListRegistrations(context.Background(), newTestDB(t))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetRegistrationsPaginated(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	for _, phone := range []string{"5550001", "5550002", "5550003", "5550004", "5550005"} {
		_, err := InsertRegistration(ctx, database, &Registration{Name: "x", Phone: phone})
		require.NoError(t, err)
	}

	page, err := GetRegistrationsPaginated(ctx, database, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "5550003", page[0].Phone)
	assert.Equal(t, "5550002", page[1].Phone)
}

func TestRegistrationStore_DelegatesToDB(t *testing.T) {
	store := NewRegistrationStore(newTestDB(t))
	ctx := context.Background()

	ok, err := store.Insert(ctx, &Registration{Name: "Ada", Phone: "5551234"})
	require.NoError(t, err)
	require.True(t, ok)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEnsureAdminExists_CreatesAndRehashes(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	database := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureAdminExists(ctx, database, "admin", "first-password"))
	user, err := GetUserByUsername(ctx, database, "admin")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.Password, "first-password"))

	require.NoError(t, EnsureAdminExists(ctx, database, "admin", "second-password"))
	user, err = GetUserByUsername(ctx, database, "admin")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.Password, "second-password"))
	assert.False(t, auth.CheckPassword(user.Password, "first-password"))
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	_, err := GetUserByUsername(context.Background(), newTestDB(t), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTOTPLifecycle(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	database := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, EnsureAdminExists(ctx, database, "admin", "first-password"))
	user, err := GetUserByUsername(ctx, database, "admin")
	require.NoError(t, err)
	assert.False(t, user.TOTPEnabled)

	assert.Error(t, EnableTOTP(ctx, database, user.ID), "nothing to enable without a secret")

	require.NoError(t, SetTOTPSecret(ctx, database, user.ID, "JBSWY3DPEHPK3PXP"))
	user, err = GetUserByID(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", user.TOTPSecret)
	assert.False(t, user.TOTPEnabled)

	require.NoError(t, EnableTOTP(ctx, database, user.ID))
	user, err = GetUserByID(ctx, database, user.ID)
	require.NoError(t, err)
	assert.True(t, user.TOTPEnabled)

	require.NoError(t, DisableTOTP(ctx, database, user.ID))
	user, err = GetUserByID(ctx, database, user.ID)
	require.NoError(t, err)
	assert.False(t, user.TOTPEnabled)
	assert.Empty(t, user.TOTPSecret)
}
