package services

import (
	"context"
	"testing"
	"time"

	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrivileged(t *testing.T) {
	r := RoleResolver{SuperAdmins: []string{"root@example.com"}}
	assert.True(t, r.IsPrivileged("Root@Example.com "))
	assert.False(t, r.IsPrivileged("user@example.com"))
	assert.False(t, r.IsPrivileged(""))
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	r := RoleResolver{SuperAdmins: []string{"root@example.com"}}
	ctx := context.Background()

	u, err := EnsureUser(ctx, db, r, Identity{ID: "u1", Email: "User@Example.com", Name: "U"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, string(plans.TierFree), u.Plan)
	assert.Equal(t, "user@example.com", u.Email)

	for i := 0; i < 2; i++ {
		u, err = EnsureUser(ctx, db, r, Identity{ID: "root", Email: "root@example.com"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleSuperAdmin, u.Role)
	}

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestEnsureUserPromotesExistingUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "late", "late@example.com", plans.TierPremium)

	r := RoleResolver{SuperAdmins: []string{"late@example.com"}}
	u, err := EnsureUser(context.Background(), db, r, Identity{ID: "late", Email: "late@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)
	assert.Equal(t, string(plans.TierPremium), u.Plan)
}

func TestSetUserRole(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "u1", "u1@example.com", plans.TierFree)
	testutil.CreateUser(t, db, "root", "root@example.com", plans.TierFree)
	r := RoleResolver{SuperAdmins: []string{"root@example.com"}}
	ctx := context.Background()

	_, err := SetUserRole(ctx, db, r, Actor{Role: models.RoleAdmin}, "u1", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	super := Actor{ID: "root", Role: models.RoleSuperAdmin}
	u, err := SetUserRole(ctx, db, r, super, "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = SetUserRole(ctx, db, r, super, "root", models.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SetUserRole(ctx, db, r, super, "u1", models.Role("OWNER"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SetUserRole(ctx, db, r, super, "ghost", models.RoleUser)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetUserPlan(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "u1", "u1@example.com", plans.TierFree)

	u, err := SetUserPlan(context.Background(), db, "u1", plans.TierBusiness)
	require.NoError(t, err)
	assert.Equal(t, string(plans.TierBusiness), u.Plan)

	_, err = SetUserPlan(context.Background(), db, "ghost", plans.TierBusiness)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminStatsAndUsers(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "u1", "u1@example.com", plans.TierFree)
	testutil.CreateUser(t, db, "u2", "u2@example.com", plans.TierFree)
	f := testutil.CreateForm(t, db, "u1", true, false, nil)
	now := time.Now().UTC()
	insertResponses(t, db, f.ID, now, 2)
	insertResponses(t, db, f.ID, now.AddDate(0, 0, -3), 1)

	s, err := GetAdminStats(context.Background(), db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.TotalUsers)
	assert.EqualValues(t, 1, s.TotalForms)
	assert.EqualValues(t, 3, s.TotalResponses)
	assert.EqualValues(t, 2, s.ResponsesToday)

	page, _ := NewPage(1, 1)
	users, p, err := ListUsers(context.Background(), db, page)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.EqualValues(t, 2, p.Total)
}
