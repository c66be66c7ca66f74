package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func insertResponses(t *testing.T, db *gorm.DB, formID uuid.UUID, at time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		r := models.Response{FormID: formID, Data: datatypes.NewJSONType(models.ResponseData{}), CreatedAt: at}
		require.NoError(t, db.Create(&r).Error)
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2026, 3, 1, 0, 30, 0, 0, time.FixedZone("NZDT", 13*3600)))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestMonthlyResponseCount(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "owner-a", "a@example.com", plans.TierFree)
	f1 := testutil.CreateForm(t, db, "owner-a", true, false, nil)
	f2 := testutil.CreateForm(t, db, "owner-a", true, false, nil)
	other := testutil.CreateForm(t, db, "owner-b", true, false, nil)

	asOf := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
	insertResponses(t, db, f1.ID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 2)
	insertResponses(t, db, f2.ID, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), 3)
	insertResponses(t, db, f1.ID, time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), 4)
	insertResponses(t, db, other.ID, asOf, 5)

	counter := &StoreUsageCounter{DB: db}
	n, err := counter.MonthlyResponseCount(context.Background(), "owner-a", asOf)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestMonthlyResponseCountStoreError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	counter := &StoreUsageCounter{DB: db}
	_, err = counter.MonthlyResponseCount(context.Background(), "owner-a", time.Now())
	assert.ErrorIs(t, err, ErrUsageUnavailable)
}

func TestFindOwnerTier(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "biz", "biz@example.com", plans.TierBusiness)
	testutil.CreateUser(t, db, "odd", "odd@example.com", plans.Tier("LEGACY"))

	ctx := context.Background()
	tier, err := FindOwnerTier(ctx, db, "biz")
	require.NoError(t, err)
	assert.Equal(t, plans.TierBusiness, tier)

	tier, err = FindOwnerTier(ctx, db, "missing")
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, tier)

	tier, err = FindOwnerTier(ctx, db, "odd")
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, tier)
}

func TestGetUsageSummary(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.CreateUser(t, db, "p", "p@example.com", plans.TierPremium)
	f := testutil.CreateForm(t, db, "p", true, false, nil)
	now := time.Now().UTC()
	insertResponses(t, db, f.ID, now, 2)

	s, err := GetUsageSummary(context.Background(), db, "p", now)
	require.NoError(t, err)
	assert.Equal(t, plans.TierPremium, s.Tier)
	assert.EqualValues(t, 1, s.FormsUsed)
	assert.EqualValues(t, 2, s.ResponsesThisMonth)
	assert.Equal(t, plans.Unlimited, s.Limits.MaxForms)
}
