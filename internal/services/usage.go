package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// UsageCounter reports how many responses an owner received in the month of asOf.
type UsageCounter interface {
	MonthlyResponseCount(ctx context.Context, ownerID string, asOf time.Time) (int64, error)
}

// MonthStart is the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StoreUsageCounter counts responses in the database.
type StoreUsageCounter struct {
	DB *gorm.DB
}

// MonthlyResponseCount counts responses across every form owned by ownerID
// created at or after the start of asOf's month. Store failures wrap
// ErrUsageUnavailable.
func (u *StoreUsageCounter) MonthlyResponseCount(ctx context.Context, ownerID string, asOf time.Time) (int64, error) {
	var count int64
	err := u.DB.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "usage:monthly_responses")).
		Model(&models.Response{}).
		Joins("JOIN forms ON forms.id = responses.form_id").
		Where("forms.user_id = ? AND responses.created_at >= ?", ownerID, MonthStart(asOf)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUsageUnavailable, err)
	}
	return count, nil
}

// CountForms returns how many forms ownerID has.
func CountForms(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Form{}).Where("user_id = ?", ownerID).Count(&count).Error
	return count, err
}

// FindOwnerTier returns the subscription tier of ownerID. An owner without a
// user row is on the free tier. A stored tier that no longer parses is
// treated as free so limits stay enforced.
func FindOwnerTier(ctx context.Context, db *gorm.DB, ownerID string) (plans.Tier, error) {
	var user models.User
	err := db.WithContext(ctx).Select("id", "plan").Where("id = ?", ownerID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return plans.TierFree, nil
	}
	if err != nil {
		return "", err
	}
	tier, err := plans.ParseTier(user.Plan)
	if err != nil {
		logging.WithField("owner_id", ownerID).Warnf("unknown stored plan %q, using FREE", user.Plan)
		return plans.TierFree, nil
	}
	return tier, nil
}

// UsageSummary is an owner's consumption against their plan.
type UsageSummary struct {
	Tier               plans.Tier       `json:"tier"`
	Limits             plans.PlanLimits `json:"limits"`
	FormsUsed          int64            `json:"formsUsed"`
	ResponsesThisMonth int64            `json:"responsesThisMonth"`
	PeriodStart        time.Time        `json:"periodStart"`
}

// GetUsageSummary collects tier, limits and current usage for ownerID.
func GetUsageSummary(ctx context.Context, db *gorm.DB, ownerID string, asOf time.Time) (UsageSummary, error) {
	tier, err := FindOwnerTier(ctx, db, ownerID)
	if err != nil {
		return UsageSummary{}, err
	}
	forms, err := CountForms(ctx, db, ownerID)
	if err != nil {
		return UsageSummary{}, err
	}
	counter := &StoreUsageCounter{DB: db}
	responses, err := counter.MonthlyResponseCount(ctx, ownerID, asOf)
	if err != nil {
		return UsageSummary{}, err
	}
	return UsageSummary{
		Tier:               tier,
		Limits:             plans.LimitsFor(tier),
		FormsUsed:          forms,
		ResponsesThisMonth: responses,
		PeriodStart:        MonthStart(asOf),
	}, nil
}
