package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	count int64
	err   error
	calls int
}

func (f *fakeCounter) MonthlyResponseCount(ctx context.Context, ownerID string, asOf time.Time) (int64, error) {
	f.calls++
	return f.count, f.err
}

func nameForm() *models.Form {
	return &models.Form{
		UserID:       "owner-1",
		Published:    true,
		RequireEmail: true,
		Fields: models.FieldList{
			{ID: "name", Type: models.FieldShortText, Label: "Name", Required: true},
		},
	}
}

func alice() Submission {
	return Submission{Email: "a@b.com", Data: map[string]types.FieldValue{"name": types.String("Alice")}}
}

func TestEvaluateAcceptsValidSubmission(t *testing.T) {
	gate := &AdmissionGate{Usage: &fakeCounter{}}

	d, err := gate.Evaluate(context.Background(), nameForm(), plans.TierFree, alice())
	require.NoError(t, err)
	assert.True(t, d.Admitted)
	require.NotNil(t, d.Email)
	assert.Equal(t, "a@b.com", *d.Email)
	assert.Equal(t, types.String("Alice"), d.Data["name"])
}

func TestEvaluateEmailRequired(t *testing.T) {
	gate := &AdmissionGate{Usage: &fakeCounter{}}
	payload := alice()
	payload.Email = ""

	d, err := gate.Evaluate(context.Background(), nameForm(), plans.TierFree, payload)
	require.NoError(t, err)
	assert.False(t, d.Admitted)
	assert.Equal(t, RejectEmailRequired, d.Code)

	payload.Email = "not-an-email"
	d, err = gate.Evaluate(context.Background(), nameForm(), plans.TierFree, payload)
	require.NoError(t, err)
	assert.Equal(t, RejectEmailRequired, d.Code)
}

func TestEvaluateNotPublishedShortCircuits(t *testing.T) {
	counter := &fakeCounter{}
	gate := &AdmissionGate{Usage: counter}
	form := nameForm()
	form.Published = false

	d, err := gate.Evaluate(context.Background(), form, plans.TierFree, Submission{})
	require.NoError(t, err)
	assert.Equal(t, RejectFormNotPublished, d.Code)
	assert.Zero(t, counter.calls)
}

func TestEvaluateInvalidDataBeforeEmail(t *testing.T) {
	gate := &AdmissionGate{Usage: &fakeCounter{}}

	d, err := gate.Evaluate(context.Background(), nameForm(), plans.TierFree, Submission{})
	require.NoError(t, err)
	assert.Equal(t, RejectInvalidResponseData, d.Code)
	assert.Contains(t, d.FieldErrors, "name")
}

func TestEvaluateMalformedOptionalEmail(t *testing.T) {
	gate := &AdmissionGate{Usage: &fakeCounter{}}
	form := nameForm()
	form.RequireEmail = false
	payload := alice()
	payload.Email = "nope"

	d, err := gate.Evaluate(context.Background(), form, plans.TierFree, payload)
	require.NoError(t, err)
	assert.Equal(t, RejectInvalidResponseData, d.Code)
	assert.Contains(t, d.FieldErrors, "email")

	payload.Email = ""
	d, err = gate.Evaluate(context.Background(), form, plans.TierFree, payload)
	require.NoError(t, err)
	assert.True(t, d.Admitted)
	assert.Nil(t, d.Email)
}

func TestEvaluateLimitBoundary(t *testing.T) {
	limit := int64(plans.LimitsFor(plans.TierFree).MaxResponsesPerMonth)

	counter := &fakeCounter{count: limit - 1}
	gate := &AdmissionGate{Usage: counter}
	d, err := gate.Evaluate(context.Background(), nameForm(), plans.TierFree, alice())
	require.NoError(t, err)
	assert.True(t, d.Admitted)
	assert.Equal(t, 1, counter.calls)

	counter.count = limit
	d, err = gate.Evaluate(context.Background(), nameForm(), plans.TierFree, alice())
	require.NoError(t, err)
	assert.False(t, d.Admitted)
	assert.Equal(t, RejectResponseLimitReached, d.Code)
}

func TestEvaluateUnlimitedNeverCounts(t *testing.T) {
	for _, tier := range []plans.Tier{plans.TierFree, plans.TierPremium, plans.TierBusiness} {
		if plans.LimitsFor(tier).MaxResponsesPerMonth != plans.Unlimited {
			continue
		}
		counter := &fakeCounter{count: 1 << 40, err: errors.New("must not be called")}
		gate := &AdmissionGate{Usage: counter}

		d, err := gate.Evaluate(context.Background(), nameForm(), tier, alice())
		require.NoError(t, err, tier)
		assert.True(t, d.Admitted, tier)
		assert.Zero(t, counter.calls, tier)
	}
}

func TestEvaluateFailsClosedOnCounterError(t *testing.T) {
	gate := &AdmissionGate{Usage: &fakeCounter{err: ErrUsageUnavailable}}

	d, err := gate.Evaluate(context.Background(), nameForm(), plans.TierPremium, alice())
	assert.ErrorIs(t, err, ErrUsageUnavailable)
	assert.False(t, d.Admitted)
}

func TestEvaluatePassesNowToCounter(t *testing.T) {
	var seen time.Time
	now := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	gate := &AdmissionGate{
		Usage: counterFunc(func(ctx context.Context, ownerID string, asOf time.Time) (int64, error) {
			seen = asOf
			assert.Equal(t, "owner-1", ownerID)
			return 0, nil
		}),
		Now: func() time.Time { return now },
	}

	_, err := gate.Evaluate(context.Background(), nameForm(), plans.TierFree, alice())
	require.NoError(t, err)
	assert.Equal(t, now, seen)
}

type counterFunc func(ctx context.Context, ownerID string, asOf time.Time) (int64, error)

func (f counterFunc) MonthlyResponseCount(ctx context.Context, ownerID string, asOf time.Time) (int64, error) {
	return f(ctx, ownerID, asOf)
}
