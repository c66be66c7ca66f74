package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/snapform/snapform-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// TimeRange selects the analytics window.
type TimeRange string

const (
	RangeWeek  TimeRange = "1W"
	RangeMonth TimeRange = "1M"
	RangeYear  TimeRange = "1Y"
)

const recentSubmissionCount = 10

// ParseTimeRange accepts 1W, 1M or 1Y. Empty selects 1M.
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "":
		return RangeMonth, nil
	case RangeWeek, RangeMonth, RangeYear:
		return TimeRange(s), nil
	}
	return "", fmt.Errorf("%w: range must be 1W, 1M or 1Y", ErrInvalidInput)
}

type TimeBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type RecentSubmission struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Date  string    `json:"date"`
}

type Analytics struct {
	TotalResponses    int64              `json:"totalResponses"`
	ResponsesByTime   []TimeBucket       `json:"responsesByTime"`
	RecentSubmissions []RecentSubmission `json:"recentSubmissions"`
}

type bucketSpan struct {
	label      string
	start, end time.Time
}

func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// buckets returns consecutive spans, oldest first, ending with the span
// that contains now.
func buckets(r TimeRange, now time.Time) []bucketSpan {
	var spans []bucketSpan
	switch r {
	case RangeWeek:
		today := dayStart(now)
		for i := 6; i >= 0; i-- {
			start := today.AddDate(0, 0, -i)
			spans = append(spans, bucketSpan{start.Weekday().String()[:3], start, start.AddDate(0, 0, 1)})
		}
	case RangeMonth:
		first := dayStart(now).AddDate(0, 0, -27)
		for i := 0; i < 4; i++ {
			start := first.AddDate(0, 0, 7*i)
			spans = append(spans, bucketSpan{fmt.Sprintf("Week %d", i+1), start, start.AddDate(0, 0, 7)})
		}
	case RangeYear:
		month := MonthStart(now)
		for i := 11; i >= 0; i-- {
			start := month.AddDate(0, -i, 0)
			spans = append(spans, bucketSpan{start.Month().String()[:3], start, start.AddDate(0, 1, 0)})
		}
	}
	return spans
}

// Analytics summarises a form's responses for the actor.
func (s *FormService) Analytics(ctx context.Context, actor Actor, formID uuid.UUID, r TimeRange, now time.Time) (Analytics, error) {
	if _, err := s.load(ctx, actor, formID); err != nil {
		return Analytics{}, err
	}
	db := s.DB.WithContext(ctx).Clauses(hints.CommentBefore("select", "analytics")).Session(&gorm.Session{})

	var out Analytics
	if err := db.Model(&models.Response{}).Where("form_id = ?", formID).Count(&out.TotalResponses).Error; err != nil {
		return Analytics{}, err
	}

	spans := buckets(r, now)
	var times []time.Time
	err := db.Model(&models.Response{}).
		Where("form_id = ? AND created_at >= ? AND created_at < ?", formID, spans[0].start, spans[len(spans)-1].end).
		Pluck("created_at", &times).Error
	if err != nil {
		return Analytics{}, err
	}
	out.ResponsesByTime = lo.Map(spans, func(b bucketSpan, _ int) TimeBucket {
		n := lo.CountBy(times, func(t time.Time) bool {
			return !t.Before(b.start) && t.Before(b.end)
		})
		return TimeBucket{Label: b.label, Count: int64(n)}
	})

	var recent []models.Response
	err = db.Select("id", "email", "created_at").Where("form_id = ?", formID).
		Order("created_at DESC").Limit(recentSubmissionCount).Find(&recent).Error
	if err != nil {
		return Analytics{}, err
	}
	out.RecentSubmissions = lo.Map(recent, func(r models.Response, _ int) RecentSubmission {
		email := "Anonymous"
		if r.Email != nil && *r.Email != "" {
			email = *r.Email
		}
		return RecentSubmission{ID: r.ID, Email: email, Date: r.CreatedAt.UTC().Format("2006-01-02")}
	})
	return out, nil
}
