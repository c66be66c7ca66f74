package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/snapform/snapform-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResponseRecord is an admitted response ready to persist.
type ResponseRecord struct {
	Email     *string
	Data      models.ResponseData
	IPAddress string
	UserAgent string
	Referrer  *string
	CreatedAt time.Time
}

// ResponseCommitter persists admitted responses.
type ResponseCommitter struct {
	DB      *gorm.DB
	Timeout time.Duration
}

// Commit inserts the response and increments the form's response counter in
// one transaction. The counter only moves if the form is still published;
// otherwise nothing is written and ErrFormUnavailable is returned. The
// transaction is not tied to ctx cancellation so a client disconnect cannot
// abort a commit half way. Other failures wrap ErrSubmissionFailed.
func (c *ResponseCommitter) Commit(ctx context.Context, formID uuid.UUID, rec ResponseRecord) (models.Response, error) {
	ctx = context.WithoutCancel(ctx)
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	resp := models.Response{
		ID:        uuid.New(),
		FormID:    formID,
		Email:     rec.Email,
		Data:      datatypes.NewJSONType(rec.Data),
		IPAddress: rec.IPAddress,
		UserAgent: rec.UserAgent,
		Referrer:  rec.Referrer,
		CreatedAt: createdAt.UTC(),
	}

	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Form{}).
			Where("id = ? AND published = ?", formID, true).
			UpdateColumn("response_count", gorm.Expr("response_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFormUnavailable
		}
		return tx.Create(&resp).Error
	})
	if errors.Is(err, ErrFormUnavailable) {
		return models.Response{}, err
	}
	if err != nil {
		return models.Response{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	return resp, nil
}
