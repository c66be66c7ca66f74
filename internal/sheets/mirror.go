package sheets

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/metrics"
	"github.com/snapform/snapform-api/internal/models"
)

// Mirror appends committed responses to the form's spreadsheet.
type Mirror struct {
	Service Service
}

// Mirror writes one row for rec to sheetID.
func (m *Mirror) Mirror(ctx context.Context, sheetID string, rec Record, fields models.FieldList) error {
	if err := m.Service.AppendRow(ctx, sheetID, BuildRow(rec, fields)); err != nil {
		return fmt.Errorf("append to sheet %s: %w", sheetID, err)
	}
	return nil
}

// OnCommit is the post-commit hook. Forms without a sheet are skipped and
// failures are only logged and counted.
func (m *Mirror) OnCommit(ctx context.Context, form *models.Form, resp *models.Response) {
	if form.SheetID == nil || *form.SheetID == "" {
		return
	}
	rec := Record{
		CreatedAt: resp.CreatedAt,
		Email:     resp.Email,
		Data:      resp.Data.Data(),
	}
	if err := m.Mirror(ctx, *form.SheetID, rec, form.Fields); err != nil {
		metrics.MirrorFailures.Inc()
		logging.WithFields(logrus.Fields{
			"form_id":     form.ID,
			"response_id": resp.ID,
			"sheet_id":    *form.SheetID,
		}).WithError(err).Warn("sheet mirror failed")
	}
}
