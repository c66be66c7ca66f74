package sheets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/sheets"
	"github.com/snapform/snapform-api/internal/sheets/mock_sheets"
	"github.com/snapform/snapform-api/internal/types"
	"gorm.io/datatypes"
)

func mirrorForm(sheetID *string) *models.Form {
	return &models.Form{
		ID:      uuid.New(),
		SheetID: sheetID,
		Fields: models.FieldList{
			{ID: "q", Type: models.FieldShortText, Label: "Question"},
		},
	}
}

func mirrorResponse() *models.Response {
	return &models.Response{
		ID:        uuid.New(),
		Data:      datatypes.NewJSONType(models.ResponseData{"q": types.String("yes")}),
		CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOnCommitAppendsRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_sheets.NewMockService(ctrl)
	svc.EXPECT().
		AppendRow(gomock.Any(), "sheet-1", []string{"2026-05-01T12:00:00Z", "N/A", "yes"}).
		Return(nil)

	sheetID := "sheet-1"
	m := &sheets.Mirror{Service: svc}
	m.OnCommit(context.Background(), mirrorForm(&sheetID), mirrorResponse())
}

func TestOnCommitSkipsFormsWithoutSheet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_sheets.NewMockService(ctrl)
	m := &sheets.Mirror{Service: svc}
	m.OnCommit(context.Background(), mirrorForm(nil), mirrorResponse())
}

func TestOnCommitSwallowsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_sheets.NewMockService(ctrl)
	svc.EXPECT().AppendRow(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("quota exceeded"))

	sheetID := "sheet-2"
	m := &sheets.Mirror{Service: svc}
	m.OnCommit(context.Background(), mirrorForm(&sheetID), mirrorResponse())
}

func TestMirrorReturnsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_sheets.NewMockService(ctrl)
	svc.EXPECT().AppendRow(gomock.Any(), "s", gomock.Any()).Return(errors.New("down"))

	m := &sheets.Mirror{Service: svc}
	err := m.Mirror(context.Background(), "s", sheets.Record{CreatedAt: time.Now()}, nil)
	if err == nil {
		t.Fatalf("expected error from Mirror")
	}
}
