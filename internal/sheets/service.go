package sheets

import "context"

//go:generate mockgen -destination=mock_sheets/mock_service.go -package=mock_sheets github.com/snapform/snapform-api/internal/sheets Service

// Spreadsheet identifies a created spreadsheet.
type Spreadsheet struct {
	ID  string
	URL string
}

// Service is the external spreadsheet provider.
type Service interface {
	CreateSpreadsheet(ctx context.Context, title string, header []string) (Spreadsheet, error)
	WriteHeader(ctx context.Context, spreadsheetID string, header []string) error
	AppendRow(ctx context.Context, spreadsheetID string, row []string) error
	Share(ctx context.Context, spreadsheetID, email string) error
	Delete(ctx context.Context, spreadsheetID string) error
}
