package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const responsesTab = "Responses"

// GoogleService talks to Google Sheets and Drive with a service account.
type GoogleService struct {
	sheets *sheetsapi.Service
	drive  *drive.Service
}

// NewGoogleService authenticates with the service account key in credentialsFile.
func NewGoogleService(ctx context.Context, credentialsFile string) (*GoogleService, error) {
	opts := []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope, drive.DriveFileScope),
	}
	return NewGoogleServiceWithOptions(ctx, opts...)
}

// NewGoogleServiceWithOptions builds the clients from arbitrary options,
// e.g. an endpoint and HTTP client in tests.
func NewGoogleServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*GoogleService, error) {
	ss, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	ds, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return &GoogleService{sheets: ss, drive: ds}, nil
}

func (g *GoogleService) CreateSpreadsheet(ctx context.Context, title string, header []string) (Spreadsheet, error) {
	created, err := g.sheets.Spreadsheets.Create(&sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: title + " - Responses"},
		Sheets: []*sheetsapi.Sheet{{
			Properties: &sheetsapi.SheetProperties{
				SheetId:        0,
				Title:          responsesTab,
				GridProperties: &sheetsapi.GridProperties{FrozenRowCount: 1},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return Spreadsheet{}, err
	}

	if err := g.WriteHeader(ctx, created.SpreadsheetId, header); err != nil {
		return Spreadsheet{}, err
	}

	_, err = g.sheets.Spreadsheets.BatchUpdate(created.SpreadsheetId, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: &sheetsapi.GridRange{SheetId: 0, StartRowIndex: 0, EndRowIndex: 1},
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						BackgroundColor: &sheetsapi.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
						TextFormat:      &sheetsapi.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return Spreadsheet{}, err
	}

	return Spreadsheet{ID: created.SpreadsheetId, URL: created.SpreadsheetUrl}, nil
}

func (g *GoogleService) WriteHeader(ctx context.Context, spreadsheetID string, header []string) error {
	_, err := g.sheets.Spreadsheets.Values.Update(spreadsheetID, responsesTab+"!A1", &sheetsapi.ValueRange{
		Values: [][]interface{}{toCells(header)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *GoogleService) AppendRow(ctx context.Context, spreadsheetID string, row []string) error {
	_, err := g.sheets.Spreadsheets.Values.Append(spreadsheetID, responsesTab+"!A:A", &sheetsapi.ValueRange{
		Values: [][]interface{}{toCells(row)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *GoogleService) Share(ctx context.Context, spreadsheetID, email string) error {
	_, err := g.drive.Permissions.Create(spreadsheetID, &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: email,
	}).SendNotificationEmail(false).Context(ctx).Do()
	return err
}

func (g *GoogleService) Delete(ctx context.Context, spreadsheetID string) error {
	return g.drive.Files.Delete(spreadsheetID).Context(ctx).Do()
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
