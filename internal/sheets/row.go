// Package sheets mirrors committed responses into per-form spreadsheets.
package sheets

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/snapform/snapform-api/internal/models"
)

// ListSeparator joins list answers in a single cell. Option values may not
// contain it.
const ListSeparator = ", "

const noEmail = "N/A"

// Record is the part of a committed response written to a sheet.
type Record struct {
	CreatedAt time.Time
	Email     *string
	Data      models.ResponseData
}

// Header is the first sheet row: Timestamp, Email, then the label of each
// data field in form order.
func Header(fields models.FieldList) []string {
	labels := lo.Map(fields.DataFields(), func(f models.Field, _ int) string {
		return f.Label
	})
	return append([]string{"Timestamp", "Email"}, labels...)
}

// BuildRow renders rec as a sheet row aligned with Header(fields).
func BuildRow(rec Record, fields models.FieldList) []string {
	email := noEmail
	if rec.Email != nil && *rec.Email != "" {
		email = *rec.Email
	}

	values := lo.Map(fields.DataFields(), func(f models.Field, _ int) string {
		v, ok := rec.Data[f.ID]
		if !ok {
			return ""
		}
		return v.Text(ListSeparator)
	})

	return append([]string{rec.CreatedAt.UTC().Format(time.RFC3339), email}, values...)
}

// SplitRow parses a row produced by BuildRow back into its timestamp, email
// and per-field text. List answers stay joined since a value may itself
// contain the separator.
func SplitRow(row []string, fields models.FieldList) (time.Time, string, map[string]string, bool) {
	data := fields.DataFields()
	if len(row) != len(data)+2 {
		return time.Time{}, "", nil, false
	}
	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return time.Time{}, "", nil, false
	}
	values := make(map[string]string, len(data))
	for i, f := range data {
		values[f.ID] = row[i+2]
	}
	return ts, row[1], values, true
}

// SplitList breaks a joined list cell into its items.
func SplitList(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, ListSeparator)
}
