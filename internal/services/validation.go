package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/sheets"
	"github.com/snapform/snapform-api/internal/types"
)

// ValidateResponseData checks data against the form's field schema. It
// returns the values to persist, keyed by field id, and a map of field id
// to message for every violation. Keys that are unknown or belong to layout
// fields are dropped. Empty optional answers are dropped.
func ValidateResponseData(fields models.FieldList, data map[string]types.FieldValue) (models.ResponseData, map[string]string) {
	clean := make(models.ResponseData)
	problems := make(map[string]string)

	for _, field := range fields.DataFields() {
		value, ok := data[field.ID]
		if !ok || value.IsEmpty() {
			if field.Required {
				if field.Type == models.FieldCheckboxes {
					problems[field.ID] = fmt.Sprintf("Select at least one option for %s", field.Label)
				} else {
					problems[field.ID] = fmt.Sprintf("%s is required", field.Label)
				}
			}
			continue
		}

		if msg := checkValue(field, value); msg != "" {
			problems[field.ID] = msg
			continue
		}
		clean[field.ID] = value
	}

	return clean, problems
}

func checkValue(field models.Field, value types.FieldValue) string {
	switch field.Type {
	case models.FieldShortText, models.FieldLongText:
		if value.Kind != types.ValueString {
			return fmt.Sprintf("%s must be text", field.Label)
		}

	case models.FieldMultipleChoice, models.FieldDropdown:
		if value.Kind != types.ValueString {
			return fmt.Sprintf("%s must be a single option", field.Label)
		}
		if len(field.Options) > 0 && !lo.Contains(field.Options, value.Str) {
			return fmt.Sprintf("%s must be one of the listed options", field.Label)
		}

	case models.FieldCheckboxes:
		if value.Kind != types.ValueList {
			return fmt.Sprintf("%s must be a list of options", field.Label)
		}
		if lo.SomeBy(value.List, func(item string) bool {
			return strings.TrimSpace(item) == "" || strings.Contains(item, sheets.ListSeparator)
		}) {
			return fmt.Sprintf("%s has an invalid option", field.Label)
		}
		if len(field.Options) > 0 && !lo.Every(field.Options, value.List) {
			return fmt.Sprintf("%s must only contain the listed options", field.Label)
		}

	case models.FieldImage, models.FieldFileUpload:
		if value.Kind != types.ValueString || !isFileURL(value.Str) {
			return "Invalid file URL"
		}

	default:
		return fmt.Sprintf("%s has an unsupported field type", field.Label)
	}
	return ""
}

func isFileURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ValidateFieldSchema checks the field definitions an owner submits for a
// form or template.
func ValidateFieldSchema(fields models.FieldList) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("%w: field %d has no id", ErrInvalidInput, i)
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: duplicate field id %q", ErrInvalidInput, f.ID)
		}
		seen[f.ID] = true
		if !f.Type.Valid() {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidInput, f.ID, f.Type)
		}
		if !f.Type.IsLayout() && strings.TrimSpace(f.Label) == "" {
			return fmt.Errorf("%w: field %q needs a label", ErrInvalidInput, f.ID)
		}
		for _, opt := range f.Options {
			if strings.TrimSpace(opt) == "" || strings.Contains(opt, sheets.ListSeparator) {
				return fmt.Errorf("%w: field %q has an invalid option %q", ErrInvalidInput, f.ID, opt)
			}
		}
	}
	return nil
}
