package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/snapform/snapform-api/internal/models"
	"gorm.io/gorm"
)

type TemplateInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	IconSymbol  string           `json:"iconSymbol"`
	Fields      models.FieldList `json:"fields"`
	Featured    bool             `json:"featured"`
}

// ListTemplates returns templates, featured first. A non-empty category
// filters the list.
func ListTemplates(ctx context.Context, db *gorm.DB, category string) ([]models.Template, error) {
	q := db.WithContext(ctx).Order("featured DESC").Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var templates []models.Template
	err := q.Find(&templates).Error
	return templates, err
}

// CreateTemplate stores a new template.
func CreateTemplate(ctx context.Context, db *gorm.DB, in TemplateInput) (*models.Template, error) {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: template title is required", ErrInvalidInput)
	case utf8.RuneCountInString(title) > 200:
		return nil, fmt.Errorf("%w: title too long", ErrInvalidInput)
	case utf8.RuneCountInString(in.Description) > 1000:
		return nil, fmt.Errorf("%w: description too long", ErrInvalidInput)
	case utf8.RuneCountInString(in.Category) > 50:
		return nil, fmt.Errorf("%w: category too long", ErrInvalidInput)
	case utf8.RuneCountInString(in.IconSymbol) > 10:
		return nil, fmt.Errorf("%w: icon symbol too long", ErrInvalidInput)
	case len(in.Fields) == 0:
		return nil, fmt.Errorf("%w: template must have at least one field", ErrInvalidInput)
	}
	if err := ValidateFieldSchema(in.Fields); err != nil {
		return nil, err
	}

	t := models.Template{
		Title:       title,
		Description: in.Description,
		Category:    in.Category,
		IconSymbol:  in.IconSymbol,
		Fields:      in.Fields,
		Featured:    in.Featured,
	}
	if err := db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
