package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/snapform/snapform-api/internal/models"
	"gorm.io/gorm"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202601100900_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Form{}, &models.Response{}, &models.Template{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("responses", "forms", "templates", "users")
			},
		},
		{
			ID: "202602031400_starter_templates",
			Migrate: func(tx *gorm.DB) error {
				templates := starterTemplates()
				return tx.Create(&templates).Error
			},
			Rollback: func(tx *gorm.DB) error {
				titles := make([]string, 0, 2)
				for _, t := range starterTemplates() {
					titles = append(titles, t.Title)
				}
				return tx.Where("title IN ?", titles).Delete(&models.Template{}).Error
			},
		},
	}
}

func starterTemplates() []models.Template {
	return []models.Template{
		{
			Title:       "Contact Form",
			Description: "Collect names and messages from visitors.",
			Category:    "general",
			IconSymbol:  "✉️",
			Featured:    true,
			Fields: models.FieldList{
				{ID: "name", Type: models.FieldShortText, Label: "Name", Required: true},
				{ID: "message", Type: models.FieldLongText, Label: "Message", Required: true},
			},
		},
		{
			Title:       "Event RSVP",
			Description: "Find out who is coming.",
			Category:    "events",
			IconSymbol:  "🎉",
			Fields: models.FieldList{
				{ID: "name", Type: models.FieldShortText, Label: "Name", Required: true},
				{ID: "attending", Type: models.FieldMultipleChoice, Label: "Will you attend?", Required: true, Options: []string{"Yes", "No", "Maybe"}},
				{ID: "details", Type: models.FieldSectionBreak, Label: "Details"},
				{ID: "diet", Type: models.FieldCheckboxes, Label: "Dietary needs", Options: []string{"Vegetarian", "Vegan", "Gluten free"}},
			},
		},
	}
}

// Migrate applies every pending schema migration
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).Migrate()
}

// RollbackLast reverts the most recently applied migration
func RollbackLast(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).RollbackLast()
}
