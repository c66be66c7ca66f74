package testutil

import (
	"testing"

	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"gorm.io/gorm"
)

// CreateUser inserts an owner on tier.
func CreateUser(t testing.TB, db *gorm.DB, id, email string, tier plans.Tier) models.User {
	t.Helper()
	user := models.User{ID: id, Email: email, Role: models.RoleUser, Plan: string(tier)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateForm inserts a form owned by ownerID.
func CreateForm(t testing.TB, db *gorm.DB, ownerID string, published, requireEmail bool, fields models.FieldList) models.Form {
	t.Helper()
	form := models.Form{
		UserID:       ownerID,
		Title:        "Test form",
		Published:    published,
		RequireEmail: requireEmail,
		Fields:       fields,
	}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("failed to create form: %v", err)
	}
	return form
}
