package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/snapform/snapform-api/internal/config"
	"github.com/snapform/snapform-api/internal/database"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/testutil"
)

func TestDialectorSelection(t *testing.T) {
	cases := map[string]string{
		"mysql":       "mysql",
		"mariadb":     "mysql",
		"postgres":    "postgres",
		"sqlite":      "sqlite",
		"sqlite-pure": "sqlite",
		"sqlserver":   "sqlserver",
	}
	for dbType, name := range cases {
		cfg := &config.Config{DBType: dbType, DBHost: "localhost", DBPort: "1", DBDatabase: "snapform", DBUser: "u", DBPassword: "p"}
		d, err := database.Dialector(cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", dbType, err)
		}
		if d.Name() != name {
			t.Errorf("%s: expected dialector %s, got %s", dbType, name, d.Name())
		}
	}

	if _, err := database.Dialector(&config.Config{DBType: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestMigrateAndRollbackPureSQLite(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        filepath.Join(t.TempDir(), "snapform.db"),
		DBConnectionLimit: 5,
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// idempotent
	if err := database.Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, table := range []string{"users", "forms", "responses", "templates"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}

	var templates int64
	db.Model(&models.Template{}).Count(&templates)
	if templates == 0 {
		t.Fatal("expected starter templates")
	}

	if err := database.RollbackLast(db); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	db.Model(&models.Template{}).Count(&templates)
	if templates != 0 {
		t.Fatalf("expected starter templates removed, found %d", templates)
	}
	if !db.Migrator().HasTable("forms") {
		t.Fatal("rollback of the last migration must keep the schema")
	}
}

func TestMigrateOnServer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	for _, dbType := range []string{"postgres", "mysql"} {
		t.Run(dbType, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
			defer cancel()

			container, err := testutil.StartDatabase(ctx, dbType)
			if err != nil {
				t.Skipf("container runtime unavailable: %v", err)
			}
			defer func() {
				if err := container.Terminate(context.Background()); err != nil {
					t.Logf("Failed to terminate container: %v", err)
				}
			}()

			db, err := database.Connect(container.Config)
			if err != nil {
				t.Fatalf("connect: %v", err)
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				t.Fatalf("migrate: %v", err)
			}

			owner := testutil.CreateUser(t, db, "owner-1", "owner@example.com", plans.TierFree)
			form := testutil.CreateForm(t, db, owner.ID, true, false, models.FieldList{
				{ID: "name", Type: models.FieldShortText, Label: "Name"},
			})

			var found models.Form
			if err := db.First(&found, "id = ?", form.ID).Error; err != nil {
				t.Fatalf("read back form: %v", err)
			}
			if len(found.Fields) != 1 || found.Fields[0].ID != "name" {
				t.Fatalf("fields did not round trip: %+v", found.Fields)
			}
		})
	}
}
