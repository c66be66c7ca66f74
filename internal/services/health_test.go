package services

import (
	"context"
	"testing"

	"github.com/snapform/snapform-api/internal/config"
	"github.com/snapform/snapform-api/internal/testutil"
)

func TestHealthCheckUnreachableAuthorizer(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: "test.db", AuthzURL: "http://127.0.0.1:1"}

	result := HealthCheck(context.Background(), cfg, db)
	if result.Database != "ok" {
		t.Fatalf("expected database ok, got %q", result.Database)
	}
	if result.Authorizer != "unreachable" || result.Status != "unhealthy" {
		t.Fatalf("expected unreachable authorizer, got %+v", result)
	}
}
