package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/testutil"
	"github.com/snapform/snapform-api/internal/types"
)

type stubSessions struct {
	identity *services.Identity
}

func (s stubSessions) ValidateSession(cookie string) (*services.Identity, error) {
	if s.identity == nil {
		return nil, errors.New("expired")
	}
	return s.identity, nil
}

func testApp(a *Authenticator, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/", guard, func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(string(actor.Role))
	})
	return app
}

func get(t *testing.T, app *fiber.App, cookie string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if cookie != "" {
		req.Header.Set("Cookie", "cookie_session="+cookie)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	identity := &services.Identity{ID: "u1", Email: "Boss@Example.com"}
	a := &Authenticator{DB: db, Sessions: stubSessions{identity}, Roles: services.RoleResolver{SuperAdmins: []string{"boss@example.com"}}}
	app := testApp(a, a.AuthUser())

	if status, body := get(t, app, ""); status != fiber.StatusForbidden || body != "authorization.user" {
		t.Fatalf("Expected 403 without cookie, got %d %q", status, body)
	}

	status, body := get(t, app, "abc")
	if status != fiber.StatusOK || body != string(models.RoleSuperAdmin) {
		t.Fatalf("Expected promoted super admin, got %d %q", status, body)
	}

	var user models.User
	if err := db.First(&user, "id = ?", "u1").Error; err != nil {
		t.Fatalf("Expected user row: %v", err)
	}
	if user.Email != "boss@example.com" {
		t.Errorf("Expected lowercased email, got %s", user.Email)
	}
}

func TestAuthUserInvalidSession(t *testing.T) {
	a := &Authenticator{DB: testutil.NewSQLiteDB(t), Sessions: stubSessions{}}
	app := testApp(a, a.AuthUser())

	if status, _ := get(t, app, "stale"); status != fiber.StatusForbidden {
		t.Fatalf("Expected 403 for invalid session, got %d", status)
	}
}

func TestAuthAdmin(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := &Authenticator{DB: db, Sessions: stubSessions{&services.Identity{ID: "u2", Email: "user@example.com"}}}
	app := testApp(a, a.AuthAdmin())

	if status, body := get(t, app, "abc"); status != fiber.StatusForbidden || body != "authorization.admin" {
		t.Fatalf("Expected 403 for a regular user, got %d %q", status, body)
	}

	if err := db.Model(&models.User{}).Where("id = ?", "u2").Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}
	if status, body := get(t, app, "abc"); status != fiber.StatusOK || body != string(models.RoleAdmin) {
		t.Fatalf("Expected admin access, got %d %q", status, body)
	}
}
