package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/snapform/snapform-api/internal/handlers"
	"github.com/snapform/snapform-api/internal/middleware"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/testutil"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeSessions map[string]services.Identity

func (f fakeSessions) ValidateSession(cookie string) (*services.Identity, error) {
	id, ok := f[cookie]
	if !ok {
		return nil, fmt.Errorf("unknown session")
	}
	return &id, nil
}

var sessions = fakeSessions{
	"owner": {ID: "owner-1", Email: "owner@example.com", Name: "Owner"},
	"other": {ID: "other-1", Email: "other@example.com"},
	"root":  {ID: "root-1", Email: "root@example.com"},
}

var nameField = models.FieldList{
	{ID: "name", Type: models.FieldShortText, Label: "Name", Required: true},
}

// setupApp wires the api routes against a fresh SQLite database
func setupApp(t *testing.T, rateLimit int) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	roles := services.RoleResolver{SuperAdmins: []string{"root@example.com"}}
	forms := &services.FormService{DB: db}

	routes := &handlers.Routes{
		Auth:            &middleware.Authenticator{DB: db, Sessions: sessions, Roles: roles},
		Forms:           &handlers.FormHandler{Forms: forms},
		Submissions:     &handlers.SubmissionHandler{Service: services.NewSubmissionService(db, 5*time.Second, nil)},
		Admin:           &handlers.AdminHandler{DB: db, Forms: forms, Roles: roles},
		Templates:       &handlers.TemplateHandler{DB: db},
		SubmitRateLimit: rateLimit,
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api", middleware.VersionMiddleware())
	routes.Register(api)
	app.Use(handlers.NotFound)
	return app, db
}

// call executes a request and decodes the JSON body
func call(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", "cookie_session="+cookie)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			t.Fatalf("Failed to decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, result
}

func submitPath(id uuid.UUID) string {
	return "/api/forms/" + id.String() + "/responses"
}

func TestSubmitResponse(t *testing.T) {
	app, db := setupApp(t, 0)
	owner := testutil.CreateUser(t, db, "owner-1", "owner@example.com", plans.TierFree)
	form := testutil.CreateForm(t, db, owner.ID, true, false, nameField)

	status, body := call(t, app, "POST", submitPath(form.ID), map[string]interface{}{
		"data": map[string]interface{}{"name": "Ada"},
	}, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", status, body)
	}
	data, _ := body["data"].(map[string]interface{})
	if data["id"] == nil || data["id"] == "" {
		t.Errorf("Expected response id, got %v", body)
	}

	var stored models.Form
	db.First(&stored, "id = ?", form.ID)
	if stored.ResponseCount != 1 {
		t.Errorf("Expected response_count 1, got %d", stored.ResponseCount)
	}
}

func TestSubmitResponseRejections(t *testing.T) {
	app, db := setupApp(t, 0)
	owner := testutil.CreateUser(t, db, "owner-1", "owner@example.com", plans.TierFree)
	published := testutil.CreateForm(t, db, owner.ID, true, true, nameField)
	draft := testutil.CreateForm(t, db, owner.ID, false, false, nameField)

	cases := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"missing required field", submitPath(published.ID), map[string]interface{}{"email": "a@example.com", "data": map[string]interface{}{}}, 400, "INVALID_RESPONSE_DATA"},
		{"object value", submitPath(published.ID), map[string]interface{}{"email": "a@example.com", "data": map[string]interface{}{"name": map[string]string{"x": "y"}}}, 400, "INVALID_RESPONSE_DATA"},
		{"email required", submitPath(published.ID), map[string]interface{}{"data": map[string]interface{}{"name": "Ada"}}, 400, "EMAIL_REQUIRED"},
		{"not published", submitPath(draft.ID), map[string]interface{}{"data": map[string]interface{}{"name": "Ada"}}, 403, "FORM_NOT_PUBLISHED"},
		{"unknown form", submitPath(uuid.New()), map[string]interface{}{"data": map[string]interface{}{}}, 404, "FORM_NOT_FOUND"},
		{"malformed id", "/api/forms/not-a-uuid/responses", map[string]interface{}{"data": map[string]interface{}{}}, 404, "FORM_NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(t, app, "POST", tc.path, tc.body, "")
			if status != tc.status {
				t.Fatalf("Expected status %d, got %d: %v", tc.status, status, body)
			}
			if body["code"] != tc.code {
				t.Errorf("Expected code %s, got %v", tc.code, body["code"])
			}
			if body["ok"] != false {
				t.Errorf("Expected ok false, got %v", body["ok"])
			}
		})
	}

	status, body := call(t, app, "POST", submitPath(published.ID), map[string]interface{}{
		"email": "a@example.com",
		"data":  map[string]interface{}{},
	}, "")
	fieldErrors, _ := body["fieldErrors"].(map[string]interface{})
	if status != 400 || fieldErrors["name"] != "Name is required" {
		t.Errorf("Expected field error for name, got %d %v", status, body)
	}

	var count int64
	db.Model(&models.Response{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no stored responses, got %d", count)
	}
}

func TestSubmitResponseLimitReached(t *testing.T) {
	app, db := setupApp(t, 0)
	owner := testutil.CreateUser(t, db, "owner-1", "owner@example.com", plans.TierFree)
	form := testutil.CreateForm(t, db, owner.ID, true, false, nameField)

	limit := plans.LimitsFor(plans.TierFree).MaxResponsesPerMonth
	rows := make([]models.Response, limit)
	for i := range rows {
		rows[i] = models.Response{FormID: form.ID, Data: datatypes.NewJSONType(models.ResponseData{})}
	}
	if err := db.CreateInBatches(&rows, 50).Error; err != nil {
		t.Fatalf("Failed to seed responses: %v", err)
	}

	status, body := call(t, app, "POST", submitPath(form.ID), map[string]interface{}{
		"data": map[string]interface{}{"name": "Ada"},
	}, "")
	if status != fiber.StatusTooManyRequests || body["code"] != "RESPONSE_LIMIT_REACHED" {
		t.Fatalf("Expected 429 RESPONSE_LIMIT_REACHED, got %d %v", status, body)
	}
}

func TestSubmitRateLimit(t *testing.T) {
	app, db := setupApp(t, 2)
	form := testutil.CreateForm(t, db, "owner-1", true, false, nameField)
	payload := map[string]interface{}{"data": map[string]interface{}{"name": "Ada"}}

	for i := 0; i < 2; i++ {
		if status, body := call(t, app, "POST", submitPath(form.ID), payload, ""); status != fiber.StatusOK {
			t.Fatalf("Expected status 200, got %d: %v", status, body)
		}
	}
	status, body := call(t, app, "POST", submitPath(form.ID), payload, "")
	if status != fiber.StatusTooManyRequests || body["code"] != "RATE_LIMITED" {
		t.Fatalf("Expected 429 RATE_LIMITED, got %d %v", status, body)
	}
}

func TestFormRoutesRequireSession(t *testing.T) {
	app, _ := setupApp(t, 0)

	status, body := call(t, app, "GET", "/api/forms", nil, "")
	if status != fiber.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", status)
	}
	if body["type"] != "authorization.user" {
		t.Errorf("Expected authorization.user type, got %v", body["type"])
	}

	if status, _ := call(t, app, "GET", "/api/forms", nil, "forged"); status != fiber.StatusForbidden {
		t.Fatalf("Expected status 403 for invalid session, got %d", status)
	}
}

func TestFormLifecycle(t *testing.T) {
	app, db := setupApp(t, 0)

	status, body := call(t, app, "POST", "/api/forms", map[string]interface{}{
		"title":  "Feedback",
		"fields": nameField,
	}, "owner")
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, body)
	}
	created, _ := body["data"].(map[string]interface{})
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("Expected form id, got %v", body)
	}

	// first request created the user row
	var user models.User
	if err := db.First(&user, "id = ?", "owner-1").Error; err != nil {
		t.Fatalf("Expected user to be created: %v", err)
	}

	status, body = call(t, app, "PATCH", "/api/forms/"+id, map[string]interface{}{"published": true}, "owner")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", status, body)
	}

	if status, _ := call(t, app, "GET", "/api/forms/"+id, nil, "other"); status != fiber.StatusForbidden {
		t.Errorf("Expected status 403 for another user, got %d", status)
	}

	status, body = call(t, app, "GET", "/api/forms/"+id+"/public", nil, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 for public form, got %d: %v", status, body)
	}
	public, _ := body["data"].(map[string]interface{})
	if _, leaked := public["userId"]; leaked {
		t.Error("Public form must not expose the owner")
	}

	formUUID := uuid.MustParse(id)
	if status, body := call(t, app, "POST", submitPath(formUUID), map[string]interface{}{"email": "r@example.com", "data": map[string]interface{}{"name": "Ada"}}, ""); status != fiber.StatusOK {
		t.Fatalf("Expected submission accepted, got %d: %v", status, body)
	}

	status, body = call(t, app, "GET", "/api/forms/"+id+"/responses?page=1&limit=5", nil, "owner")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", status, body)
	}
	pagination, _ := body["pagination"].(map[string]interface{})
	if pagination["total"] != float64(1) || pagination["limit"] != float64(5) {
		t.Errorf("Unexpected pagination %v", pagination)
	}

	if status, _ := call(t, app, "GET", "/api/forms/"+id+"/responses?limit=500", nil, "owner"); status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for oversized limit, got %d", status)
	}

	status, body = call(t, app, "GET", "/api/forms/"+id+"/analytics?range=1W", nil, "owner")
	if status != fiber.StatusOK || body["totalResponses"] != float64(1) {
		t.Fatalf("Expected analytics with one response, got %d %v", status, body)
	}
	if buckets, _ := body["responsesByTime"].([]interface{}); len(buckets) != 7 {
		t.Errorf("Expected 7 buckets, got %d", len(buckets))
	}
	if status, _ := call(t, app, "GET", "/api/forms/"+id+"/analytics?range=2D", nil, "owner"); status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for bad range, got %d", status)
	}

	status, body = call(t, app, "GET", "/api/usage", nil, "owner")
	if status != fiber.StatusOK || body["tier"] != "FREE" || body["formsUsed"] != float64(1) || body["responsesThisMonth"] != float64(1) {
		t.Fatalf("Unexpected usage %d %v", status, body)
	}

	if status, _ := call(t, app, "DELETE", "/api/forms/"+id, nil, "other"); status != fiber.StatusForbidden {
		t.Errorf("Expected status 403 deleting another user's form, got %d", status)
	}
	if status, _ := call(t, app, "DELETE", "/api/forms/"+id, nil, "owner"); status != fiber.StatusOK {
		t.Fatalf("Expected status 200 on delete, got %d", status)
	}
	if status, _ := call(t, app, "GET", "/api/forms/"+id, nil, "owner"); status != fiber.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", status)
	}

	var responses int64
	db.Model(&models.Response{}).Where("form_id = ?", id).Count(&responses)
	if responses != 0 {
		t.Errorf("Expected responses deleted with the form, got %d", responses)
	}
}

func TestCreateFormLimit(t *testing.T) {
	app, _ := setupApp(t, 0)
	max := plans.LimitsFor(plans.TierFree).MaxForms

	for i := 0; i < max; i++ {
		if status, body := call(t, app, "POST", "/api/forms", map[string]interface{}{"title": fmt.Sprintf("Form %d", i)}, "owner"); status != fiber.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %v", status, body)
		}
	}
	status, body := call(t, app, "POST", "/api/forms", map[string]interface{}{"title": "One too many"}, "owner")
	if status != fiber.StatusForbidden || body["code"] != "FORM_LIMIT_REACHED" {
		t.Fatalf("Expected 403 FORM_LIMIT_REACHED, got %d %v", status, body)
	}

	if status, _ := call(t, app, "POST", "/api/forms", map[string]interface{}{"title": ""}, "other"); status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for empty title, got %d", status)
	}
}

func TestAdminRoutes(t *testing.T) {
	app, _ := setupApp(t, 0)

	if status, _ := call(t, app, "GET", "/api/admin/stats", nil, "owner"); status != fiber.StatusForbidden {
		t.Fatalf("Expected status 403 for a regular user, got %d", status)
	}

	status, body := call(t, app, "GET", "/api/admin/stats", nil, "root")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 for super admin, got %d: %v", status, body)
	}
	if body["totalUsers"] != float64(2) {
		t.Errorf("Expected 2 users, got %v", body["totalUsers"])
	}

	status, body = call(t, app, "PATCH", "/api/admin/users/owner-1/plan", map[string]string{"plan": "premium"}, "root")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", status, body)
	}
	user, _ := body["data"].(map[string]interface{})
	if user["plan"] != "PREMIUM" {
		t.Errorf("Expected PREMIUM plan, got %v", user["plan"])
	}

	if status, _ := call(t, app, "PATCH", "/api/admin/users/owner-1/plan", map[string]string{"plan": "gold"}, "root"); status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown plan, got %d", status)
	}

	status, body = call(t, app, "PATCH", "/api/admin/users/owner-1/role", map[string]string{"role": "ADMIN"}, "root")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", status, body)
	}

	// owner is now an admin but not a super admin
	if status, _ := call(t, app, "GET", "/api/admin/users", nil, "owner"); status != fiber.StatusOK {
		t.Errorf("Expected status 200 for admin, got %d", status)
	}
	if status, _ := call(t, app, "PATCH", "/api/admin/users/root-1/role", map[string]string{"role": "USER"}, "owner"); status != fiber.StatusForbidden {
		t.Errorf("Expected status 403 for role change by admin, got %d", status)
	}
	if status, _ := call(t, app, "PATCH", "/api/admin/users/missing/plan", map[string]string{"plan": "BUSINESS"}, "root"); status != fiber.StatusNotFound {
		t.Errorf("Expected status 404 for unknown user, got %d", status)
	}
}

func TestTemplateRoutes(t *testing.T) {
	app, _ := setupApp(t, 0)

	status, body := call(t, app, "GET", "/api/templates", nil, "")
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if list, _ := body["data"].([]interface{}); len(list) == 0 {
		t.Error("Expected starter templates")
	}

	tmpl := map[string]interface{}{"title": "Poll", "category": "fun", "fields": nameField}
	if status, _ := call(t, app, "POST", "/api/templates", tmpl, "owner"); status != fiber.StatusForbidden {
		t.Errorf("Expected status 403 for regular user, got %d", status)
	}
	if status, body := call(t, app, "POST", "/api/templates", tmpl, "root"); status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %v", status, body)
	}

	_, body = call(t, app, "GET", "/api/templates?category=fun", nil, "")
	if list, _ := body["data"].([]interface{}); len(list) != 1 {
		t.Errorf("Expected one template in category, got %v", body["data"])
	}
}

func TestVersionAndNotFound(t *testing.T) {
	app, _ := setupApp(t, 0)

	req := httptest.NewRequest("GET", "/api/templates", nil)
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for unsupported version, got %d", resp.StatusCode)
	}

	if status, body := call(t, app, "GET", "/nowhere", nil, ""); status != fiber.StatusNotFound || body["ok"] != false {
		t.Errorf("Expected 404 envelope, got %d %v", status, body)
	}
}
