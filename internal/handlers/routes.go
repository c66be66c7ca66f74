// routes.go
//
// Form builder and response collection service with plan-gated submissions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of snapform-api.
// snapform-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// snapform-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with snapform-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/snapform/snapform-api/internal/middleware"
)

// Routes are the handlers mounted under /api. Billing and Health may be nil.
type Routes struct {
	Auth            *middleware.Authenticator
	Forms           *FormHandler
	Submissions     *SubmissionHandler
	Admin           *AdminHandler
	Templates       *TemplateHandler
	Billing         *BillingHandler
	Health          *HealthHandler
	SubmitRateLimit int
}

// Register mounts every route on api
func (r *Routes) Register(api fiber.Router) {
	if r.Health != nil {
		api.Get("/health", r.Health.GetHealth)
	}

	// Public routes
	api.Get("/templates", r.Templates.ListTemplates)
	api.Get("/forms/:id/public", r.Forms.GetPublicForm)
	api.Post("/forms/:id/responses", middleware.SubmissionRateLimit(r.SubmitRateLimit), r.Submissions.SubmitResponse)
	if r.Billing != nil {
		api.Post("/billing/webhook", r.Billing.StripeWebhook)
	}

	// Owner routes
	user := r.Auth.AuthUser()
	api.Get("/usage", user, r.Forms.GetUsage)
	api.Get("/forms", user, r.Forms.ListForms)
	api.Post("/forms", user, r.Forms.CreateForm)
	api.Get("/forms/:id", user, r.Forms.GetForm)
	api.Patch("/forms/:id", user, r.Forms.UpdateForm)
	api.Delete("/forms/:id", user, r.Forms.DeleteForm)
	api.Get("/forms/:id/responses", user, r.Forms.ListResponses)
	api.Get("/forms/:id/analytics", user, r.Forms.GetAnalytics)

	// Admin routes
	admin := r.Auth.AuthAdmin()
	api.Post("/templates", admin, r.Templates.CreateTemplate)
	adminGroup := api.Group("/admin", admin)
	adminGroup.Get("/stats", r.Admin.GetStats)
	adminGroup.Get("/users", r.Admin.ListUsers)
	adminGroup.Get("/forms", r.Admin.ListForms)
	adminGroup.Patch("/users/:id/plan", r.Admin.SetUserPlan)
	adminGroup.Patch("/users/:id/role", r.Admin.SetUserRole)
}
