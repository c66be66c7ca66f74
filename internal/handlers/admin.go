// admin.go
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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/types"
	"github.com/snapform/snapform-api/internal/utils"
	"gorm.io/gorm"
)

// AdminHandler handles administrator routes
type AdminHandler struct {
	DB    *gorm.DB
	Forms *services.FormService
	Roles services.RoleResolver
}

// GetStats handles GET /api/admin/stats
// @Summary System statistics
// @Description Totals of users, forms and responses, and today's activity
// @Tags Admin
// @Produce json
// @Success 200 {object} services.AdminStats
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := services.GetAdminStats(c.UserContext(), h.DB, time.Now())
	if err != nil {
		return serviceError(err, "getStats")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Tags Admin
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	const errorType = "listUsers"
	p, err := page(c, errorType)
	if err != nil {
		return err
	}
	users, pagination, err := services.ListUsers(c.UserContext(), h.DB, p)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.PaginatedResponse(c, users, pagination)
}

// ListForms handles GET /api/admin/forms
// @Summary List all forms
// @Tags Admin
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/forms [get]
func (h *AdminHandler) ListForms(c *fiber.Ctx) error {
	const errorType = "listAllForms"
	p, err := page(c, errorType)
	if err != nil {
		return err
	}
	forms, pagination, err := h.Forms.ListAll(c.UserContext(), p)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.PaginatedResponse(c, forms, pagination)
}

type planRequest struct {
	Plan string `json:"plan"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// SetUserPlan handles PATCH /api/admin/users/:id/plan
// @Summary Change a user's plan
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param plan body planRequest true "FREE, PREMIUM or BUSINESS"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{id}/plan [patch]
func (h *AdminHandler) SetUserPlan(c *fiber.Ctx) error {
	const errorType = "setUserPlan"
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err, errorType)
	}
	tier, err := plans.ParseTier(req.Plan)
	if err != nil {
		return types.NewError(fiber.StatusBadRequest, errorType, "%v", err)
	}

	user, err := services.SetUserPlan(c.UserContext(), h.DB, c.Params("id"), tier)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// SetUserRole handles PATCH /api/admin/users/:id/role
// @Summary Change a user's role
// @Description Super administrators only
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body roleRequest true "USER, ADMIN or SUPER_ADMIN"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) SetUserRole(c *fiber.Ctx) error {
	const errorType = "setUserRole"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err, errorType)
	}

	user, err := services.SetUserRole(c.UserContext(), h.DB, h.Roles, a, c.Params("id"), models.Role(req.Role))
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}
