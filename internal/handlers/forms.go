// forms.go
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
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/utils"
)

// FormHandler handles owner form routes
type FormHandler struct {
	Forms *services.FormService
}

// ListForms handles GET /api/forms
// @Summary List forms
// @Description List the caller's forms, most recently updated first
// @Tags Forms
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /forms [get]
func (h *FormHandler) ListForms(c *fiber.Ctx) error {
	const errorType = "listForms"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}
	p, err := page(c, errorType)
	if err != nil {
		return err
	}

	forms, pagination, err := h.Forms.List(c.UserContext(), a.ID, p)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.PaginatedResponse(c, forms, pagination)
}

// CreateForm handles POST /api/forms
// @Summary Create a form
// @Description Create a form. Free plans are limited in the number of forms.
// @Tags Forms
// @Accept json
// @Produce json
// @Param form body services.FormInput true "Form"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *fiber.Ctx) error {
	const errorType = "createForm"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}

	var in services.FormInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err, errorType)
	}

	form, err := h.Forms.Create(c.UserContext(), a, in)
	if errors.Is(err, services.ErrFormLimitReached) {
		return utils.RejectResponse(c, fiber.StatusForbidden, "FORM_LIMIT_REACHED",
			"Form limit reached for your plan. Upgrade to create more forms.", nil)
	}
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.SuccessResponse(c, form, fiber.StatusCreated)
}

// GetForm handles GET /api/forms/:id
// @Summary Get a form
// @Description Get a form the caller owns, or any form for administrators
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *fiber.Ctx) error {
	const errorType = "getForm"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}
	id, err := formID(c, errorType)
	if err != nil {
		return err
	}

	form, err := h.Forms.Get(c.UserContext(), a, id)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.SuccessResponse(c, form, fiber.StatusOK)
}

// GetPublicForm handles GET /api/forms/:id/public
// @Summary Get a published form
// @Description Get a published form for respondents. Counts a view.
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /forms/{id}/public [get]
func (h *FormHandler) GetPublicForm(c *fiber.Ctx) error {
	const errorType = "getPublicForm"
	id, err := formID(c, errorType)
	if err != nil {
		return err
	}

	form, err := h.Forms.GetPublic(c.UserContext(), id)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"id":           form.ID,
		"title":        form.Title,
		"description":  form.Description,
		"coverUrl":     form.CoverURL,
		"iconSymbol":   form.IconSymbol,
		"requireEmail": form.RequireEmail,
		"fields":       form.Fields,
	}, fiber.StatusOK)
}

// UpdateForm handles PATCH /api/forms/:id
// @Summary Update a form
// @Description Update the given attributes of a form
// @Tags Forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param form body services.FormInput true "Changed attributes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /forms/{id} [patch]
func (h *FormHandler) UpdateForm(c *fiber.Ctx) error {
	const errorType = "updateForm"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}
	id, err := formID(c, errorType)
	if err != nil {
		return err
	}

	var in services.FormInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err, errorType)
	}

	form, err := h.Forms.Update(c.UserContext(), a, id, in)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.SuccessResponse(c, form, fiber.StatusOK)
}

// DeleteForm handles DELETE /api/forms/:id
// @Summary Delete a form
// @Description Delete a form and all of its responses. Owner only.
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *fiber.Ctx) error {
	const errorType = "deleteForm"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}
	id, err := formID(c, errorType)
	if err != nil {
		return err
	}

	if err := h.Forms.Delete(c.UserContext(), a, id); err != nil {
		return serviceError(err, errorType)
	}
	return utils.MutationSuccessResponse(c, "Form deleted")
}

// ListResponses handles GET /api/forms/:id/responses
// @Summary List form responses
// @Description List a form's responses, newest first
// @Tags Responses
// @Produce json
// @Param id path string true "Form ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /forms/{id}/responses [get]
func (h *FormHandler) ListResponses(c *fiber.Ctx) error {
	const errorType = "listResponses"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}
	id, err := formID(c, errorType)
	if err != nil {
		return err
	}
	p, err := page(c, errorType)
	if err != nil {
		return err
	}

	responses, pagination, err := h.Forms.ListResponses(c.UserContext(), a, id, p)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.PaginatedResponse(c, responses, pagination)
}

// GetAnalytics handles GET /api/forms/:id/analytics?range=1W|1M|1Y
// @Summary Form analytics
// @Description Response totals, time buckets and recent submissions
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Param range query string false "1W, 1M (default) or 1Y"
// @Success 200 {object} services.Analytics
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /forms/{id}/analytics [get]
func (h *FormHandler) GetAnalytics(c *fiber.Ctx) error {
	const errorType = "getAnalytics"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}
	id, err := formID(c, errorType)
	if err != nil {
		return err
	}
	r, err := services.ParseTimeRange(c.Query("range"))
	if err != nil {
		return serviceError(err, errorType)
	}

	analytics, err := h.Forms.Analytics(c.UserContext(), a, id, r, time.Now())
	if err != nil {
		return serviceError(err, errorType)
	}
	return c.Status(fiber.StatusOK).JSON(analytics)
}

// GetUsage handles GET /api/usage
// @Summary Plan usage
// @Description The caller's plan, its limits and current consumption
// @Tags Forms
// @Produce json
// @Success 200 {object} services.UsageSummary
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /usage [get]
func (h *FormHandler) GetUsage(c *fiber.Ctx) error {
	const errorType = "getUsage"
	a, err := actor(c, errorType)
	if err != nil {
		return err
	}

	summary, err := services.GetUsageSummary(c.UserContext(), h.Forms.DB, a.ID, time.Now())
	if err != nil {
		return serviceError(err, errorType)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
