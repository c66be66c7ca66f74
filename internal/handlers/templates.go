// templates.go
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
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/utils"
	"gorm.io/gorm"
)

// TemplateHandler handles form template routes
type TemplateHandler struct {
	DB *gorm.DB
}

// ListTemplates handles GET /api/templates
// @Summary List templates
// @Tags Templates
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} map[string]interface{}
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := services.ListTemplates(c.UserContext(), h.DB, c.Query("category"))
	if err != nil {
		return serviceError(err, "listTemplates")
	}
	return utils.SuccessResponse(c, templates, fiber.StatusOK)
}

// CreateTemplate handles POST /api/templates
// @Summary Create a template
// @Description Administrators only
// @Tags Templates
// @Accept json
// @Produce json
// @Param template body services.TemplateInput true "Template"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(c *fiber.Ctx) error {
	const errorType = "createTemplate"
	var in services.TemplateInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(err, errorType)
	}
	t, err := services.CreateTemplate(c.UserContext(), h.DB, in)
	if err != nil {
		return serviceError(err, errorType)
	}
	return utils.SuccessResponse(c, t, fiber.StatusCreated)
}
