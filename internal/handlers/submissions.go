// submissions.go
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

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/utils"
)

const formNotFoundCode = "FORM_NOT_FOUND"

var rejectStatus = map[services.RejectCode]int{
	services.RejectFormNotPublished:     fiber.StatusForbidden,
	services.RejectInvalidResponseData:  fiber.StatusBadRequest,
	services.RejectEmailRequired:        fiber.StatusBadRequest,
	services.RejectResponseLimitReached: fiber.StatusTooManyRequests,
}

// SubmissionHandler accepts public form responses
type SubmissionHandler struct {
	Service *services.SubmissionService
}

// SubmitResponse handles POST /api/forms/:id/responses
// @Summary Submit a form response
// @Description Validate, admit and store one response to a published form
// @Tags Responses
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param submission body services.Submission true "Response payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /forms/{id}/responses [post]
func (h *SubmissionHandler) SubmitResponse(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RejectResponse(c, fiber.StatusNotFound, formNotFoundCode, "Form not found", nil)
	}

	var payload services.Submission
	if err := c.BodyParser(&payload); err != nil {
		return utils.RejectResponse(c, fiber.StatusBadRequest, string(services.RejectInvalidResponseData),
			"Invalid response data", nil)
	}

	meta := services.SubmissionMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referrer:  c.Get(fiber.HeaderReferer),
	}

	result, err := h.Service.SubmitResponse(c.UserContext(), id, payload, meta)
	switch {
	case errors.Is(err, services.ErrFormNotFound):
		return utils.RejectResponse(c, fiber.StatusNotFound, formNotFoundCode, "Form not found", nil)
	case errors.Is(err, services.ErrUsageUnavailable):
		return utils.ErrorResponse(c, "Unable to accept responses right now, try again", fiber.StatusServiceUnavailable, "submission")
	case err != nil:
		return utils.ErrorResponse(c, "Failed to submit response", fiber.StatusInternalServerError, "submission")
	}

	decision := result.Decision
	if !decision.Admitted {
		status, ok := rejectStatus[decision.Code]
		if !ok {
			status = fiber.StatusBadRequest
		}
		return utils.RejectResponse(c, status, string(decision.Code), decision.Message, decision.FieldErrors)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Response submitted successfully",
		"data": fiber.Map{
			"id":        result.Response.ID,
			"createdAt": result.Response.CreatedAt,
		},
	})
}
