// common.go
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
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/middleware"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/types"
	"github.com/snapform/snapform-api/internal/utils"
)

// ErrorHandler renders errors returned by handlers and middleware as the
// standard JSON error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		logging.WithField("url", c.OriginalURL()).Errorf("request failed: %v", err)
	}

	return utils.ErrorResponse(c, message, code, errorType)
}

// NotFound is the fallback for unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}

// serviceError maps a service sentinel to an HTTP error. Unrecognised
// errors become an opaque 500 and are logged by ErrorHandler.
func serviceError(err error, errorType string) error {
	switch {
	case errors.Is(err, services.ErrFormNotFound):
		return types.NewError(fiber.StatusNotFound, errorType, "Form not found")
	case errors.Is(err, services.ErrUserNotFound):
		return types.NewError(fiber.StatusNotFound, errorType, "User not found")
	case errors.Is(err, services.ErrForbidden):
		return types.NewError(fiber.StatusForbidden, errorType, "Forbidden")
	case errors.Is(err, services.ErrInvalidInput):
		return types.NewError(fiber.StatusBadRequest, errorType, "%s", err.Error())
	case errors.Is(err, services.ErrUsageUnavailable):
		return types.NewError(fiber.StatusServiceUnavailable, errorType, "Service temporarily unavailable, try again")
	}
	return &types.CustomError{
		Code:    fiber.StatusInternalServerError,
		Message: "Internal server error",
		Type:    errorType,
	}
}

// actor returns the authenticated caller or a 403.
func actor(c *fiber.Ctx, errorType string) (services.Actor, error) {
	a, ok := middleware.GetActor(c)
	if !ok {
		return services.Actor{}, types.NewError(fiber.StatusForbidden, errorType, "user not found in context")
	}
	return a, nil
}

// formID parses the :id route parameter. Malformed ids cannot name a form.
func formID(c *fiber.Ctx, errorType string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, types.NewError(fiber.StatusNotFound, errorType, "Form not found")
	}
	return id, nil
}

// page reads the page and limit query parameters.
func page(c *fiber.Ctx, errorType string) (services.Page, error) {
	p, err := services.NewPage(c.QueryInt("page", 0), c.QueryInt("limit", 0))
	if err != nil {
		return services.Page{}, types.NewError(fiber.StatusBadRequest, errorType, "%s", err.Error())
	}
	return p, nil
}

// bodyError reports an unparseable request body.
func bodyError(err error, errorType string) error {
	return types.NewError(fiber.StatusBadRequest, errorType, "Invalid request body: %v", err)
}
