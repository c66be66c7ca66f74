// billing.go
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
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/types"
)

// BillingHandler receives payment provider webhooks
type BillingHandler struct {
	Billing *services.BillingService
}

// StripeWebhook handles POST /api/billing/webhook
// @Summary Stripe webhook
// @Description Applies completed checkouts to user plans
// @Tags Billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /billing/webhook [post]
func (h *BillingHandler) StripeWebhook(c *fiber.Ctx) error {
	const errorType = "billingWebhook"
	err := h.Billing.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, services.ErrBadSignature):
		return types.NewError(fiber.StatusBadRequest, errorType, "Invalid signature")
	case errors.Is(err, services.ErrBadEvent):
		logging.Warnf("Rejected billing event: %v", err)
		return types.NewError(fiber.StatusBadRequest, errorType, "%v", err)
	case err != nil:
		return serviceError(err, errorType)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
