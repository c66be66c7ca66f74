package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/plans"
	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/webhook"
	"gorm.io/gorm"
)

var (
	ErrBadSignature = errors.New("invalid webhook signature")
	ErrBadEvent     = errors.New("invalid webhook event")
)

const checkoutCompleted = "checkout.session.completed"

// BillingService applies Stripe checkout results to user plans.
type BillingService struct {
	DB            *gorm.DB
	WebhookSecret string
	// PriceTiers maps Stripe price ids to the tier they buy.
	PriceTiers map[string]plans.Tier
}

// HandleWebhook verifies payload against the Stripe-Signature header and
// upgrades the purchasing user. Events other than completed checkouts are
// acknowledged and ignored.
func (b *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, b.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if event.Type != checkoutCompleted {
		return nil
	}
	return b.handleCheckoutSessionCompleted(ctx, event)
}

func (b *BillingService) handleCheckoutSessionCompleted(ctx context.Context, event stripe.Event) error {
	if event.Data == nil {
		return fmt.Errorf("%w: event has no data", ErrBadEvent)
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("%w: error unmarshaling into CheckoutSession: %v", ErrBadEvent, err)
	}
	if session.ClientReferenceID == "" {
		return fmt.Errorf("%w: client reference ID not found in CheckoutSession", ErrBadEvent)
	}

	tier, err := b.tierFor(session.Metadata)
	if err != nil {
		return err
	}
	if _, err := SetUserPlan(ctx, b.DB, session.ClientReferenceID, tier); err != nil {
		return err
	}
	logging.WithField("owner_id", session.ClientReferenceID).Infof("plan changed to %s", tier)
	return nil
}

func (b *BillingService) tierFor(metadata map[string]string) (plans.Tier, error) {
	if plan := metadata["plan"]; plan != "" {
		tier, err := plans.ParseTier(plan)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadEvent, err)
		}
		if !tier.Upgradeable() {
			return "", fmt.Errorf("%w: plan %s cannot be purchased", ErrBadEvent, tier)
		}
		return tier, nil
	}
	if price := strings.TrimSpace(metadata["price_id"]); price != "" {
		if tier, ok := b.PriceTiers[price]; ok {
			return tier, nil
		}
	}
	return "", fmt.Errorf("%w: checkout does not name a plan", ErrBadEvent)
}
