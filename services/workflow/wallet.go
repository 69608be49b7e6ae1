package workflow

import (
	"context"
	"fmt"
	"math"
	"strings"

	"shipflow/models"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// WalletProvider is the external third-party wallet protocol: create an
// order carrying the computed amount, then confirm the capture completed
// before any internal settlement proceeds.
type WalletProvider interface {
	CreateOrder(ctx context.Context, amount float64, currency, description string) (*models.WalletOrder, error)
	ConfirmCapture(ctx context.Context, orderID string) (bool, error)
}

// StripeWalletProvider backs the wallet channel with Stripe PaymentIntents.
// The global stripe key is set once at startup.
type StripeWalletProvider struct {
	Logger *zap.Logger
}

func NewStripeWalletProvider(logger *zap.Logger) *StripeWalletProvider {
	return &StripeWalletProvider{Logger: logger}
}

func (p *StripeWalletProvider) CreateOrder(ctx context.Context, amount float64, currency, description string) (*models.WalletOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toMinorUnits(amount)),
		Currency:    stripe.String(strings.ToLower(currency)),
		Description: stripe.String(description),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	p.Logger.Info("wallet order created",
		zap.String("intentID", intent.ID),
		zap.Float64("amount", amount),
		zap.String("currency", currency))
	return &models.WalletOrder{
		OrderID:  intent.ID,
		Amount:   amount,
		Currency: currency,
		Status:   string(intent.Status),
	}, nil
}

// ConfirmCapture reports whether the provider has completed the capture for
// an order. Anything other than a succeeded intent leaves the draft
// unsettled.
func (p *StripeWalletProvider) ConfirmCapture(ctx context.Context, orderID string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := paymentintent.Get(orderID, params)
	if err != nil {
		return false, fmt.Errorf("failed to fetch payment intent %s: %w", orderID, err)
	}
	return intent.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// toMinorUnits converts a major-unit amount to the minor units Stripe
// expects (e.g. dollars to cents).
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
