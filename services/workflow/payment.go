package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"shipflow/models"
	"shipflow/services/bookingapi"

	"go.uber.org/zap"
)

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// depositFractions are the partial-payment schedules a customer may choose:
// half or seventy percent up front, or zero down with the balance collected
// on delivery.
var depositFractions = map[float64]bool{0.5: true, 0.7: true, 0: true}

// Settle drives the session's draft to a terminal payment state through the
// chosen channel. On success the draft is replaced by the Booking Service's
// authoritative response and all resumable state is cleared; on failure
// nothing local changes and the user may retry or switch channels.
func (s *DefaultWizardService) Settle(ctx context.Context, sessionID string, req models.SettlementRequest) (*models.SettlementResult, error) {
	ls, release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	state := ls.state
	if state.Draft.Finalized() {
		return nil, &PaymentError{Channel: string(req.Channel), Message: "draft is already settled"}
	}
	if state.CurrentStep() != StepPayment {
		return nil, &PaymentError{Channel: string(req.Channel), Message: fmt.Sprintf("settlement is not available on the %s step", state.CurrentStep())}
	}
	if !req.Channel.Valid() {
		return nil, &PaymentError{Channel: string(req.Channel), Message: "unknown settlement channel"}
	}

	quote, err := PriceDraft(&state.Draft, s.Rates)
	if err != nil {
		return nil, err
	}
	// A pending quote carries no chargeable amount: card and wallet cannot
	// collect it, bank transfer would instruct the customer to remit 0.00,
	// and a deposit fraction of an unknown total is meaningless. Only a
	// zero-deposit partial settlement may proceed; the balance is collected
	// once staff assign prices.
	if quote.PricePending && !(req.Channel == models.ChannelPartial && req.DepositFraction == 0) {
		return nil, &PaymentError{
			Channel: string(req.Channel),
			Message: "pricing is pending manual assignment; only a zero-deposit partial settlement is available",
		}
	}

	var result *models.SettlementResult
	switch req.Channel {
	case models.ChannelCard:
		result, err = s.settleCard(ctx, state, quote, req.Card)
	case models.ChannelWallet:
		result, err = s.settleWallet(ctx, state, quote)
	case models.ChannelBankTransfer:
		result, err = s.settleBankTransfer(ctx, state, quote)
	case models.ChannelPartial:
		result, err = s.settlePartial(ctx, state, quote, req.DepositFraction)
	}
	if err != nil {
		return nil, err
	}

	// The workflow is complete; the authoritative draft replaces ours and
	// the resumable state goes away.
	state.Draft = *result.Draft
	if err := s.Store.Clear(ctx, sessionID); err != nil {
		s.Logger.Warn("failed to clear settled wizard session", zap.String("sessionID", sessionID), zap.Error(err))
	}
	s.dropLive(sessionID)

	s.Logger.Info("booking settled",
		zap.String("sessionID", sessionID),
		zap.String("draftID", result.Draft.ID),
		zap.String("channel", string(req.Channel)),
		zap.String("status", string(result.Outcome.Status)),
		zap.Float64("amount", result.Outcome.Amount))
	return result, nil
}

// settleCard validates the card fields locally, then makes a single
// synchronous settlement call with status paid. No card data ever leaves
// the process.
func (s *DefaultWizardService) settleCard(ctx context.Context, state *SessionState, quote models.Quote, card *models.CardDetails) (*models.SettlementResult, error) {
	if err := validateCard(card); err != nil {
		return nil, err
	}
	return s.recordSettlement(ctx, state, bookingapi.PaymentPayload{
		Method:   string(models.ChannelCard),
		Amount:   quote.Total,
		Currency: quote.Currency,
		Status:   models.PaymentPaid,
	}, string(models.ChannelCard))
}

// settleWallet runs the two-phase wallet protocol: create an order with the
// provider, and only after the provider reports a completed capture settle
// internally with status paid. A cancelled or failed capture leaves the
// draft unsettled for retry.
func (s *DefaultWizardService) settleWallet(ctx context.Context, state *SessionState, quote models.Quote) (*models.SettlementResult, error) {
	desc := fmt.Sprintf("Shipment booking %s", state.Draft.TrackingNumber)
	order, err := s.Wallet.CreateOrder(ctx, quote.Total, quote.Currency, desc)
	if err != nil {
		return nil, &PaymentError{Channel: string(models.ChannelWallet), Message: "failed to create wallet order", Err: err}
	}

	captured, err := s.Wallet.ConfirmCapture(ctx, order.OrderID)
	if err != nil {
		return nil, &PaymentError{Channel: string(models.ChannelWallet), Message: "capture confirmation failed", Err: err}
	}
	if !captured {
		return nil, &PaymentError{Channel: string(models.ChannelWallet), Message: "wallet payment was not completed"}
	}

	result, err := s.recordSettlement(ctx, state, bookingapi.PaymentPayload{
		Method:   string(models.ChannelWallet),
		Amount:   quote.Total,
		Currency: quote.Currency,
		Status:   models.PaymentPaid,
	}, string(models.ChannelWallet))
	if err != nil {
		return nil, err
	}
	result.WalletOrder = order
	return result, nil
}

// settleBankTransfer records status pending immediately, with no provider
// interaction, and hands back static remittance instructions; confirmation
// is a manual back-office concern.
func (s *DefaultWizardService) settleBankTransfer(ctx context.Context, state *SessionState, quote models.Quote) (*models.SettlementResult, error) {
	result, err := s.recordSettlement(ctx, state, bookingapi.PaymentPayload{
		Method:   string(models.ChannelBankTransfer),
		Amount:   quote.Total,
		Currency: quote.Currency,
		Status:   models.PaymentPending,
	}, string(models.ChannelBankTransfer))
	if err != nil {
		return nil, err
	}
	result.Remittance = &models.RemittanceInstructions{
		AccountName: "ShipFlow Logistics Ltd",
		AccountNo:   "00412877665",
		BankName:    "First Continental Bank",
		Reference:   result.Draft.TrackingNumber,
		Amount:      quote.Total,
		Currency:    quote.Currency,
	}
	return result, nil
}

// settlePartial records a pending settlement for the chosen deposit
// fraction of the total; reconciling the remainder is out of scope here.
func (s *DefaultWizardService) settlePartial(ctx context.Context, state *SessionState, quote models.Quote, fraction float64) (*models.SettlementResult, error) {
	if !depositFractions[fraction] {
		return nil, &PaymentError{
			Channel: string(models.ChannelPartial),
			Message: fmt.Sprintf("unsupported deposit fraction %.2f", fraction),
		}
	}
	deposit := round2(quote.Total * fraction)
	return s.recordSettlement(ctx, state, bookingapi.PaymentPayload{
		Method:   string(models.ChannelPartial),
		Amount:   deposit,
		Currency: quote.Currency,
		Status:   models.PaymentPending,
	}, string(models.ChannelPartial))
}

func (s *DefaultWizardService) recordSettlement(ctx context.Context, state *SessionState, payload bookingapi.PaymentPayload, channel string) (*models.SettlementResult, error) {
	draft, err := s.API.UpdatePaymentStatus(ctx, state.Draft.ID, payload)
	if err != nil {
		return nil, &PaymentError{Channel: channel, Message: callMessage(err), Err: err}
	}
	return &models.SettlementResult{
		Draft: draft,
		Outcome: models.PaymentOutcome{
			Status:   payload.Status,
			Method:   payload.Method,
			Amount:   payload.Amount,
			Currency: payload.Currency,
		},
	}, nil
}

// validateCard checks the card fields before any network call: a 16-digit
// number ignoring formatting spaces, an MM/YY expiry, a 3-digit CVV, and a
// non-empty holder name.
func validateCard(card *models.CardDetails) error {
	verr := newValidationError()
	if card == nil {
		verr.add("card", "card details are required")
		return verr
	}
	digits := strings.ReplaceAll(card.Number, " ", "")
	if len(digits) != 16 || !allDigits(digits) {
		verr.add("card.number", "card number must be 16 digits")
	}
	if !expiryPattern.MatchString(card.Expiry) {
		verr.add("card.expiry", "expiry must be in MM/YY format")
	}
	if len(card.CVV) != 3 || !allDigits(card.CVV) {
		verr.add("card.cvv", "CVV must be 3 digits")
	}
	if strings.TrimSpace(card.Holder) == "" {
		verr.add("card.holder", "card holder name is required")
	}
	return verr.orNil()
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
