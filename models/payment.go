package models

// SettlementChannel is the mechanism by which a computed cost is paid or
// scheduled.
type SettlementChannel string

const (
	ChannelCard         SettlementChannel = "card"
	ChannelWallet       SettlementChannel = "wallet"
	ChannelBankTransfer SettlementChannel = "bank_transfer"
	ChannelPartial      SettlementChannel = "partial"
)

func (c SettlementChannel) Valid() bool {
	switch c {
	case ChannelCard, ChannelWallet, ChannelBankTransfer, ChannelPartial:
		return true
	}
	return false
}

// CardDetails are validated locally before any network call is made.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"` // MM/YY
	CVV    string `json:"cvv"`
	Holder string `json:"holder"`
}

// SettlementRequest is the customer's channel choice plus channel-specific
// inputs.
type SettlementRequest struct {
	Channel SettlementChannel `json:"channel"`
	Card    *CardDetails      `json:"card,omitempty"`
	// DepositFraction applies to the partial channel: 0.5, 0.7, or 0 for
	// pay-in-full on delivery.
	DepositFraction float64 `json:"depositFraction,omitempty"`
}

// WalletOrder is an order created with the external wallet provider.
type WalletOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

// RemittanceInstructions are shown for the bank transfer channel; the
// tracking number must be quoted as the payment reference.
type RemittanceInstructions struct {
	AccountName string  `json:"accountName"`
	AccountNo   string  `json:"accountNo"`
	BankName    string  `json:"bankName"`
	Reference   string  `json:"reference"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

// SettlementResult is returned to the caller after a settlement attempt.
type SettlementResult struct {
	Draft       *BookingDraft           `json:"draft"`
	Outcome     PaymentOutcome          `json:"outcome"`
	Remittance  *RemittanceInstructions `json:"remittance,omitempty"`
	WalletOrder *WalletOrder            `json:"walletOrder,omitempty"`
}
