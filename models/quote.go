package models

// QuoteLine is one labeled entry in a cost breakdown.
type QuoteLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Quote is the pricing engine's output: an ordered list of labeled lines
// ending in a total. When PricePending is set at least one selected guide
// item has no assigned price yet; Total is meaningless and must not be
// charged. A pending quote is distinct from a genuine zero-cost total.
type Quote struct {
	Lines        []QuoteLine `json:"lines"`
	Total        float64     `json:"total"`
	Currency     string      `json:"currency"`
	PricePending bool        `json:"pricePending,omitempty"`
}
