package domain

// TradeRequest is a fully validated inbound quote or execute request.
// Amount is in the source asset's smallest unit; the parser rejects
// fractions, signs, and overflow, so a constructed TradeRequest always
// carries an exact positive integer.
type TradeRequest struct {
	FromAsset     string
	ToAsset       string
	Amount        uint64
	CallerAddress string
}
