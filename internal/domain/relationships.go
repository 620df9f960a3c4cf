package domain

import "github.com/shopspring/decimal"

// Direction is relative to the analyzed address.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// TransferSample is a reported direct transfer between two analyzed addresses.
type TransferSample struct {
	Hash        string          `json:"hash"`
	Amount      decimal.Decimal `json:"amount"`
	TokenSymbol string          `json:"tokenSymbol"`
	Timestamp   int64           `json:"timestamp"`
}

// DirectLinkResult summarizes transfers sent straight between a pair.
type DirectLinkResult struct {
	Exists          bool             `json:"exists"`
	Count           int              `json:"count"`
	TransfersAtoB   []TransferSample `json:"transfersAtoB"`
	TransfersBtoA   []TransferSample `json:"transfersBtoA"`
	TotalAmountAtoB decimal.Decimal  `json:"totalAmountAtoB"`
	TotalAmountBtoA decimal.Decimal  `json:"totalAmountBtoA"`
}

// IndirectPath is a two-hop link through a shared counterparty.
type IndirectPath struct {
	MiddleAddress   string          `json:"middleAddress"`
	TimeDiffSeconds int64           `json:"timeDiffSeconds"`
	HumanTimeDiff   string          `json:"humanTimeDiff"`
	DirectionA      Direction       `json:"directionA"`
	DirectionB      Direction       `json:"directionB"`
	AmountA         decimal.Decimal `json:"amountA"`
	AmountB         decimal.Decimal `json:"amountB"`
	TimeA           int64           `json:"timeA"`
	TimeB           int64           `json:"timeB"`
}

// BothReceiving reports whether both analyzed addresses received from the middle address.
func (p IndirectPath) BothReceiving() bool {
	return p.DirectionA == DirectionIn && p.DirectionB == DirectionIn
}

// IndirectLinkResult summarizes two-hop evidence for a pair.
//
// Paths holds the reported sample; AllPaths keeps every surviving pairing in
// the same order for scoring and is not serialized.
type IndirectLinkResult struct {
	Exists                  bool           `json:"exists"`
	PathCount               int            `json:"pathCount"`
	CommonCounterpartyCount int            `json:"commonCounterpartyCount"`
	Paths                   []IndirectPath `json:"paths"`
	AllPaths                []IndirectPath `json:"-"`
}

// PurchaseDetail describes one side of a token correlation.
type PurchaseDetail struct {
	Amount    decimal.Decimal `json:"amount"`
	Timestamp int64           `json:"timestamp"`
	TxHash    string          `json:"txHash"`
}

// TokenCorrelation pairs two purchases of the same token close in time.
type TokenCorrelation struct {
	TimeDiffSeconds int64          `json:"timeDiffSeconds"`
	HumanTimeDiff   string         `json:"humanTimeDiff"`
	PurchaseA       PurchaseDetail `json:"purchaseA"`
	PurchaseB       PurchaseDetail `json:"purchaseB"`
}

// TokenEvidence is the per-token activity of both addresses.
type TokenEvidence struct {
	TokenID          string             `json:"tokenId"`
	TokenSymbol      string             `json:"tokenSymbol"`
	PurchaseCountA   int                `json:"purchaseCountA"`
	PurchaseCountB   int                `json:"purchaseCountB"`
	TotalAmountA     decimal.Decimal    `json:"totalAmountA"`
	TotalAmountB     decimal.Decimal    `json:"totalAmountB"`
	Correlations     []TokenCorrelation `json:"correlations"`
	CorrelationCount int                `json:"correlationCount"`
	HasCorrelation   bool               `json:"hasCorrelation"`
}

// CommonTokenResult lists the tokens both addresses transacted in.
type CommonTokenResult struct {
	Tokens               []TokenEvidence `json:"tokens"`
	CommonTokenCount     int             `json:"commonTokenCount"`
	CorrelatedTokenCount int             `json:"correlatedTokenCount"`
}

// PairResult is the evidence and score for one unordered address pair.
type PairResult struct {
	Addresses    [2]string          `json:"addresses"`
	Score        int                `json:"score"`
	DirectLink   DirectLinkResult   `json:"directLink"`
	IndirectLink IndirectLinkResult `json:"indirectLink"`
	CommonTokens CommonTokenResult  `json:"commonTokens"`
}
