package domain

import "github.com/shopspring/decimal"

// TransactionKind distinguishes native-asset transfers from token transfers.
type TransactionKind string

const (
	KindNative TransactionKind = "native"
	KindToken  TransactionKind = "token"
)

// UnknownTokenSymbol is used when the provider omits a token symbol.
const UnknownTokenSymbol = "Unknown"

// Transaction is one normalized transfer. A single on-chain transaction may
// produce several of these sharing the same Hash.
type Transaction struct {
	Hash        string          `json:"hash"`
	From        string          `json:"from,omitempty"`
	To          string          `json:"to,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	TokenID     string          `json:"tokenId,omitempty"`
	TokenSymbol string          `json:"tokenSymbol"`
	Timestamp   int64           `json:"timestamp"`
	Kind        TransactionKind `json:"kind"`
}

// IsToken reports whether the transfer moved a token rather than the native asset.
func (t Transaction) IsToken() bool {
	return t.TokenID != ""
}

// AddressDataset holds the normalized history of one analyzed address.
// It is built once per run and never mutated afterwards.
type AddressDataset struct {
	Address      string
	Transactions []Transaction
	Total        int
	FetchError   string
}

// NewAddressDataset builds a dataset from normalized transactions.
func NewAddressDataset(address string, txs []Transaction) AddressDataset {
	return AddressDataset{
		Address:      address,
		Transactions: txs,
		Total:        len(txs),
	}
}

// FailedAddressDataset records a fetch failure as an empty history.
func FailedAddressDataset(address string, err error) AddressDataset {
	ds := AddressDataset{Address: address}
	if err != nil {
		ds.FetchError = err.Error()
	}
	return ds
}
