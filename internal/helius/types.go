package helius

import (
	"encoding/json"
	"time"
)

// EnhancedTransaction is one parsed transaction as returned by the Helius
// enhanced transactions API. Only the fields the analyzer reads are mapped.
type EnhancedTransaction struct {
	Signature        string           `json:"signature"`
	Timestamp        int64            `json:"timestamp"`
	Type             string           `json:"type,omitempty"`
	Source           string           `json:"source,omitempty"`
	FeePayer         string           `json:"feePayer,omitempty"`
	Slot             int64            `json:"slot,omitempty"`
	NativeTransfers  []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers   []TokenTransfer  `json:"tokenTransfers"`
	TransactionError *TxError         `json:"transactionError,omitempty"`
}

// NativeTransfer represents a SOL transfer between accounts.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"` // lamports
}

// TokenTransfer represents a token transfer between accounts. TokenAmount is
// already decimal-adjusted by the provider.
type TokenTransfer struct {
	FromUserAccount  string  `json:"fromUserAccount"`
	ToUserAccount    string  `json:"toUserAccount"`
	FromTokenAccount string  `json:"fromTokenAccount,omitempty"`
	ToTokenAccount   string  `json:"toTokenAccount,omitempty"`
	TokenAmount      float64 `json:"tokenAmount"`
	Mint             string  `json:"mint"`
	TokenSymbol      string  `json:"tokenSymbol,omitempty"`
	TokenStandard    string  `json:"tokenStandard,omitempty"`
}

// TxError represents a transaction error.
type TxError struct {
	Error string `json:"error"`
}

// DecodeRecords decodes a JSON array of transactions one element at a time,
// dropping elements that do not decode. It returns the number dropped.
func DecodeRecords(data []byte) ([]EnhancedTransaction, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	txs := make([]EnhancedTransaction, 0, len(raw))
	skipped := 0
	for _, msg := range raw {
		var tx EnhancedTransaction
		if err := json.Unmarshal(msg, &tx); err != nil {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}

// TrimWindow keeps at most maxCount records whose timestamp is not older than
// since. Records are expected newest first; order is preserved.
func TrimWindow(txs []EnhancedTransaction, maxCount int, since time.Time) []EnhancedTransaction {
	cutoff := since.Unix()
	out := make([]EnhancedTransaction, 0, len(txs))
	for _, tx := range txs {
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		if !since.IsZero() && tx.Timestamp < cutoff {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Since returns the lookback cutoff for sinceDays relative to now. A
// non-positive sinceDays means no cutoff.
func Since(now time.Time, sinceDays int) time.Time {
	if sinceDays <= 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(sinceDays) * 24 * time.Hour)
}
