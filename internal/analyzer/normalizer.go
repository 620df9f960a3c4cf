package analyzer

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/vanshika/addrlink/internal/domain"
	"github.com/vanshika/addrlink/internal/helius"
)

const (
	// lamportExponent converts lamports to SOL.
	lamportExponent = 9
	// NativeSymbol labels native-asset transfers.
	NativeSymbol = "SOL"
)

// NormalizeTransactions flattens raw provider records into one Transaction per
// embedded native or token transfer. Malformed entries are skipped.
func NormalizeTransactions(raw []helius.EnhancedTransaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(raw)*2)

	for _, tx := range raw {
		if tx.Signature == "" {
			continue
		}

		for _, nt := range tx.NativeTransfers {
			if nt.FromUserAccount == "" && nt.ToUserAccount == "" {
				continue
			}
			if nt.Amount < 0 {
				continue
			}
			out = append(out, domain.Transaction{
				Hash:        tx.Signature,
				From:        nt.FromUserAccount,
				To:          nt.ToUserAccount,
				Amount:      decimal.New(nt.Amount, -lamportExponent),
				TokenSymbol: NativeSymbol,
				Timestamp:   tx.Timestamp,
				Kind:        domain.KindNative,
			})
		}

		for _, tt := range tx.TokenTransfers {
			if tt.Mint == "" {
				continue
			}
			if tt.FromUserAccount == "" && tt.ToUserAccount == "" {
				continue
			}
			if math.IsNaN(tt.TokenAmount) || math.IsInf(tt.TokenAmount, 0) {
				continue
			}
			symbol := tt.TokenSymbol
			if symbol == "" {
				symbol = domain.UnknownTokenSymbol
			}
			out = append(out, domain.Transaction{
				Hash:        tx.Signature,
				From:        tt.FromUserAccount,
				To:          tt.ToUserAccount,
				Amount:      decimal.NewFromFloat(tt.TokenAmount),
				TokenID:     tt.Mint,
				TokenSymbol: symbol,
				Timestamp:   tx.Timestamp,
				Kind:        domain.KindToken,
			})
		}
	}

	return out
}
