package analyzer

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/vanshika/addrlink/internal/domain"
	"github.com/vanshika/addrlink/internal/helius"
)

const baseTime int64 = 1_700_000_000

// testAddress derives a stable, valid address from a single byte.
func testAddress(b byte) string {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, solana.PublicKeyLength)).String()
}

func nativeTx(sig string, ts int64, from, to string, lamports int64) helius.EnhancedTransaction {
	return helius.EnhancedTransaction{
		Signature: sig,
		Timestamp: ts,
		NativeTransfers: []helius.NativeTransfer{
			{FromUserAccount: from, ToUserAccount: to, Amount: lamports},
		},
	}
}

func tokenTx(sig string, ts int64, from, to, mint string, amount float64) helius.EnhancedTransaction {
	return helius.EnhancedTransaction{
		Signature: sig,
		Timestamp: ts,
		TokenTransfers: []helius.TokenTransfer{
			{FromUserAccount: from, ToUserAccount: to, Mint: mint, TokenAmount: amount, TokenSymbol: "MEME"},
		},
	}
}

func dataset(t *testing.T, address string, raw ...helius.EnhancedTransaction) domain.AddressDataset {
	t.Helper()
	return domain.NewAddressDataset(address, NormalizeTransactions(raw))
}
