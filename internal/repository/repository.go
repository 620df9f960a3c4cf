package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vanshika/addrlink/internal/graph"
	"github.com/vanshika/addrlink/internal/helius"
)

// Transfer kinds stored on :Transfer nodes by the indexer.
const (
	kindNative = "native"
	kindToken  = "token"
)

// ErrMissingAddress is returned when no address is supplied.
var ErrMissingAddress = errors.New("address is required")

// TransferSource reads an address's transfers from the indexer's transfer
// graph and reassembles them into provider-shaped raw records:
//
//	(:Account)-[:SENT]->(:Transfer)-[:TO]->(:Account)
//
// Each :Transfer is one leg of an on-chain transaction, so legs sharing a
// signature are grouped back into a single record.
type TransferSource struct {
	client graph.Client
	nowFn  func() time.Time
}

// NewTransferSource instantiates a TransferSource backed by the supplied graph client.
func NewTransferSource(client graph.Client) *TransferSource {
	return &TransferSource{client: client, nowFn: time.Now}
}

// WithClock overrides the time source used for the lookback window.
func (s *TransferSource) WithClock(nowFn func() time.Time) {
	if nowFn == nil {
		return
	}
	s.nowFn = nowFn
}

// FetchTransactions returns up to maxCount transactions touching address,
// newest first, no older than sinceDays.
func (s *TransferSource) FetchTransactions(ctx context.Context, address string, maxCount, sinceDays int) ([]helius.EnhancedTransaction, error) {
	if address == "" {
		return nil, ErrMissingAddress
	}
	if maxCount <= 0 {
		return []helius.EnhancedTransaction{}, nil
	}

	var since int64
	if t := helius.Since(s.nowFn(), sinceDays); !t.IsZero() {
		since = t.Unix()
	}

	res, err := s.client.ExecuteRead(ctx, addressTransfersCypher, map[string]any{
		"address": address,
		"since":   since,
		"limit":   int64(maxCount),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transfers for %s: %w", address, err)
	}

	return groupTransfers(res.Records), nil
}

// groupTransfers folds leg rows into one record per signature, keeping the
// order in which signatures first appear.
func groupTransfers(records []graph.Record) []helius.EnhancedTransaction {
	out := make([]helius.EnhancedTransaction, 0)
	bySig := make(map[string]int)

	for _, record := range records {
		sig := toString(record["signature"])
		if sig == "" {
			continue
		}
		idx, ok := bySig[sig]
		if !ok {
			idx = len(out)
			bySig[sig] = idx
			out = append(out, helius.EnhancedTransaction{
				Signature: sig,
				Timestamp: toInt64(record["timestamp"]),
				Source:    "graph",
			})
		}
		tx := &out[idx]

		from, to := toString(record["from"]), toString(record["to"])
		switch toString(record["kind"]) {
		case kindNative:
			tx.NativeTransfers = append(tx.NativeTransfers, helius.NativeTransfer{
				FromUserAccount: from,
				ToUserAccount:   to,
				Amount:          toInt64(record["lamports"]),
			})
		case kindToken:
			tx.TokenTransfers = append(tx.TokenTransfers, helius.TokenTransfer{
				FromUserAccount: from,
				ToUserAccount:   to,
				TokenAmount:     toFloat64(record["amount"]),
				Mint:            toString(record["mint"]),
				TokenSymbol:     toString(record["symbol"]),
			})
		}
	}
	return out
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return math.NaN()
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case time.Time:
		return v.Unix()
	default:
		return 0
	}
}

// addressTransfersCypher picks the newest $limit signatures touching the
// address, then returns every leg of those transactions.
const addressTransfersCypher = `
MATCH (a:Account {address: $address})
MATCH (t:Transfer)
WHERE ((a)-[:SENT]->(t) OR (t)-[:TO]->(a))
  AND t.timestamp >= $since
WITH DISTINCT t.signature AS signature, t.timestamp AS ts
ORDER BY ts DESC, signature
LIMIT $limit
MATCH (s:Account)-[:SENT]->(leg:Transfer {signature: signature})-[:TO]->(r:Account)
RETURN signature,
       leg.timestamp AS timestamp,
       leg.kind AS kind,
       s.address AS from,
       r.address AS to,
       leg.lamports AS lamports,
       leg.amount AS amount,
       leg.mint AS mint,
       leg.symbol AS symbol
ORDER BY timestamp DESC, signature, leg.index
`
