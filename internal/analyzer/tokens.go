package analyzer

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vanshika/addrlink/internal/domain"
)

const (
	correlationSampleSize = 5
	// correlationWindowSeconds bounds the gap between two purchases of the same token.
	correlationWindowSeconds = 3600
)

type purchase struct {
	txHash    string
	amount    decimal.Decimal
	symbol    string
	timestamp int64
}

type purchaseIndex struct {
	order   []string
	byToken map[string][]purchase
}

// indexPurchases groups address's token transfers by token. Amounts are
// negative where address is the sender. Duplicate transfers are dropped.
func indexPurchases(address string, txs []domain.Transaction) purchaseIndex {
	idx := purchaseIndex{byToken: make(map[string][]purchase)}
	seen := make(map[transferKey]struct{}, len(txs))

	for _, tx := range txs {
		key := transferKey{hash: tx.Hash, tokenID: tx.TokenID, from: tx.From, to: tx.To, amount: tx.Amount.String()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if !tx.IsToken() {
			continue
		}
		isSender := tx.From == address
		isReceiver := tx.To == address
		if !isSender && !isReceiver {
			continue
		}

		p := purchase{
			txHash:    tx.Hash,
			amount:    tx.Amount,
			symbol:    tx.TokenSymbol,
			timestamp: tx.Timestamp,
		}
		if !isReceiver {
			p.amount = tx.Amount.Neg()
		}
		if p.symbol == "" {
			p.symbol = domain.UnknownTokenSymbol
		}

		if _, ok := idx.byToken[tx.TokenID]; !ok {
			idx.order = append(idx.order, tx.TokenID)
		}
		idx.byToken[tx.TokenID] = append(idx.byToken[tx.TokenID], p)
	}
	return idx
}

type transferKey struct {
	hash, tokenID, from, to, amount string
}

// DetectCommonTokens finds tokens both addresses transacted in and pairs
// purchases made within one hour of each other.
func DetectCommonTokens(a, b domain.AddressDataset) domain.CommonTokenResult {
	idxA := indexPurchases(a.Address, a.Transactions)
	idxB := indexPurchases(b.Address, b.Transactions)

	tokens := []domain.TokenEvidence{}
	correlated := 0
	for _, tokenID := range idxA.order {
		purchasesB, ok := idxB.byToken[tokenID]
		if !ok {
			continue
		}
		purchasesA := idxA.byToken[tokenID]

		correlations := correlate(purchasesA, purchasesB)
		evidence := domain.TokenEvidence{
			TokenID:          tokenID,
			TokenSymbol:      firstSymbol(purchasesA, purchasesB),
			PurchaseCountA:   len(purchasesA),
			PurchaseCountB:   len(purchasesB),
			TotalAmountA:     sumPurchases(purchasesA),
			TotalAmountB:     sumPurchases(purchasesB),
			Correlations:     correlations[:min(len(correlations), correlationSampleSize)],
			CorrelationCount: len(correlations),
			HasCorrelation:   len(correlations) > 0,
		}
		if evidence.HasCorrelation {
			correlated++
		}
		tokens = append(tokens, evidence)
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].CorrelationCount > tokens[j].CorrelationCount
	})

	return domain.CommonTokenResult{
		Tokens:               tokens,
		CommonTokenCount:     len(tokens),
		CorrelatedTokenCount: correlated,
	}
}

// correlate crosses both purchase lists. A hash pair counts once no matter
// how many transfers of the token the two transactions contain.
func correlate(purchasesA, purchasesB []purchase) []domain.TokenCorrelation {
	out := []domain.TokenCorrelation{}
	seen := make(map[[2]string]struct{})

	for _, pa := range purchasesA {
		for _, pb := range purchasesB {
			key := hashPair(pa.txHash, pb.txHash)
			if _, dup := seen[key]; dup {
				continue
			}
			diff := absDiff(pa.timestamp, pb.timestamp)
			if diff > correlationWindowSeconds {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, domain.TokenCorrelation{
				TimeDiffSeconds: diff,
				HumanTimeDiff:   HumanTimeDiff(diff),
				PurchaseA:       domain.PurchaseDetail{Amount: pa.amount, Timestamp: pa.timestamp, TxHash: pa.txHash},
				PurchaseB:       domain.PurchaseDetail{Amount: pb.amount, Timestamp: pb.timestamp, TxHash: pb.txHash},
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeDiffSeconds < out[j].TimeDiffSeconds
	})
	return out
}

func hashPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func firstSymbol(purchasesA, purchasesB []purchase) string {
	if len(purchasesA) > 0 {
		return purchasesA[0].symbol
	}
	if len(purchasesB) > 0 {
		return purchasesB[0].symbol
	}
	return domain.UnknownTokenSymbol
}

func sumPurchases(ps []purchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		total = total.Add(p.amount)
	}
	return total
}
