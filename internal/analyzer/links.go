package analyzer

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vanshika/addrlink/internal/domain"
)

const (
	directSampleSize = 5
	pathSampleSize   = 10
	// indirectWindowSeconds bounds the gap between the two hops of a path.
	indirectWindowSeconds = 86400
)

// DetectDirectLink finds transfers sent straight from a to b (in a's history)
// and from b to a (in b's history).
func DetectDirectLink(a, b domain.AddressDataset) domain.DirectLinkResult {
	aToB := directTransfers(a.Transactions, a.Address, b.Address)
	bToA := directTransfers(b.Transactions, b.Address, a.Address)

	return domain.DirectLinkResult{
		Exists:          len(aToB) > 0 || len(bToA) > 0,
		Count:           len(aToB) + len(bToA),
		TransfersAtoB:   capSamples(aToB, directSampleSize),
		TransfersBtoA:   capSamples(bToA, directSampleSize),
		TotalAmountAtoB: sumSamples(aToB),
		TotalAmountBtoA: sumSamples(bToA),
	}
}

func directTransfers(txs []domain.Transaction, from, to string) []domain.TransferSample {
	var out []domain.TransferSample
	for _, tx := range txs {
		if tx.From != from || tx.To != to {
			continue
		}
		symbol := tx.TokenSymbol
		if symbol == "" {
			symbol = NativeSymbol
		}
		out = append(out, domain.TransferSample{
			Hash:        tx.Hash,
			Amount:      tx.Amount,
			TokenSymbol: symbol,
			Timestamp:   tx.Timestamp,
		})
	}
	return out
}

func capSamples(s []domain.TransferSample, n int) []domain.TransferSample {
	out := make([]domain.TransferSample, 0, min(len(s), n))
	return append(out, s[:min(len(s), n)]...)
}

func sumSamples(s []domain.TransferSample) decimal.Decimal {
	total := decimal.Zero
	for _, t := range s {
		total = total.Add(t.Amount)
	}
	return total
}

type interaction struct {
	timestamp int64
	direction domain.Direction
	amount    decimal.Decimal
}

// counterparties maps each counterparty to its interactions, remembering
// first-seen order so iteration is deterministic.
type counterparties struct {
	order []string
	byKey map[string][]interaction
}

func (c *counterparties) add(addr string, in interaction) {
	if _, ok := c.byKey[addr]; !ok {
		c.order = append(c.order, addr)
	}
	c.byKey[addr] = append(c.byKey[addr], in)
}

// indexCounterparties collects self's interactions, leaving out the other
// analyzed address and denylisted hubs.
func indexCounterparties(self, other string, txs []domain.Transaction, deny *Denylist) counterparties {
	idx := counterparties{byKey: make(map[string][]interaction)}
	for _, tx := range txs {
		switch {
		case tx.From == self && tx.To != "" && tx.To != other:
			if !deny.Contains(tx.To) {
				idx.add(tx.To, interaction{timestamp: tx.Timestamp, direction: domain.DirectionOut, amount: tx.Amount})
			}
		case tx.To == self && tx.From != "" && tx.From != other:
			if !deny.Contains(tx.From) {
				idx.add(tx.From, interaction{timestamp: tx.Timestamp, direction: domain.DirectionIn, amount: tx.Amount})
			}
		}
	}
	return idx
}

// DetectIndirectLink finds two-hop paths through counterparties both
// addresses interacted with within 24 hours of each other.
func DetectIndirectLink(a, b domain.AddressDataset, deny *Denylist) domain.IndirectLinkResult {
	idxA := indexCounterparties(a.Address, b.Address, a.Transactions, deny)
	idxB := indexCounterparties(b.Address, a.Address, b.Transactions, deny)

	var paths []domain.IndirectPath
	common := 0
	for _, middle := range idxA.order {
		withB, ok := idxB.byKey[middle]
		if !ok {
			continue
		}
		common++
		for _, ia := range idxA.byKey[middle] {
			for _, ib := range withB {
				diff := absDiff(ia.timestamp, ib.timestamp)
				if diff > indirectWindowSeconds {
					continue
				}
				paths = append(paths, domain.IndirectPath{
					MiddleAddress:   middle,
					TimeDiffSeconds: diff,
					HumanTimeDiff:   HumanTimeDiff(diff),
					DirectionA:      ia.direction,
					DirectionB:      ib.direction,
					AmountA:         ia.amount,
					AmountB:         ib.amount,
					TimeA:           ia.timestamp,
					TimeB:           ib.timestamp,
				})
			}
		}
	}

	sortPaths(paths)

	sample := make([]domain.IndirectPath, 0, min(len(paths), pathSampleSize))
	sample = append(sample, paths[:min(len(paths), pathSampleSize)]...)

	return domain.IndirectLinkResult{
		Exists:                  len(paths) > 0,
		PathCount:               len(paths),
		CommonCounterpartyCount: common,
		Paths:                   sample,
		AllPaths:                paths,
	}
}

// sortPaths orders by time difference. Ties are broken by keys that stay the
// same when the pair is swapped, so A/B and B/A score identically.
func sortPaths(paths []domain.IndirectPath) {
	sort.SliceStable(paths, func(i, j int) bool {
		pi, pj := paths[i], paths[j]
		if pi.TimeDiffSeconds != pj.TimeDiffSeconds {
			return pi.TimeDiffSeconds < pj.TimeDiffSeconds
		}
		if pi.MiddleAddress != pj.MiddleAddress {
			return pi.MiddleAddress < pj.MiddleAddress
		}
		if lo, lo2 := min(pi.TimeA, pi.TimeB), min(pj.TimeA, pj.TimeB); lo != lo2 {
			return lo < lo2
		}
		if hi, hi2 := max(pi.TimeA, pi.TimeB), max(pj.TimeA, pj.TimeB); hi != hi2 {
			return hi < hi2
		}
		return directionKey(pi) < directionKey(pj)
	})
}

func directionKey(p domain.IndirectPath) string {
	a, b := string(p.DirectionA), string(p.DirectionB)
	if a > b {
		a, b = b, a
	}
	return a + "/" + b
}
