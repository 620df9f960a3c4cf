package analyzer

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vanshika/addrlink/internal/domain"
)

func TestDetectDirectLinkBothDirections(t *testing.T) {
	a, b, x := testAddress(1), testAddress(2), testAddress(3)

	dsA := dataset(t, a,
		nativeTx("s1", baseTime, a, b, 1_500_000_000),
		nativeTx("s2", baseTime+10, a, x, 1_000_000_000),
	)
	dsB := dataset(t, b,
		nativeTx("s1", baseTime, a, b, 1_500_000_000),
		nativeTx("s3", baseTime+20, b, a, 250_000_000),
		tokenTx("s4", baseTime+30, b, a, "mint1", 3),
	)

	result := DetectDirectLink(dsA, dsB)
	if !result.Exists || result.Count != 3 {
		t.Fatalf("expected 3 direct transfers, got %+v", result)
	}
	if len(result.TransfersAtoB) != 1 || len(result.TransfersBtoA) != 2 {
		t.Fatalf("unexpected transfer split: %d a->b, %d b->a", len(result.TransfersAtoB), len(result.TransfersBtoA))
	}
	if !result.TotalAmountAtoB.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("expected 1.5 a->b, got %s", result.TotalAmountAtoB)
	}
	if !result.TotalAmountBtoA.Equal(decimal.RequireFromString("3.25")) {
		t.Fatalf("expected 3.25 b->a, got %s", result.TotalAmountBtoA)
	}
	if result.TransfersAtoB[0].TokenSymbol != NativeSymbol {
		t.Fatalf("expected native symbol, got %s", result.TransfersAtoB[0].TokenSymbol)
	}
}

func TestDetectDirectLinkCapsSamples(t *testing.T) {
	a, b := testAddress(1), testAddress(2)

	dsA := domain.NewAddressDataset(a, nil)
	for i := 0; i < 8; i++ {
		dsA.Transactions = append(dsA.Transactions, domain.Transaction{
			Hash:      "s" + string(rune('a'+i)),
			From:      a,
			To:        b,
			Amount:    decimal.NewFromInt(1),
			Timestamp: baseTime + int64(i),
			Kind:      domain.KindNative,
		})
	}

	result := DetectDirectLink(dsA, domain.NewAddressDataset(b, nil))
	if result.Count != 8 {
		t.Fatalf("expected full count 8, got %d", result.Count)
	}
	if len(result.TransfersAtoB) != directSampleSize {
		t.Fatalf("expected %d samples, got %d", directSampleSize, len(result.TransfersAtoB))
	}
	if !result.TotalAmountAtoB.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected total over all transfers 8, got %s", result.TotalAmountAtoB)
	}
}

func TestDetectIndirectLinkWindowAndOrder(t *testing.T) {
	a, b := testAddress(1), testAddress(2)
	m1, m2, m3 := testAddress(10), testAddress(11), testAddress(12)

	dsA := dataset(t, a,
		nativeTx("a1", baseTime, a, m1, 1_000_000_000),
		nativeTx("a2", baseTime, m2, a, 1_000_000_000),
		nativeTx("a3", baseTime, a, m3, 1_000_000_000),
	)
	dsB := dataset(t, b,
		nativeTx("b1", baseTime+300, b, m1, 1_000_000_000),
		nativeTx("b2", baseTime+45, m2, b, 1_000_000_000),
		nativeTx("b3", baseTime+indirectWindowSeconds+1, b, m3, 1_000_000_000),
	)

	result := DetectIndirectLink(dsA, dsB, nil)
	if !result.Exists || result.PathCount != 2 {
		t.Fatalf("expected 2 paths within window, got %+v", result)
	}
	if result.CommonCounterpartyCount != 3 {
		t.Fatalf("expected 3 common counterparties, got %d", result.CommonCounterpartyCount)
	}
	first := result.Paths[0]
	if first.MiddleAddress != m2 || first.TimeDiffSeconds != 45 || first.HumanTimeDiff != "45s" {
		t.Fatalf("unexpected first path: %+v", first)
	}
	if first.DirectionA != domain.DirectionIn || first.DirectionB != domain.DirectionIn {
		t.Fatalf("expected both in, got %s/%s", first.DirectionA, first.DirectionB)
	}
	if result.Paths[1].MiddleAddress != m1 || result.Paths[1].DirectionA != domain.DirectionOut {
		t.Fatalf("unexpected second path: %+v", result.Paths[1])
	}
}

func TestDetectIndirectLinkExcludesPairAndDenylist(t *testing.T) {
	a, b := testAddress(1), testAddress(2)
	jupiter := "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	custom := testAddress(20)

	dsA := dataset(t, a,
		nativeTx("a1", baseTime, a, jupiter, 1_000_000_000),
		nativeTx("a2", baseTime, a, custom, 1_000_000_000),
		nativeTx("a3", baseTime, a, b, 1_000_000_000),
	)
	dsB := dataset(t, b,
		nativeTx("b1", baseTime+5, jupiter, b, 1_000_000_000),
		nativeTx("b2", baseTime+5, custom, b, 1_000_000_000),
		nativeTx("a3", baseTime, a, b, 1_000_000_000),
	)

	if got := DetectIndirectLink(dsA, dsB, nil); got.PathCount != 2 {
		t.Fatalf("expected 2 paths without denylist, got %d", got.PathCount)
	}

	extra, err := ParseDenylist([]string{custom})
	if err != nil {
		t.Fatalf("parse denylist: %v", err)
	}
	deny := DefaultDenylist().Merge(extra)
	result := DetectIndirectLink(dsA, dsB, deny)
	if result.Exists {
		t.Fatalf("expected no paths, got %+v", result.Paths)
	}
	for _, p := range result.AllPaths {
		if deny.Contains(p.MiddleAddress) || p.MiddleAddress == a || p.MiddleAddress == b {
			t.Fatalf("unexpected middle address %s", p.MiddleAddress)
		}
	}
}

func TestDetectIndirectLinkSamplesTopTen(t *testing.T) {
	a, b, m := testAddress(1), testAddress(2), testAddress(10)

	var dsA, dsB = domain.NewAddressDataset(a, nil), domain.NewAddressDataset(b, nil)
	for i := 0; i < 4; i++ {
		dsA.Transactions = append(dsA.Transactions, domain.Transaction{Hash: "a", From: a, To: m, Amount: decimal.NewFromInt(1), Timestamp: baseTime + int64(i)})
		dsB.Transactions = append(dsB.Transactions, domain.Transaction{Hash: "b", From: b, To: m, Amount: decimal.NewFromInt(1), Timestamp: baseTime + int64(100*i)})
	}

	result := DetectIndirectLink(dsA, dsB, nil)
	if result.PathCount != 16 || len(result.AllPaths) != 16 {
		t.Fatalf("expected full cross product of 16, got %d", result.PathCount)
	}
	if len(result.Paths) != pathSampleSize {
		t.Fatalf("expected %d samples, got %d", pathSampleSize, len(result.Paths))
	}
	for i := 1; i < len(result.AllPaths); i++ {
		if result.AllPaths[i-1].TimeDiffSeconds > result.AllPaths[i].TimeDiffSeconds {
			t.Fatalf("paths not sorted at %d", i)
		}
	}
}

func TestDetectIndirectLinkSymmetric(t *testing.T) {
	a, b := testAddress(1), testAddress(2)
	m1, m2 := testAddress(10), testAddress(11)

	dsA := dataset(t, a,
		nativeTx("a1", baseTime, a, m1, 1_000_000_000),
		nativeTx("a2", baseTime+100, m2, a, 1_000_000_000),
	)
	dsB := dataset(t, b,
		nativeTx("b1", baseTime+100, b, m1, 1_000_000_000),
		nativeTx("b2", baseTime, m2, b, 1_000_000_000),
	)

	ab := DetectIndirectLink(dsA, dsB, nil)
	ba := DetectIndirectLink(dsB, dsA, nil)
	if ab.PathCount != ba.PathCount {
		t.Fatalf("path counts differ: %d vs %d", ab.PathCount, ba.PathCount)
	}
	for i := range ab.AllPaths {
		if ab.AllPaths[i].MiddleAddress != ba.AllPaths[i].MiddleAddress {
			t.Fatalf("path %d middle differs: %s vs %s", i, ab.AllPaths[i].MiddleAddress, ba.AllPaths[i].MiddleAddress)
		}
	}
}
