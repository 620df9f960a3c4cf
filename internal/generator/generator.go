package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/vanshika/addrlink/internal/helius"
)

const (
	lamportsPerSOL = 1_000_000_000
	// ammPool is a denylisted program account; buys through it never form an indirect path.
	ammPool   = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	tokenName = "SYNC"
)

// Manifest describes what was planted so consumers can check the analyzer.
type Manifest struct {
	Seed         int64     `json:"seed"`
	GeneratedAt  time.Time `json:"generatedAt"`
	LookbackDays int       `json:"lookbackDays"`
	Cluster      []string  `json:"cluster"`
	Noise        []string  `json:"noise"`
	Funder       string    `json:"funder"`
	Collector    string    `json:"collector"`
	Airdropper   string    `json:"airdropper"`
	Mint         string    `json:"mint"`
	// DirectPair sent 1.5 SOL from the first to the second cluster wallet.
	DirectPair   [2]string `json:"directPair"`
}

// Dataset holds every generated history keyed by wallet, newest first.
type Dataset struct {
	Histories map[string][]helius.EnhancedTransaction
	Manifest  Manifest
}

// Generator produces fixture histories with planted relationships.
type Generator struct {
	cfg  Config
	rand *rand.Rand
	seq  int
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.ClusterSize < 2 {
		cfg.ClusterSize = def.ClusterSize
	}
	if cfg.NoiseWallets < 0 {
		cfg.NoiseWallets = 0
	}
	if cfg.NoiseTransfers < 0 {
		cfg.NoiseTransfers = 0
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = def.LookbackDays
	}
	if cfg.SyncWindow <= 0 {
		cfg.SyncWindow = def.SyncWindow
	}
	if cfg.AirdropLamports <= 0 {
		cfg.AirdropLamports = def.AirdropLamports
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises the histories. It respects context cancellation.
//
// The cluster wallets are funded by one funder and swept to one collector
// within SyncWindow of each other, buy the same token within SyncWindow, and
// the first pays the second directly. Every wallet, cluster or noise, receives
// the same airdrop. Noise wallets otherwise only trade with counterparties of
// their own.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	ds := Dataset{Histories: make(map[string][]helius.EnhancedTransaction)}
	m := Manifest{
		Seed:         g.cfg.Seed,
		GeneratedAt:  g.cfg.Now,
		LookbackDays: g.cfg.LookbackDays,
		Funder:       g.address(),
		Collector:    g.address(),
		Airdropper:   g.address(),
		Mint:         g.address(),
	}
	for i := 0; i < g.cfg.ClusterSize; i++ {
		m.Cluster = append(m.Cluster, g.address())
		ds.Histories[m.Cluster[i]] = nil
	}
	for i := 0; i < g.cfg.NoiseWallets; i++ {
		m.Noise = append(m.Noise, g.address())
		ds.Histories[m.Noise[i]] = nil
	}
	m.DirectPair = [2]string{m.Cluster[0], m.Cluster[1]}

	// Planted activity sits two days back so any lookback of 3+ days sees it.
	base := g.cfg.Now.Add(-48 * time.Hour).Unix()
	jitter := func() int64 { return g.rand.Int63n(int64(g.cfg.SyncWindow/time.Second) + 1) }

	g.record(ds, nativeTx(g.signature(), base, m.Cluster[0], m.Cluster[1], 3*lamportsPerSOL/2))

	fundAt, sweepAt, buyAt := base+600, base+7200, base+3*3600
	for _, w := range m.Cluster {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		g.record(ds, nativeTx(g.signature(), fundAt+jitter(), m.Funder, w, int64(2+g.rand.Intn(3))*lamportsPerSOL))
		g.record(ds, nativeTx(g.signature(), sweepAt+jitter(), w, m.Collector, int64(1+g.rand.Intn(100))*lamportsPerSOL/100))
		g.record(ds, swapTx(g.signature(), buyAt+jitter(), w, m.Mint, float64(1000+g.rand.Intn(9000))))
	}

	dropAt := base - 86400
	for _, w := range append(append([]string(nil), m.Cluster...), m.Noise...) {
		g.record(ds, nativeTx(g.signature(), dropAt, m.Airdropper, w, g.cfg.AirdropLamports))
	}

	window := int64(g.cfg.LookbackDays) * 86400
	for _, w := range m.Noise {
		peers := []string{g.address(), g.address(), g.address()}
		for i := 0; i < g.cfg.NoiseTransfers; i++ {
			if err := ctx.Err(); err != nil {
				return Dataset{}, err
			}
			ts := g.cfg.Now.Unix() - g.rand.Int63n(window)
			peer := peers[g.rand.Intn(len(peers))]
			lamports := int64(1+g.rand.Intn(500)) * lamportsPerSOL / 100
			if g.rand.Intn(2) == 0 {
				g.record(ds, nativeTx(g.signature(), ts, w, peer, lamports))
			} else {
				g.record(ds, nativeTx(g.signature(), ts, peer, w, lamports))
			}
		}
	}

	for addr, txs := range ds.Histories {
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].Timestamp > txs[j].Timestamp })
		ds.Histories[addr] = txs
	}
	ds.Manifest = m
	return ds, nil
}

// record appends tx to the history of every tracked wallet it touches.
func (g *Generator) record(ds Dataset, tx helius.EnhancedTransaction) {
	touched := make(map[string]struct{})
	for _, nt := range tx.NativeTransfers {
		touched[nt.FromUserAccount] = struct{}{}
		touched[nt.ToUserAccount] = struct{}{}
	}
	for _, tt := range tx.TokenTransfers {
		touched[tt.FromUserAccount] = struct{}{}
		touched[tt.ToUserAccount] = struct{}{}
	}
	for addr := range touched {
		if _, tracked := ds.Histories[addr]; tracked {
			ds.Histories[addr] = append(ds.Histories[addr], tx)
		}
	}
}

// address derives a valid public key from the seeded source.
func (g *Generator) address() string {
	var b [solana.PublicKeyLength]byte
	for i := range b {
		b[i] = byte(g.rand.Intn(256))
	}
	return solana.PublicKeyFromBytes(b[:]).String()
}

func (g *Generator) signature() string {
	g.seq++
	return fmt.Sprintf("fixture-%d-%06d", g.cfg.Seed, g.seq)
}

func nativeTx(sig string, ts int64, from, to string, lamports int64) helius.EnhancedTransaction {
	return helius.EnhancedTransaction{
		Signature: sig,
		Timestamp: ts,
		Type:      "TRANSFER",
		Source:    "SYSTEM_PROGRAM",
		FeePayer:  from,
		NativeTransfers: []helius.NativeTransfer{
			{FromUserAccount: from, ToUserAccount: to, Amount: lamports},
		},
	}
}

// swapTx models a buy: SOL goes to the pool and the token comes back.
func swapTx(sig string, ts int64, wallet, mint string, amount float64) helius.EnhancedTransaction {
	return helius.EnhancedTransaction{
		Signature: sig,
		Timestamp: ts,
		Type:      "SWAP",
		Source:    "RAYDIUM",
		FeePayer:  wallet,
		NativeTransfers: []helius.NativeTransfer{
			{FromUserAccount: wallet, ToUserAccount: ammPool, Amount: lamportsPerSOL / 10},
		},
		TokenTransfers: []helius.TokenTransfer{
			{FromUserAccount: ammPool, ToUserAccount: wallet, Mint: mint, TokenAmount: amount, TokenSymbol: tokenName, TokenStandard: "Fungible"},
		},
	}
}
