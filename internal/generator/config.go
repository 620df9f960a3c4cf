package generator

import "time"

// Config drives the synthetic fixture generator.
type Config struct {
	// ClusterSize is the number of wallets planted under a single owner.
	ClusterSize     int
	// NoiseWallets are unrelated wallets that only share the airdrop source.
	NoiseWallets    int
	NoiseTransfers  int
	LookbackDays    int
	SyncWindow      time.Duration
	AirdropLamports int64
	Seed            int64
	Now             time.Time
}

// DefaultConfig returns settings producing a small, fully linked cluster.
func DefaultConfig() Config {
	return Config{
		ClusterSize:     3,
		NoiseWallets:    3,
		NoiseTransfers:  40,
		LookbackDays:    30,
		SyncWindow:      45 * time.Second,
		AirdropLamports: 10_000,
		Seed:            42,
	}
}
