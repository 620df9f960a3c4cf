package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/addrlink/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		clusterSize    = flag.Int("cluster", cfg.ClusterSize, "wallets planted under one owner (2-5)")
		noiseWallets   = flag.Int("noise", cfg.NoiseWallets, "unrelated wallets sharing only the airdrop")
		noiseTransfers = flag.Int("noise-transfers", cfg.NoiseTransfers, "transfers per noise wallet")
		lookbackDays   = flag.Int("days", cfg.LookbackDays, "window noise activity is spread across")
		syncWindow     = flag.Duration("sync-window", cfg.SyncWindow, "max spread of planted synchronized activity")
		seed           = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir      = flag.String("output-dir", "fixtures", "directory to write <address>.json histories and manifest.json")
		writeStdout    = flag.Bool("stdout", false, "write the manifest to stdout as well")
	)
	flag.Parse()

	genCfg := generator.Config{
		ClusterSize:     clamp(*clusterSize, 2, 5),
		NoiseWallets:    *noiseWallets,
		NoiseTransfers:  *noiseTransfers,
		LookbackDays:    *lookbackDays,
		SyncWindow:      *syncWindow,
		AirdropLamports: cfg.AirdropLamports,
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(dataset.Manifest); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write manifest to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stdout, "Generated %d histories into %s (cluster %d, noise %d)\n",
		len(dataset.Histories), *outputDir, len(dataset.Manifest.Cluster), len(dataset.Manifest.Noise))
}

func clamp(value, lo, hi int) int {
	return max(lo, min(value, hi))
}
