package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanshika/addrlink/internal/helius"
)

// ManifestFile is the name of the manifest written next to the histories.
const ManifestFile = "manifest.json"

// WriteDataset writes one <address>.json history per wallet plus the
// manifest under dir. Wallets without activity get an empty array.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for addr, txs := range dataset.Histories {
		if txs == nil {
			txs = []helius.EnhancedTransaction{}
		}
		if err := writeJSON(filepath.Join(dir, addr+".json"), txs); err != nil {
			return err
		}
	}

	return writeJSON(filepath.Join(dir, ManifestFile), dataset.Manifest)
}

// ReadManifest loads the manifest written by WriteDataset.
func ReadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
