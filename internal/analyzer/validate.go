package analyzer

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/vanshika/addrlink/internal/domain"
)

const (
	MinAddresses = 2
	MaxAddresses = 5
)

// ValidateAddresses checks the input contract of a run and returns the
// trimmed addresses in their original order.
func ValidateAddresses(addresses []string) ([]string, error) {
	if len(addresses) < MinAddresses || len(addresses) > MaxAddresses {
		return nil, fmt.Errorf("%w: expected %d-%d addresses, got %d", domain.ErrInvalidInput, MinAddresses, MaxAddresses, len(addresses))
	}

	out := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, raw := range addresses {
		addr := strings.TrimSpace(raw)
		if _, err := solana.PublicKeyFromBase58(addr); err != nil {
			return nil, fmt.Errorf("%w: address %q is not a valid Solana address", domain.ErrInvalidInput, raw)
		}
		if _, dup := seen[addr]; dup {
			return nil, fmt.Errorf("%w: duplicate address %s", domain.ErrInvalidInput, addr)
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out, nil
}
