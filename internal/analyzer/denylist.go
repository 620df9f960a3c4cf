package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// defaultDenylist holds exchange, AMM and router program accounts that act
// as shared hubs and say nothing about two wallets knowing each other.
var defaultDenylist = []string{
	"6PFv6v5TCwREX38nMEHjG67awEwG2RuCLEfjqrWieBQg", // pump.fun AMM
	"6HMoJqFfifATfSqD7YY3YXA3CZxwjfCwpExGEvQ5bekY", // pump.fun
	"GpMZbSM2GgvTKHJirzeGfMFoaZ8UR2X7F4v8vHTvxFbL", // pump.fun
	"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",  // Jupiter aggregator
	"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc",  // Orca whirlpools
	"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8", // Raydium AMM
	"9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP", // Orca v2
	"CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK", // Raydium CLMM
	"srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX",  // Serum
}

// Denylist is a set of structural counterparties excluded from indirect link
// detection. The zero value and nil are empty.
type Denylist struct {
	set map[string]struct{}
}

// DefaultDenylist returns the built-in program address list.
func DefaultDenylist() *Denylist {
	d, err := ParseDenylist(defaultDenylist)
	if err != nil {
		panic(fmt.Sprintf("analyzer: invalid built-in denylist: %v", err))
	}
	return d
}

// ParseDenylist validates entries as Solana public keys. Blank entries and
// lines starting with '#' are ignored.
func ParseDenylist(entries []string) (*Denylist, error) {
	d := &Denylist{set: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		key, err := solana.PublicKeyFromBase58(entry)
		if err != nil {
			return nil, fmt.Errorf("denylist entry %q: %w", entry, err)
		}
		d.set[key.String()] = struct{}{}
	}
	return d, nil
}

// Merge returns a denylist holding the entries of both lists.
func (d *Denylist) Merge(other *Denylist) *Denylist {
	merged := &Denylist{set: make(map[string]struct{}, d.Len()+other.Len())}
	for _, src := range []*Denylist{d, other} {
		if src == nil {
			continue
		}
		for k := range src.set {
			merged.set[k] = struct{}{}
		}
	}
	return merged
}

// Contains reports whether address is denylisted.
func (d *Denylist) Contains(address string) bool {
	if d == nil {
		return false
	}
	_, ok := d.set[address]
	return ok
}

// Len returns the number of entries.
func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	return len(d.set)
}

// Entries returns the denylisted addresses in sorted order.
func (d *Denylist) Entries() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.set))
	for k := range d.set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
