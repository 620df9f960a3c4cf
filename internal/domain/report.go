package domain

import (
	"errors"
	"time"
)

// Report tags.
const (
	TagHighControl          = "high-control"
	TagSuspectedLink        = "suspected-link"
	TagWeakLink             = "weak-link"
	TagUnrelated            = "unrelated"
	TagDirectTransfer       = "direct-transfer"
	TagSynchronizedTokenBuy = "synchronized-token-buy"
)

// ErrInvalidInput marks requests rejected before any analysis runs.
var ErrInvalidInput = errors.New("invalid analysis input")

// AddressCoverage describes how much history backed an address's evidence.
type AddressCoverage struct {
	Address          string `json:"address"`
	TransactionCount int    `json:"transactionCount"`
	FetchError       string `json:"fetchError,omitempty"`
}

// Report is the aggregate result of one analysis run.
type Report struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Tags         []string          `json:"tags"`
	Addresses    []string          `json:"addresses"`
	LookbackDays int               `json:"lookbackDays"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	Pairs        []PairResult      `json:"pairs"`
	Coverage     []AddressCoverage `json:"coverage"`
}

// HasTag reports whether the report carries the given tag.
func (r Report) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
