package analyzer

import (
	"math"

	"github.com/vanshika/addrlink/internal/domain"
)

const (
	MinScore    = 1
	MaxScore    = 10
	directScore = 10
)

const (
	middleSpreadSample = 20
	airdropSample      = 10
	tokenBonusCap      = 5.0
)

// ScorePair rates how likely two addresses share an owner, from 1 to 10.
// A direct transfer decides the score outright. Without one the score is
// driven by the tightest indirect path and capped at 9.
func ScorePair(direct domain.DirectLinkResult, indirect domain.IndirectLinkResult, tokens domain.CommonTokenResult) int {
	if direct.Exists {
		return directScore
	}

	score := 0.0
	if len(indirect.AllPaths) > 0 {
		score = float64(timingScore(indirect.AllPaths[0].TimeDiffSeconds))

		switch uniqueMiddles(indirect.AllPaths, middleSpreadSample) {
		case 1:
			score = math.Max(score-2, 3)
		case 2:
			score = math.Max(score-1, 4)
		}

		if allBothReceiving(indirect.AllPaths, airdropSample) {
			score = math.Min(score-4, 2)
		}
	}

	if tokens.CommonTokenCount > 0 {
		bonus := 1 + 0.2*float64(tokens.CommonTokenCount) + 0.3*float64(tokens.CorrelatedTokenCount)
		score += math.Min(bonus, tokenBonusCap)
	}

	s := int(math.Floor(score))
	return max(MinScore, min(s, MaxScore-1))
}

func timingScore(diff int64) int {
	switch {
	case diff < 30:
		return 9
	case diff < 120:
		return 8
	case diff < 600:
		return 7
	case diff < 3600:
		return 6
	default:
		return 5
	}
}

func uniqueMiddles(paths []domain.IndirectPath, n int) int {
	seen := make(map[string]struct{})
	for _, p := range paths[:min(len(paths), n)] {
		seen[p.MiddleAddress] = struct{}{}
	}
	return len(seen)
}

// allBothReceiving flags airdrop-like evidence where one source paid both addresses.
func allBothReceiving(paths []domain.IndirectPath, n int) bool {
	head := paths[:min(len(paths), n)]
	if len(head) == 0 {
		return false
	}
	for _, p := range head {
		if !p.BothReceiving() {
			return false
		}
	}
	return true
}
