// services/engine.go
package services

import (
	crand "crypto/rand"
	"math"

	"race-wager-system/models"
	"race-wager-system/utils"
)

// raceEntropy returns 32 fresh entropy bytes for a race draw. It stands in
// for the recent-blockhash source the settlement was designed around; like
// that source there is no pre-commitment, the draw is whatever entropy is
// available at execution time.
func raceEntropy() []byte {
	b := make([]byte, 32)
	if _, err := crand.Read(b); err != nil {
		// crypto/rand failing means the host is broken; a zeroed seed still
		// yields a valid (if predictable) draw.
		return make([]byte, 32)
	}
	return b
}

// drawWinningHorses expands entropy + race id into three distinct horse
// numbers in [1, MaxHorses], finish order first to third.
func drawWinningHorses(entropy []byte, raceID uint64) [3]uint8 {
	var seed uint64
	for i, b := range entropy {
		seed = (seed + uint64(b)) * uint64(i+1)
		seed += raceID
	}

	var winners [3]uint8
	picked := [utils.MaxHorses + 1]bool{}
	for i := 0; i < 3; i++ {
		for {
			seed = seed*1664525 + 1013904223
			horse := uint8(seed%utils.MaxHorses) + 1
			if !picked[horse] {
				picked[horse] = true
				winners[i] = horse
				break
			}
		}
	}
	return winners
}

// computePrizes assigns each entry its prize from the post-fee pool. A
// position's share (50/30/15% in bps) is split equally among every entry
// that backed the placing horse; divisions truncate, so up to a few base
// units of slack stay in escrow.
func computePrizes(entries []models.PlayerEntry, winners [3]uint8, postFeePool uint64) (map[string]uint64, error) {
	prizes := make(map[string]uint64, len(entries))

	for position, horse := range winners {
		var backers []string
		for _, e := range entries {
			if e.HorseNumber == horse {
				backers = append(backers, e.Address)
			}
		}
		if len(backers) == 0 {
			continue
		}

		share, err := mulDivBps(postFeePool, utils.PrizeDistributionBps[position])
		if err != nil {
			return nil, err
		}
		perBacker := share / uint64(len(backers))
		for _, addr := range backers {
			prizes[addr] = perBacker
		}
	}
	return prizes, nil
}

// mulDivBps computes amount * bps / 10000 with an explicit overflow check.
func mulDivBps(amount, bps uint64) (uint64, error) {
	if bps != 0 && amount > math.MaxUint64/bps {
		return 0, ErrMathOverflow
	}
	return amount * bps / 10000, nil
}

// addPool adds to a pool counter, refusing wraparound.
func addPool(pool, amount uint64) (uint64, error) {
	if pool > math.MaxUint64-amount {
		return 0, ErrMathOverflow
	}
	return pool + amount, nil
}
