package services

import (
	"fmt"

	"click-reward-system/models"
)

// RewardTable is the immutable ascending reward table. Safe for concurrent use.
type RewardTable struct {
	levels []models.RewardLevel
}

// NewRewardTable validates and copies levels. The table must be non-empty and
// strictly ascending by threshold, with positive thresholds and valid prizes.
func NewRewardTable(levels []models.RewardLevel) (*RewardTable, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: reward table is empty", ErrConfiguration)
	}
	var prev int64
	for i, l := range levels {
		if l.Threshold <= 0 {
			return nil, fmt.Errorf("%w: level %d has non-positive threshold %d", ErrConfiguration, i, l.Threshold)
		}
		if i > 0 && l.Threshold <= prev {
			return nil, fmt.Errorf("%w: level %d threshold %d is not above %d", ErrConfiguration, i, l.Threshold, prev)
		}
		if err := l.Prize.Validate(); err != nil {
			return nil, fmt.Errorf("%w: level %d: %v", ErrConfiguration, i, err)
		}
		prev = l.Threshold
	}
	out := make([]models.RewardLevel, len(levels))
	copy(out, levels)
	return &RewardTable{levels: out}, nil
}

// Levels returns a copy of the configured levels.
func (t *RewardTable) Levels() []models.RewardLevel {
	if t == nil {
		return nil
	}
	out := make([]models.RewardLevel, len(t.levels))
	copy(out, t.levels)
	return out
}

// Resolve returns the reward level the counter must reach next, starting from
// value n (the counter before the click being evaluated). Once n is past the
// highest threshold the table wraps: the returned level carries its effective
// threshold for n's cycle.
func (t *RewardTable) Resolve(n int64) (models.RewardLevel, error) {
	if t == nil || len(t.levels) == 0 {
		return models.RewardLevel{}, fmt.Errorf("%w: reward table is empty", ErrConfiguration)
	}
	if n < 0 {
		return models.RewardLevel{}, fmt.Errorf("%w: %d", ErrInvalidCounter, n)
	}

	for _, l := range t.levels {
		if n < l.Threshold {
			return l, nil
		}
	}

	maxThreshold := t.levels[len(t.levels)-1].Threshold
	if maxThreshold <= 0 {
		return models.RewardLevel{}, fmt.Errorf("%w: max threshold %d", ErrConfiguration, maxThreshold)
	}
	cycles := n / maxThreshold
	remainder := n % maxThreshold

	for _, l := range t.levels {
		if remainder < l.Threshold {
			return models.RewardLevel{Threshold: cycles*maxThreshold + l.Threshold, Prize: l.Prize}, nil
		}
	}

	// remainder sits on a cycle boundary: first level of the next cycle
	first := t.levels[0]
	return models.RewardLevel{Threshold: (cycles+1)*maxThreshold + first.Threshold, Prize: first.Prize}, nil
}
