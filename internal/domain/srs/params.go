package srs

import (
	"time"
)

// Params defines all configurable parameters of the mastery and scheduling engine
type Params struct {
	// StepDays maps a review count to the delay before the next review.
	// Counts past the end of the table use the last step.
	StepDays []int

	// MasteryIncrement scales the adjusted confidence added to mastery on a correct attempt
	MasteryIncrement float64

	// Confidence adjustments applied before mastery is updated
	FastResponse         time.Duration
	FastResponseFactor   float64
	SlowResponse         time.Duration
	SlowResponseFactor   float64
	HintPenalty          float64
	MaxHintPenalty       float64
	UserConfidenceWeight float64

	// Difficulty derivation thresholds on the adjusted confidence
	EasyThreshold   float64
	MediumThreshold float64

	// Session composition
	Shares BucketShares
}

// BucketShares are the fractions of a session reserved for each bucket.
type BucketShares struct {
	Overdue  float64
	New      float64
	Review   float64
	Mastered float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	StepDays []int

	MasteryIncrement float64

	FastResponse       time.Duration
	FastResponseFactor float64
	SlowResponse       time.Duration
	SlowResponseFactor float64
	HintPenalty        float64
	MaxHintPenalty     float64

	Shares *BucketShares
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		StepDays: []int{0, 1, 3, 7, 14},

		MasteryIncrement: 0.1,

		FastResponse:         2 * time.Second,
		FastResponseFactor:   0.9,
		SlowResponse:         30 * time.Second,
		SlowResponseFactor:   0.85,
		HintPenalty:          0.1,
		MaxHintPenalty:       0.3,
		UserConfidenceWeight: 0.05,

		EasyThreshold:   0.9,
		MediumThreshold: 0.6,

		Shares: BucketShares{
			Overdue:  0.4,
			New:      0.3,
			Review:   0.2,
			Mastered: 0.1,
		},
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.StepDays) > 0 {
		params.StepDays = append([]int(nil), config.StepDays...)
	}

	if config.MasteryIncrement > 0 {
		params.MasteryIncrement = config.MasteryIncrement
	}

	if config.FastResponse > 0 {
		params.FastResponse = config.FastResponse
	}
	if config.FastResponseFactor > 0 {
		params.FastResponseFactor = config.FastResponseFactor
	}
	if config.SlowResponse > 0 {
		params.SlowResponse = config.SlowResponse
	}
	if config.SlowResponseFactor > 0 {
		params.SlowResponseFactor = config.SlowResponseFactor
	}
	if config.HintPenalty > 0 {
		params.HintPenalty = config.HintPenalty
	}
	if config.MaxHintPenalty > 0 {
		params.MaxHintPenalty = config.MaxHintPenalty
	}

	if config.Shares != nil {
		params.Shares = *config.Shares
	}

	return params
}
