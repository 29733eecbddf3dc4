package rl

// RLConfig is the reference Q-learning agent's hyperparameter set.
type RLConfig struct {
	// Epsilon is the exploration probability used when EpsilonReduction is 0.
	Epsilon float64
	// EpsilonReduction, when > 0, decays the effective exploration rate as a
	// state accumulates visits: epsilon = EpsilonReduction^(visits/numActions).
	EpsilonReduction float64
	// SampleAverage selects a 1/n running-average step size; when false,
	// FixedStepSize (alpha) is used instead.
	SampleAverage bool
	FixedStepSize float64
	// DiscountRate is gamma, the per-step return discount.
	DiscountRate float64
	// InitialValue is carried with the configuration (rlconfig reads it as
	// "initialValue"), but no code in this module applies it: QLearningAgent
	// and Experience read state-action values not yet in the table as 0, and
	// nothing pre-populates an Experience with this value.
	InitialValue float64
}

// Kind implements Configuration.
func (RLConfig) Kind() string { return "RLConfig" }

// DefaultRLConfig returns reasonable defaults: moderate exploration, a
// fixed step size, and a discount rate close to 1.
func DefaultRLConfig() RLConfig {
	return RLConfig{
		Epsilon:       0.2,
		SampleAverage: false,
		FixedStepSize: 0.1,
		DiscountRate:  0.9,
	}
}
