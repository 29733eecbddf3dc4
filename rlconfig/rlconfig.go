// Package rlconfig loads training hyperparameters and deadlines from YAML,
// adapted from the teacher's reinforcement.FromYaml: an outer Viper pass to
// locate the file, then a yaml.v3 marshal/unmarshal round trip into
// strongly-typed Go structs via mapstructure tags.
package rlconfig

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"cyberxp/rl"
)

// HyperParameter is one named floating point hyperparameter, e.g.
// {Key: "epsilon", Val: 0.2}.
type HyperParameter struct {
	Key string  `mapstructure:"key" yaml:"key"`
	Val float64 `mapstructure:"val" yaml:"val"`
}

// TrainingConfig is the top-level shape of a training YAML file: a flat
// list of hyperparameters, a per-goal algorithm selector, and an optional
// training deadline expressed as a duration string ("5m", "30s", ...).
type TrainingConfig struct {
	HyperParams      []HyperParameter  `mapstructure:"hyperParams" yaml:"hyperparams"`
	Algorithm        map[string]string `mapstructure:"algorithm" yaml:"algorithm"`
	TrainingDeadline map[string]string `mapstructure:"trainingDeadline" yaml:"trainingdeadline"`
}

// GetHyperParamOrDefault returns the named hyperparameter's value, or def if
// it is not present in the config.
func (c *TrainingConfig) GetHyperParamOrDefault(key string, def float64) float64 {
	for _, hp := range c.HyperParams {
		if hp.Key == key {
			return hp.Val
		}
	}
	return def
}

// WithTrainingDeadline returns the duration configured for goal, or def if
// unset or unparsable.
func (c *TrainingConfig) WithTrainingDeadline(goal string, def time.Duration) time.Duration {
	raw, ok := c.TrainingDeadline[goal]
	if !ok {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// ToRLConfig projects the flat hyperparameter list onto an rl.RLConfig,
// falling back to base for any hyperparameter the file does not set.
func (c *TrainingConfig) ToRLConfig(base rl.RLConfig) rl.RLConfig {
	cfg := base
	cfg.Epsilon = c.GetHyperParamOrDefault("epsilon", cfg.Epsilon)
	cfg.EpsilonReduction = c.GetHyperParamOrDefault("epsilonReduction", cfg.EpsilonReduction)
	cfg.FixedStepSize = c.GetHyperParamOrDefault("alpha", cfg.FixedStepSize)
	cfg.DiscountRate = c.GetHyperParamOrDefault("gamma", cfg.DiscountRate)
	cfg.InitialValue = c.GetHyperParamOrDefault("initialValue", cfg.InitialValue)
	if c.GetHyperParamOrDefault("sampleAverage", 0) != 0 {
		cfg.SampleAverage = true
	}
	return cfg
}

// FromYAML loads a TrainingConfig from path. Following the teacher's
// pattern, Viper is used only to locate and read the file; the actual
// decoding goes through a yaml.v3 marshal/unmarshal round trip of
// v.AllSettings(). Viper lowercases every key it reads, so the yaml tags
// above are the lowercased key names ("hyperparams", "trainingdeadline").
func FromYAML(path string) (*TrainingConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("rlconfig: reading %s: %w", path, err)
	}

	raw, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("rlconfig: re-marshaling %s: %w", path, err)
	}

	cfg := &TrainingConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("rlconfig: decoding %s: %w", path, err)
	}
	return cfg, nil
}
