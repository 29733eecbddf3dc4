package xp

import "cyberxp/condition"

// FeatureReward adds Reward whenever the named feature satisfies Op against
// Value, e.g. {"can win 1", Equal, "1", 25}.
type FeatureReward struct {
	FeatureName string
	Op          condition.CompOp
	Value       string
	Reward      float64
}

// NewFeatureReward builds an equality feature reward, the common case used
// when narrowing to a two-value literal.
func NewFeatureReward(name, value string, reward float64) FeatureReward {
	return FeatureReward{FeatureName: name, Op: condition.Equal, Value: value, Reward: reward}
}

// EntityConditionReward adds Reward whenever Condition matches the state's
// entities.
type EntityConditionReward struct {
	Condition condition.EntityCondition
	Reward    float64
}

// StateRewardRules is a role's complete reward function: a base reward per
// classification result (InProgress included), plus feature- and entity-condition-triggered
// bonuses/penalties layered on top (used for reward shaping, e.g.
// tic-tac-toe's "can win" heuristics).
type StateRewardRules struct {
	ResultRewards          map[ActionResult]float64
	FeatureRewards         []FeatureReward
	EntityConditionRewards []EntityConditionReward
}

// Evaluate computes the total reward for a state classified as result, with
// env giving the feature/entity context the shaping rules examine.
func (rr StateRewardRules) Evaluate(result ActionResult, env condition.Environment) float64 {
	reward := rr.ResultRewards[result]
	for _, fr := range rr.FeatureRewards {
		if condition.Compare(env.Features[fr.FeatureName], fr.Op, fr.Value) {
			reward += fr.Reward
		}
	}
	for _, er := range rr.EntityConditionRewards {
		if er.Condition.Evaluate(env.Entities) {
			reward += er.Reward
		}
	}
	return reward
}
