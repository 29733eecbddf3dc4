package assistant

import "cyberxp/rl"

// AgentMaker constructs an rl.Agent from a configuration. The default maker
// always builds the reference QLearningAgent; callers with a different
// learning algorithm in mind supply their own via SetCustomAgentMaker.
type AgentMaker func(cfg rl.Configuration) rl.Agent

// DefaultAgentMaker builds the reference tabular Q-learning agent.
var DefaultAgentMaker AgentMaker = func(cfg rl.Configuration) rl.Agent {
	rlCfg, ok := cfg.(rl.RLConfig)
	if !ok {
		rlCfg = rl.DefaultRLConfig()
	}
	return rl.NewQLearningAgent(rlCfg)
}

var customAgentMaker AgentMaker

// SetCustomAgentMaker overrides the agent constructor MakeAgent uses. A nil
// maker restores DefaultAgentMaker.
func SetCustomAgentMaker(maker AgentMaker) {
	customAgentMaker = maker
}

// MakeAgent builds an agent from cfg using the custom maker if one has been
// set via SetCustomAgentMaker, falling back to DefaultAgentMaker otherwise.
func MakeAgent(cfg rl.Configuration) rl.Agent {
	if customAgentMaker != nil {
		return customAgentMaker(cfg)
	}
	return DefaultAgentMaker(cfg)
}
