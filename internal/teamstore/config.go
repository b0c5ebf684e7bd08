package teamstore

import "time"

// AckPolicyOverride mirrors one entry of teams/<team>/config.json's
// ack_policy map, layered on top of the spec.md 4.12 defaults exactly as
// the original team-chat service layers overrides onto DEFAULT_ACK_POLICY.
type AckPolicyOverride struct {
	MaxAttempts       int `json:"max_attempts,omitempty"`
	RetryDelaySeconds int `json:"retry_delay_seconds,omitempty"`
	AckTimeoutSeconds int `json:"ack_timeout_seconds,omitempty"`
}

// TeamConfig is the optional teams/<team>/config.json document. Absence is
// equivalent to an empty AckPolicy map (all types use spec.md defaults).
type TeamConfig struct {
	AckPolicy map[string]AckPolicyOverride `json:"ack_policy,omitempty"`
}

func (s *Store) loadTeamConfig(team string) (TeamConfig, error) {
	var cfg TeamConfig
	if err := readJSON(s.configPath(team), &cfg); err != nil {
		return TeamConfig{}, err
	}
	return cfg, nil
}

// resolvePolicy applies any config.json override for messageType on top
// of the spec.md 4.12 default policy.
func (s *Store) resolvePolicy(team, messageType string) deliveryPolicy {
	base := policyFor(messageType)
	cfg, err := s.loadTeamConfig(team)
	if err != nil {
		return base
	}
	override, ok := cfg.AckPolicy[messageType]
	if !ok {
		return base
	}
	if override.MaxAttempts > 0 {
		base.MaxAttempts = override.MaxAttempts
	}
	if override.RetryDelaySeconds > 0 {
		base.BaseDelay = time.Duration(override.RetryDelaySeconds) * time.Second
	}
	if override.AckTimeoutSeconds > 0 {
		base.AckTimeout = time.Duration(override.AckTimeoutSeconds) * time.Second
	}
	return base
}
