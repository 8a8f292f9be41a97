// Package daemon assembles and runs a curia node: configuration, the
// component stores, the engine, the audit journal, and the HTTP API,
// with graceful shutdown on context cancel.
package daemon

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/curia-network/curia/internal/domain"
)

// Config is the full daemon configuration, loaded from TOML.
type Config struct {
	API     APIConfig     `toml:"api"`
	Engine  EngineConfig  `toml:"engine"`
	Epoch   EpochConfig   `toml:"epoch"`
	Journal JournalConfig `toml:"journal"`
	Badges  BadgesConfig  `toml:"badges"`
}

// APIConfig configures the HTTP listener and its guards.
type APIConfig struct {
	Host              string   `toml:"host"`
	Port              int      `toml:"port"`
	AuthSecret        string   `toml:"auth_secret"`
	EnableMetrics     bool     `toml:"enable_metrics"`
	CORSOrigins       []string `toml:"cors_origins"`
	AllowTimeOverride bool     `toml:"allow_time_override"`
}

// EngineConfig sets the boot values of the governed parameters and the
// engine's award schedule. decay_rate_per_second is a decimal string
// ("0.000001157"); everything else is integral.
type EngineConfig struct {
	DecayRatePerSecond   string `toml:"decay_rate_per_second"`
	VotingPeriodSeconds  uint64 `toml:"voting_period_seconds"`
	QuorumWeight         uint64 `toml:"quorum_weight"`
	MinimumDeposit       uint64 `toml:"minimum_deposit"`
	RequiredRevealQuorum uint32 `toml:"required_reveal_quorum"`
	UnbondLockSeconds    uint64 `toml:"unbond_lock_seconds"`
	SubmissionBond       uint64 `toml:"submission_bond"`
	ContributorAward     int64  `toml:"contributor_award"`
	VerifierAward        uint64 `toml:"verifier_award"`
	HistoryLimit         int    `toml:"history_limit"`
}

// EpochConfig pins the epoch clock.
type EpochConfig struct {
	Genesis            string `toml:"genesis"` // RFC3339; empty means process start
	EpochLengthSeconds uint64 `toml:"epoch_length_seconds"`
}

// JournalConfig points at the sqlite audit journal.
type JournalConfig struct {
	Path string `toml:"path"` // empty disables journaling
}

// BadgesConfig points at an operator badge catalog.
type BadgesConfig struct {
	Catalog string `toml:"catalog"` // YAML path; empty keeps built-ins only
}

// DefaultConfig returns the boot defaults: local-only API, decay off,
// 72h voting window, 7d unbond lock, journaling disabled.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 9333,
		},
		Engine: EngineConfig{
			DecayRatePerSecond:   "0",
			VotingPeriodSeconds:  259_200,
			QuorumWeight:         25,
			MinimumDeposit:       100,
			RequiredRevealQuorum: 2,
			UnbondLockSeconds:    604_800,
			SubmissionBond:       50,
			ContributorAward:     25,
			VerifierAward:        5,
			HistoryLimit:         1000,
		},
		Epoch: EpochConfig{
			EpochLengthSeconds: 86_400,
		},
	}
}

// Load reads a TOML config file over the defaults and validates it.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c Config) Validate() error {
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := parseDecayRate(c.Engine.DecayRatePerSecond); err != nil {
		return err
	}
	if c.Engine.VotingPeriodSeconds == 0 {
		return fmt.Errorf("engine.voting_period_seconds must be positive")
	}
	if c.Engine.RequiredRevealQuorum == 0 {
		return fmt.Errorf("engine.required_reveal_quorum must be positive")
	}
	if c.Engine.HistoryLimit < 0 {
		return fmt.Errorf("engine.history_limit must not be negative")
	}
	if c.Epoch.Genesis != "" {
		if _, err := time.Parse(time.RFC3339, c.Epoch.Genesis); err != nil {
			return fmt.Errorf("epoch.genesis: %w", err)
		}
	}
	if c.Epoch.EpochLengthSeconds == 0 {
		return fmt.Errorf("epoch.epoch_length_seconds must be positive")
	}
	return nil
}

// parseDecayRate converts a decimal per-second rate such as
// "0.000001157" into 1e18 fixed point. Rates above 1.0 are rejected;
// digits beyond the 18th fractional place are below the fixed-point
// resolution and are dropped.
func parseDecayRate(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decay rate %q: %w", s, err)
	}
	if len(fracPart) > 18 {
		fracPart = fracPart[:18]
	}
	var frac uint64
	if fracPart != "" {
		frac, err = strconv.ParseUint(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decay rate %q: %w", s, err)
		}
		for i := len(fracPart); i < 18; i++ {
			frac *= 10
		}
	}
	if whole > 1 || (whole == 1 && frac > 0) {
		return 0, fmt.Errorf("decay rate %q above 1.0", s)
	}
	return whole*domain.RateScale + frac, nil
}
