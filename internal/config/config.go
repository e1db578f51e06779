// Package config loads lexiq settings from defaults, a .env file, LEXIQ_*
// environment variables, an optional config file and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/lexiq/internal/chain"
	"github.com/abhisek/lexiq/internal/interleave"
	"github.com/abhisek/lexiq/internal/relcache"
	"github.com/abhisek/lexiq/internal/session"
	"github.com/abhisek/lexiq/internal/spacedrep"
	"github.com/abhisek/lexiq/internal/store"
)

// ErrInvalidConfig is returned (wrapped) when loaded values fail validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// EnvPrefix prefixes every environment variable, e.g. LEXIQ_REDIS_ADDR.
const EnvPrefix = "LEXIQ"

// Keys. Dots become underscores in environment variable names.
const (
	KeyDB              = "db"
	KeyRedisAddr       = "redis.addr"
	KeyRedisTTL        = "redis.ttl"
	KeyLogMode         = "log.mode"
	KeyLogLevel        = "log.level"
	KeyEasiness        = "schedule.easiness"
	KeyAtRiskThreshold = "schedule.at_risk_threshold"
	KeyMaxNew          = "schedule.max_new"
	KeyDebugTopN       = "schedule.debug_top"
	KeyTargetRatio     = "interleave.target_ratio"
	KeyMinRatio        = "interleave.min_ratio"
	KeyMaxRatio        = "interleave.max_ratio"
	KeyWindow          = "interleave.window"
	KeyClusterMax      = "chain.cluster_max"
	KeySequenceMax     = "chain.sequence_cluster_max"
	KeyStrengthCutoff  = "chain.strength_cutoff"
	KeyDiffWindow      = "chain.difficulty_window"
	KeyReviewInterval  = "chain.review_interval"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":        KeyDB,
	"redis":     KeyRedisAddr,
	"log":       KeyLogMode,
	"log-level": KeyLogLevel,
	"max-new":   KeyMaxNew,
	"top":       KeyDebugTopN,
}

// Config is the resolved application configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means store.DefaultDBPath.
	DBPath string
	// RedisAddr enables the shared relation cache when set.
	RedisAddr string
	RedisTTL  time.Duration

	LogMode  string
	LogLevel string

	Easiness         float64
	AtRiskThreshold  int
	MaxNewPerSession int
	DebugTopN        int

	Interleave interleave.Config
	Chain      chain.Config
}

// Default returns the built-in configuration.
func Default() Config {
	sched := spacedrep.DefaultConfig()
	return Config{
		RedisTTL:         relcache.DefaultTTL,
		LogMode:          "dev",
		LogLevel:         "warn",
		Easiness:         sched.Easiness,
		AtRiskThreshold:  sched.AtRiskThreshold,
		MaxNewPerSession: session.DefaultMaxNewPerSession,
		DebugTopN:        session.DefaultDebugTopN,
		Interleave:       interleave.DefaultConfig(),
		Chain:            chain.DefaultConfig(),
	}
}

// Options controls where Load looks for settings.
type Options struct {
	// Flags are bound by name (see flagKeys). Only flags the user changed
	// override other sources. A "config" flag names the config file.
	Flags *pflag.FlagSet
	// EnvFiles are loaded into the environment before reading LEXIQ_*
	// variables. Missing files are ignored. Defaults to ".env".
	EnvFiles []string
	// ConfigFile overrides the "config" flag and LEXIQ_CONFIG.
	ConfigFile string
}

// Load resolves and validates the configuration.
func Load(opts Options) (Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	file := opts.ConfigFile
	if file == "" && opts.Flags != nil {
		if f := opts.Flags.Lookup("config"); f != nil {
			file = f.Value.String()
		}
	}
	if file == "" {
		file = v.GetString("config")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault(KeyDB, d.DBPath)
	v.SetDefault(KeyRedisAddr, d.RedisAddr)
	v.SetDefault(KeyRedisTTL, d.RedisTTL)
	v.SetDefault(KeyLogMode, d.LogMode)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyEasiness, d.Easiness)
	v.SetDefault(KeyAtRiskThreshold, d.AtRiskThreshold)
	v.SetDefault(KeyMaxNew, d.MaxNewPerSession)
	v.SetDefault(KeyDebugTopN, d.DebugTopN)
	v.SetDefault(KeyTargetRatio, d.Interleave.TargetRatio)
	v.SetDefault(KeyMinRatio, d.Interleave.MinRatio)
	v.SetDefault(KeyMaxRatio, d.Interleave.MaxRatio)
	v.SetDefault(KeyWindow, d.Interleave.Window)
	v.SetDefault(KeyClusterMax, d.Chain.ClusterMaxSize)
	v.SetDefault(KeySequenceMax, d.Chain.SequenceClusterMax)
	v.SetDefault(KeyStrengthCutoff, d.Chain.StrengthCutoff)
	v.SetDefault(KeyDiffWindow, d.Chain.DifficultyWindow)
	v.SetDefault(KeyReviewInterval, d.Chain.ReviewInterval)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		DBPath:           v.GetString(KeyDB),
		RedisAddr:        v.GetString(KeyRedisAddr),
		RedisTTL:         v.GetDuration(KeyRedisTTL),
		LogMode:          v.GetString(KeyLogMode),
		LogLevel:         v.GetString(KeyLogLevel),
		Easiness:         v.GetFloat64(KeyEasiness),
		AtRiskThreshold:  v.GetInt(KeyAtRiskThreshold),
		MaxNewPerSession: v.GetInt(KeyMaxNew),
		DebugTopN:        v.GetInt(KeyDebugTopN),
		Interleave: interleave.Config{
			TargetRatio: v.GetFloat64(KeyTargetRatio),
			MinRatio:    v.GetFloat64(KeyMinRatio),
			MaxRatio:    v.GetFloat64(KeyMaxRatio),
			Window:      v.GetInt(KeyWindow),
		},
		Chain: chain.Config{
			ClusterMaxSize:     v.GetInt(KeyClusterMax),
			SequenceClusterMax: v.GetInt(KeySequenceMax),
			StrengthCutoff:     v.GetInt(KeyStrengthCutoff),
			DifficultyWindow:   v.GetInt(KeyDiffWindow),
			ReviewInterval:     v.GetInt(KeyReviewInterval),
		},
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	switch strings.ToLower(c.LogMode) {
	case "dev", "development", "prod", "production":
	default:
		add("log mode %q: want dev or prod", c.LogMode)
	}
	if c.RedisTTL < 0 {
		add("redis ttl %s is negative", c.RedisTTL)
	}
	if c.Easiness <= 0 {
		add("easiness %g must be positive", c.Easiness)
	}
	if c.AtRiskThreshold < 0 || c.AtRiskThreshold > spacedrep.MaxRisk {
		add("at-risk threshold %d outside [0, %d]", c.AtRiskThreshold, spacedrep.MaxRisk)
	}
	if c.MaxNewPerSession < 0 {
		add("max new per session %d is negative", c.MaxNewPerSession)
	}
	if c.DebugTopN <= 0 {
		add("debug top %d must be positive", c.DebugTopN)
	}
	if err := c.Interleave.Validate(); err != nil {
		add("%v", err)
	}
	ch := c.Chain
	if ch.ClusterMaxSize <= 0 || ch.SequenceClusterMax <= 0 || ch.DifficultyWindow <= 0 || ch.ReviewInterval <= 0 {
		add("chain sizes must be positive: %+v", ch)
	}
	if ch.StrengthCutoff < 0 || ch.StrengthCutoff > 100 {
		add("chain strength cutoff %d outside [0, 100]", ch.StrengthCutoff)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(errs, "\n  "))
	}
	return nil
}

// Session returns the planner configuration.
func (c Config) Session() session.Config {
	return session.Config{
		Priority: spacedrep.Config{
			Easiness:        c.Easiness,
			AtRiskThreshold: c.AtRiskThreshold,
		},
		Interleave:       c.Interleave,
		Chain:            c.Chain,
		MaxNewPerSession: c.MaxNewPerSession,
		DebugTopN:        c.DebugTopN,
	}
}

// DatabasePath returns DBPath, falling back to store.DefaultDBPath. The
// parent directory is created.
func (c Config) DatabasePath() (string, error) {
	if c.DBPath == "" {
		return store.DefaultDBPath()
	}
	return c.DBPath, store.EnsureDir(c.DBPath)
}
