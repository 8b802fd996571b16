package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/parqo/internal/plate"
	"github.com/spf13/viper"
)

// BillingConfig carries the operator-tunable billing knobs.
type BillingConfig struct {
	PlatePatterns         []string `mapstructure:"platePatterns"`
	GenerationLockSeconds int      `mapstructure:"generationLockSeconds"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		PlatePatterns:         plate.DefaultPatterns,
		GenerationLockSeconds: 120,
	}
}

// GenerationLockTTL is the redis lock lifetime for one invoice run.
func (c BillingConfig) GenerationLockTTL() time.Duration {
	return time.Duration(c.GenerationLockSeconds) * time.Second
}

type billingState struct {
	cfg       BillingConfig
	validator *plate.Validator
}

// BillingConfigHolder serves the current billing config and hot-reloads it
// when billing.yml changes on disk.
type BillingConfigHolder struct {
	current atomic.Value // holds billingState
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/parqo/config") // Volume-mounted config
	v.AddConfigPath("/etc/parqo")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("PARQO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.platePatterns", defaults.PlatePatterns)
		v.SetDefault("billing.generationLockSeconds", defaults.GenerationLockSeconds)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	state, err := buildBillingState(cfg)
	if err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(state)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		state, err := buildBillingState(updated)
		if err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(state)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder builds a holder around a fixed config, with
// no file watching. Used by tests and tooling.
func NewStaticBillingConfigHolder(cfg BillingConfig) (*BillingConfigHolder, error) {
	state, err := buildBillingState(cfg)
	if err != nil {
		return nil, err
	}
	holder := &BillingConfigHolder{}
	holder.current.Store(state)
	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(billingState).cfg
}

// PlateValidator returns the validator compiled from the current patterns.
func (h *BillingConfigHolder) PlateValidator() *plate.Validator {
	return h.current.Load().(billingState).validator
}

func buildBillingState(cfg BillingConfig) (billingState, error) {
	if cfg.GenerationLockSeconds <= 0 {
		return billingState{}, errors.New("billing.generationLockSeconds must be positive")
	}
	validator, err := plate.NewValidator(cfg.PlatePatterns)
	if err != nil {
		return billingState{}, err
	}
	return billingState{cfg: cfg, validator: validator}, nil
}
