package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vidora/vidora-web/internal/pkg/env"
)

// Payment holds the tunables of the checkout and payment-return flow.
type Payment struct {
	PendingDelay       time.Duration       `yaml:"pending_delay"`
	PendingAttempts    int                 `yaml:"pending_attempts"`
	ErrorDelay         time.Duration       `yaml:"error_delay"`
	ErrorAttempts      int                 `yaml:"error_attempts"`
	Countdown          time.Duration       `yaml:"countdown"`
	SnapshotTTL        time.Duration       `yaml:"snapshot_ttl"`
	SuccessDestination string              `yaml:"success_destination"`
	SupportURL         string              `yaml:"support_url"`
	PlansURL           string              `yaml:"plans_url"`
	ReferrerDomains    map[string][]string `yaml:"referrer_domains"`
}

// DefaultPayment returns the stock policy: 10 pending checks 3s apart,
// 5 failed checks 2s apart and a 5s success countdown.
func DefaultPayment() Payment {
	return Payment{
		PendingDelay:       3 * time.Second,
		PendingAttempts:    10,
		ErrorDelay:         2 * time.Second,
		ErrorAttempts:      5,
		Countdown:          5 * time.Second,
		SnapshotTTL:        30 * time.Minute,
		SuccessDestination: "/dashboard",
		SupportURL:         "/contact",
		PlansURL:           "/pricing",
	}
}

// LoadPayment reads a YAML policy file on top of the defaults. A missing
// file is not an error.
func LoadPayment(path string) (Payment, error) {
	cfg := DefaultPayment()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read payment config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultPayment(), fmt.Errorf("parse payment config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return DefaultPayment(), fmt.Errorf("invalid payment config %s: %w", path, err)
	}
	return cfg, nil
}

func (p Payment) validate() error {
	if p.PendingDelay <= 0 || p.ErrorDelay <= 0 {
		return errors.New("delays must be positive")
	}
	if p.PendingAttempts <= 0 || p.ErrorAttempts <= 0 {
		return errors.New("attempt bounds must be positive")
	}
	if p.Countdown < 0 {
		return errors.New("countdown must not be negative")
	}
	if !strings.HasPrefix(p.SuccessDestination, "/") {
		return errors.New("success_destination must be a local path")
	}
	return nil
}

var (
	paymentCfg  Payment
	paymentOnce sync.Once
)

// GetPayment loads PAYMENT_CONFIG_FILE once and falls back to the defaults
// when the file is broken.
func GetPayment() Payment {
	paymentOnce.Do(func() {
		path := env.GetEnv("PAYMENT_CONFIG_FILE", "config/payment.yaml")
		cfg, err := LoadPayment(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		}
		if v := env.GetEnv("SUPPORT_URL", ""); v != "" {
			cfg.SupportURL = v
		}
		paymentCfg = cfg
	})
	return paymentCfg
}
