package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBilling() BillingConfig {
	return BillingConfig{
		FreeDailyLimit:   3,
		TextCost:         0.10,
		ImageCost:        0.04,
		SubscriptionDays: 30,
		SubscriberBudget: 6.0,
	}
}

func TestBillingConfig_Validate(t *testing.T) {
	cfg := validBilling()
	assert.NoError(t, cfg.Validate())
}

func TestBillingConfig_Validate_RejectsBadConstants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BillingConfig)
	}{
		{"zero free limit", func(c *BillingConfig) { c.FreeDailyLimit = 0 }},
		{"negative text cost", func(c *BillingConfig) { c.TextCost = -0.10 }},
		{"zero image cost", func(c *BillingConfig) { c.ImageCost = 0 }},
		{"zero subscription days", func(c *BillingConfig) { c.SubscriptionDays = 0 }},
		{"negative budget", func(c *BillingConfig) { c.SubscriberBudget = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBilling()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
