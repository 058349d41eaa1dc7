package signoff

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/messaging"
	"github.com/signoffhq/signoff/service/risk"
	"github.com/signoffhq/signoff/service/trust"
)

// Config is a serialisable representation of the approval-core configuration.
// It can be populated from JSON or YAML; the zero-value is useful - all
// nested fields inherit their package defaults.
type Config struct {
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Trust    TrustConfig    `json:"trust" yaml:"trust"`
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
	History  HistoryConfig  `json:"history" yaml:"history"`
	Queue    QueueConfig    `json:"queue" yaml:"queue"`
}

// RiskConfig overrides the assessor defaults when set.
type RiskConfig struct {
	Weights    *risk.Weights    `json:"weights,omitempty" yaml:"weights,omitempty"`
	Thresholds *risk.Thresholds `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// TrustConfig sets the requester's starting rank and the progression ladder.
type TrustConfig struct {
	InitialRank string        `json:"initialRank" yaml:"initialRank"`
	Ladder      *trust.Ladder `json:"ladder,omitempty" yaml:"ladder,omitempty"`
}

// ApprovalConfig tunes the coordinator.
type ApprovalConfig struct {
	Disabled         bool `json:"disabled" yaml:"disabled"`
	PendingTimeoutMs int  `json:"pendingTimeoutMs" yaml:"pendingTimeoutMs"`
	MaxPending       int  `json:"maxPending" yaml:"maxPending"`
}

// HistoryConfig tunes the history store.
type HistoryConfig struct {
	DefaultBranch string `json:"defaultBranch" yaml:"defaultBranch"`
	Author        string `json:"author" yaml:"author"`
}

// QueueConfig selects the notification queue vendor.
type QueueConfig struct {
	Vendor  string `json:"vendor" yaml:"vendor"`
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"` // fs vendor spool location
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Trust:   TrustConfig{InitialRank: string(model.TrustNovice)},
		History: HistoryConfig{DefaultBranch: "main", Author: "signoff"},
		Queue:   QueueConfig{Vendor: string(messaging.VendorMemory)},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Trust.InitialRank != "" && !model.TrustRank(c.Trust.InitialRank).IsValid() {
		return fmt.Errorf("trust.initialRank %q is not a valid rank", c.Trust.InitialRank)
	}
	if ladder := c.Trust.Ladder; ladder != nil {
		if ladder.ToLearning <= 0 || ladder.ToCollaborative <= ladder.ToLearning || ladder.ToTrusted <= ladder.ToCollaborative {
			return fmt.Errorf("trust.ladder thresholds must be positive and ascending")
		}
	}
	if t := c.Risk.Thresholds; t != nil {
		if t.Medium <= 0 || t.High <= t.Medium || t.Critical <= t.High {
			return fmt.Errorf("risk.thresholds must be positive and ascending")
		}
	}
	if c.Approval.PendingTimeoutMs < 0 {
		return fmt.Errorf("approval.pendingTimeoutMs must be >= 0")
	}
	switch messaging.Vendor(c.Queue.Vendor) {
	case messaging.VendorMemory, "":
	case messaging.VendorFs:
		if c.Queue.BaseURL == "" {
			return fmt.Errorf("queue.baseURL is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported queue vendor: %s", c.Queue.Vendor)
	}
	return nil
}

// LoadConfig reads a configuration from the URL, layered over the defaults.
// The codec follows the extension: .yaml/.yml decodes YAML, anything else
// JSON.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := DefaultConfig()
	lower := strings.ToLower(URL)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
