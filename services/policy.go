package services

import (
	"embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed config/policy.yaml
var policyYAML embed.FS

// PolicyEnvVar names the environment variable that points at a policy file.
const PolicyEnvVar = "BUILDLEDGER_POLICY"

// Policy holds the adjustable constants used by the calculation engines.
type Policy struct {
	Variance struct {
		CautionPercent float64 `yaml:"caution_percent"`
	} `yaml:"variance"`
	SOV struct {
		DefaultRetainagePercent float64 `yaml:"default_retainage_percent"`
	} `yaml:"sov"`
	Estimate struct {
		DefaultTaxRate float64 `yaml:"default_tax_rate"`
	} `yaml:"estimate"`
}

// CautionThreshold returns the variance percentage that separates caution
// from unfavorable bids.
func (p Policy) CautionThreshold() decimal.Decimal {
	return Dec(p.Variance.CautionPercent)
}

// DefaultRetainage returns the retainage percent applied to new SOV lines.
func (p Policy) DefaultRetainage() decimal.Decimal {
	return Dec(p.SOV.DefaultRetainagePercent)
}

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() Policy {
	data, err := policyYAML.ReadFile("config/policy.yaml")
	if err != nil {
		panic(fmt.Sprintf("policy: embedded policy.yaml missing: %v", err))
	}
	p, err := ParsePolicy(data)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded policy.yaml invalid: %v", err))
	}
	return p
}

// ParsePolicy decodes a YAML policy. Keys that are absent keep the embedded
// defaults.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	p.Variance.CautionPercent = 10
	p.SOV.DefaultRetainagePercent = 10
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	if p.Variance.CautionPercent < 0 {
		return Policy{}, fmt.Errorf("parse policy: variance.caution_percent must not be negative")
	}
	return p, nil
}

// LoadPolicy reads the policy file named by BUILDLEDGER_POLICY, falling back
// to the embedded defaults when the variable is unset.
func LoadPolicy() (Policy, error) {
	path := os.Getenv(PolicyEnvVar)
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}
