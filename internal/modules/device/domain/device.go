package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

type Capability string

const (
	CapabilityRecognize Capability = "recognize"
	CapabilityLiveness  Capability = "liveness"
)

// DefaultMinConfidence is the match score below which a recognition is
// treated as no match.
const DefaultMinConfidence = 0.8

var (
	ErrDeviceDisabled    = errors.New("scanner device is disabled")
	ErrChecksumMismatch  = errors.New("scanner device checksum mismatch")
	ErrCapabilityMissing = errors.New("scanner device capability missing")
	ErrDeviceNotFound    = errors.New("scanner device not found")
	ErrDeviceTimeout     = errors.New("scanner device timeout")
	ErrNoMatch           = errors.New("no confident match")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name          string       `json:"name"`
	Version       string       `json:"version"`
	Binary        string       `json:"binary"`
	SHA256        string       `json:"sha256"`
	Enabled       bool         `json:"enabled"`
	Capabilities  []Capability `json:"capabilities"`
	MinConfidence float64      `json:"min_confidence,omitempty"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("device name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("device version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("device binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("device sha256 must be lowercase 64-char hex")
	}
	if m.MinConfidence < 0 || m.MinConfidence > 1 {
		return fmt.Errorf("device min_confidence must be within [0,1]")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("device capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (m Manifest) HasCapability(capability Capability) bool {
	return slices.Contains(m.Capabilities, capability)
}

// Threshold is the manifest's confidence floor, or the default when unset.
func (m Manifest) Threshold() float64 {
	if m.MinConfidence == 0 {
		return DefaultMinConfidence
	}
	return m.MinConfidence
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityRecognize, CapabilityLiveness:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

type Metadata struct {
	Name         string
	Version      string
	Model        string
	Capabilities []Capability
}

type RecognizeRequest struct {
	Hint       string
	CapturedAt time.Time
}

func (r RecognizeRequest) Validate() error {
	if strings.TrimSpace(r.Hint) == "" {
		return fmt.Errorf("recognition hint is required")
	}
	return nil
}

type Recognition struct {
	Matched     bool
	StudentID   string
	DisplayName string
	Confidence  float64
}

// Accept reports whether the recognition clears threshold.
func (r Recognition) Accept(threshold float64) error {
	if !r.Matched {
		return ErrNoMatch
	}
	if r.Confidence < threshold {
		return fmt.Errorf("%w: confidence %.2f below %.2f", ErrNoMatch, r.Confidence, threshold)
	}
	if strings.TrimSpace(r.DisplayName) == "" && strings.TrimSpace(r.StudentID) == "" {
		return fmt.Errorf("%w: device returned an empty identity", ErrNoMatch)
	}
	return nil
}
