package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds timing, navigation and scoring rules, independent of the item content.
type Policy struct {
	Profile          string     `json:"profile" yaml:"profile"`
	Title            string     `json:"title,omitempty" yaml:"title,omitempty"`
	FullTimeLimitSec int        `json:"full_time_limit_sec,omitempty" yaml:"full_time_limit_sec,omitempty"` // 0 = sum of sections
	Sections         []Section  `json:"sections" yaml:"sections"`
	Navigation       Navigation `json:"navigation,omitempty" yaml:"navigation,omitempty"`
	Scoring          Scoring    `json:"scoring,omitempty" yaml:"scoring,omitempty"`
}

type Section struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Color        string `json:"color,omitempty" yaml:"color,omitempty"`
	TimeLimitSec int    `json:"time_limit_sec" yaml:"time_limit_sec"`
	Questions    int    `json:"questions,omitempty" yaml:"questions,omitempty"` // 0 = every bank question
}

type Navigation struct {
	LockBack bool `json:"lock_back,omitempty" yaml:"lock_back,omitempty"`
}

type Scoring struct {
	RawToScale string `json:"raw_to_scale,omitempty" yaml:"raw_to_scale,omitempty"` // key for scale mapper, e.g. "hp.v1.scale"
}

// Section looks up a section by id.
func (p Policy) Section(id string) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// FullTimeLimit is the budget of a full test in seconds.
func (p Policy) FullTimeLimit() int {
	if p.FullTimeLimitSec > 0 {
		return p.FullTimeLimitSec
	}
	total := 0
	for _, s := range p.Sections {
		total += s.TimeLimitSec
	}
	return total
}

// SectionTimeLimit is the budget of a single-section run in seconds.
func (p Policy) SectionTimeLimit(id string) (int, bool) {
	s, ok := p.Section(id)
	if !ok {
		return 0, false
	}
	return s.TimeLimitSec, true
}

// SectionOrder returns section ids in delivery order.
func (p Policy) SectionOrder() []string {
	out := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		out = append(out, s.ID)
	}
	return out
}

// ValidatePolicy runs basic consistency checks.
func ValidatePolicy(pol *Policy) error {
	if pol == nil {
		return errors.New("policy is required")
	}
	if len(pol.Sections) == 0 {
		return errors.New("policy has no sections")
	}
	seen := map[string]bool{}
	for _, s := range pol.Sections {
		if s.ID == "" {
			return errors.New("section.id is required")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate section id: %s", s.ID)
		}
		seen[s.ID] = true
		if s.TimeLimitSec <= 0 {
			return fmt.Errorf("section %s: time_limit_sec must be positive", s.ID)
		}
		if s.Questions < 0 {
			return fmt.Errorf("section %s: negative question count", s.ID)
		}
	}
	if pol.FullTimeLimitSec < 0 {
		return errors.New("negative full_time_limit_sec")
	}
	return nil
}

// LoadPolicy reads a YAML policy file and validates it.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	var pol Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pol); err != nil {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Policy{}, errors.New("parse policy: multiple documents are not supported")
		}
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	if err := ValidatePolicy(&pol); err != nil {
		return Policy{}, err
	}
	return pol, nil
}
