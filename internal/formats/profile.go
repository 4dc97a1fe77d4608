package formats

import (
	"errors"
	"fmt"
)

// Profile bundles the default policy of an assessment family with its
// content checks.
type Profile interface {
	Policy() Policy
	Validate(pol Policy, qs []QuestionLike) error
}

// QuestionLike is the minimal surface we need from the exam question model.
// (Prevents import cycles: the formats layer doesn't depend on the exam pkg.)
type QuestionLike interface {
	GetID() string
	GetSectionCode() string
	GetOptions() []string
	GetCorrectAnswer() string
}

// Registry of profiles by key (e.g. "hp.v1").
var registry = map[string]Profile{}

// Register a profile. Call from init() in subpackages.
func Register(key string, p Profile) { registry[key] = p }

// Lookup returns a registered profile.
func Lookup(key string) (Profile, bool) { p, ok := registry[key]; return p, ok }

// ValidateQuestions enforces profile-independent constraints: unique ids,
// known sections, at least two options and a correct answer among them.
func ValidateQuestions(pol Policy, qs []QuestionLike) error {
	seen := map[string]bool{}
	for _, q := range qs {
		id := q.GetID()
		if id == "" {
			return errors.New("question id is required")
		}
		if seen[id] {
			return fmt.Errorf("duplicate question id: %s", id)
		}
		seen[id] = true
		if _, ok := pol.Section(q.GetSectionCode()); !ok {
			return fmt.Errorf("question %s: unknown section %q", id, q.GetSectionCode())
		}
		opts := q.GetOptions()
		if len(opts) < 2 {
			return fmt.Errorf("question %s: needs at least two options", id)
		}
		found := false
		for _, o := range opts {
			if o == q.GetCorrectAnswer() {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("question %s: correct answer is not one of the options", id)
		}
	}
	return nil
}
