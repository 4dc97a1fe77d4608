// Package hp is the university-admission aptitude test profile: eight
// sections split into a verbal and a quantitative half, scored 0.00–2.00.
package hp

import (
	"fmt"

	"github.com/mind-engage/mocktest/internal/formats"
)

const (
	ProfileKey = "hp.v1"
	ScaleKey   = "hp.v1.scale"
)

func init() {
	formats.Register(ProfileKey, Profile{})
	formats.RegisterScale(ScaleKey, Scale)
}

// verbal sections are blue, quantitative green
var defaultSections = []formats.Section{
	{ID: "ORD", Title: "Ordförståelse", Color: "#1e88e5", TimeLimitSec: 5 * 60, Questions: 10},
	{ID: "LAS", Title: "Svensk läsförståelse", Color: "#1565c0", TimeLimitSec: 20 * 60, Questions: 10},
	{ID: "MEK", Title: "Meningskomplettering", Color: "#42a5f5", TimeLimitSec: 10 * 60, Questions: 10},
	{ID: "ELF", Title: "Engelsk läsförståelse", Color: "#0d47a1", TimeLimitSec: 20 * 60, Questions: 10},
	{ID: "XYZ", Title: "Matematisk problemlösning", Color: "#43a047", TimeLimitSec: 15 * 60, Questions: 12},
	{ID: "KVA", Title: "Kvantitativa jämförelser", Color: "#2e7d32", TimeLimitSec: 10 * 60, Questions: 10},
	{ID: "NOG", Title: "Kvantitativa resonemang", Color: "#66bb6a", TimeLimitSec: 10 * 60, Questions: 6},
	{ID: "DTK", Title: "Diagram, tabeller och kartor", Color: "#1b5e20", TimeLimitSec: 20 * 60, Questions: 12},
}

// option counts per section; sections not listed accept any count >= 2
var optionCounts = map[string]int{
	"ORD": 5,
	"KVA": 4,
	"NOG": 5,
}

type Profile struct{}

// Policy returns the default hp layout. The full test budget is the sum of
// the section budgets.
func (Profile) Policy() formats.Policy {
	secs := make([]formats.Section, len(defaultSections))
	copy(secs, defaultSections)
	return formats.Policy{
		Profile:  ProfileKey,
		Title:    "Högskoleprovet",
		Sections: secs,
		Scoring:  formats.Scoring{RawToScale: ScaleKey},
	}
}

func (Profile) Validate(pol formats.Policy, qs []formats.QuestionLike) error {
	if err := formats.ValidatePolicy(&pol); err != nil {
		return err
	}
	if err := formats.ValidateQuestions(pol, qs); err != nil {
		return err
	}
	for _, q := range qs {
		want, ok := optionCounts[q.GetSectionCode()]
		if ok && len(q.GetOptions()) != want {
			return fmt.Errorf("%s: %s question %s must have exactly %d options", ProfileKey, q.GetSectionCode(), q.GetID(), want)
		}
	}
	return nil
}
