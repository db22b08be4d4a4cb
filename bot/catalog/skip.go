package catalog

import "strings"

// Answers is the read-only view the skip policy evaluates against.
type Answers interface {
	Value(Key) string
}

// Liquid and fertilizer cargo that makes load/unload method questions moot.
var liquidBulkCargo = map[string]struct{}{
	"КАС":     {},
	"РКД":     {},
	"АМ вода": {},
}

// Questions dropped from the shortened quick flow.
var quickSkip = map[Key]struct{}{
	KeySizeType:      {},
	KeyLoadMethod:    {},
	KeyUnloadMethod:  {},
	KeyLoadContact:   {},
	KeyUnloadContact: {},
	KeyNotes:         {},
	KeyCompany:       {},
}

// Skip reports whether the question should be bypassed given the answers
// recorded so far. The decision depends only on its inputs, so re-evaluating
// it after an edit yields the same outcome for unchanged answers.
func Skip(key Key, quick bool, a Answers) bool {
	if quick {
		if _, ok := quickSkip[key]; ok {
			return true
		}
	}
	switch key {
	case KeyLoadMethod, KeyUnloadMethod:
		if _, ok := liquidBulkCargo[NormalizeCargo(strings.TrimSpace(a.Value(KeyCargoType)))]; ok {
			return true
		}
		if key == KeyUnloadMethod && strings.TrimSpace(a.Value(KeySizeType)) == "Насип" {
			return true
		}
	}
	return false
}

// FillValue returns the placeholder stored for a skipped question.
// defaultCompany applies only to the quick-flow company question.
func FillValue(key Key, quick bool, a Answers, defaultCompany string) string {
	if key == KeyUnloadMethod && strings.TrimSpace(a.Value(KeySizeType)) == "Насип" {
		return BulkUnloadMethod
	}
	if quick && key == KeyCompany && defaultCompany != "" {
		return defaultCompany
	}
	return Placeholder
}

// NormalizeCargo canonicalizes cargo answers before they are stored.
// Any crop-prefixed free text collapses to the "Культура" category.
func NormalizeCargo(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(strings.ToLower(v), "культура") {
		return "Культура"
	}
	return v
}
