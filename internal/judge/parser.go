package judge

import (
	"encoding/json"
	"fmt"
	"math"
)

// wireJudgment is the schema the model is asked to return. Pointer fields
// distinguish "absent" from zero values so required fields can be enforced.
type wireJudgment struct {
	Score           *float64            `json:"score"`
	Verdict         string              `json:"verdict"`
	Reasoning       *Reasoning          `json:"reasoning"`
	RedFlags        []string            `json:"red_flags"`
	Recommendations []string            `json:"recommendations"`
	External        *ExternalValidation `json:"external_validation"`
}

// ParseJudgment extracts the first balanced JSON object from the model's
// free-text reply, validates it against the judgment schema, clamps the
// score into [0,100] and re-derives the verdict from the clamped score.
// The model's own verdict label is ignored: it can disagree with its own
// numeric score.
func ParseJudgment(raw string) (*Judgment, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var w wireJudgment
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return nil, fmt.Errorf("parse judgment: %w", err)
	}

	if w.Score == nil {
		return nil, fmt.Errorf("parse judgment: missing score")
	}
	if w.Reasoning == nil {
		return nil, fmt.Errorf("parse judgment: missing reasoning")
	}
	if err := validateReasoning(w.Reasoning); err != nil {
		return nil, err
	}

	score := ClampScore(*w.Score)

	j := &Judgment{
		Score:           score,
		Verdict:         DeriveVerdict(score),
		Reasoning:       *w.Reasoning,
		RedFlags:        w.RedFlags,
		Recommendations: w.Recommendations,
		External:        w.External,
	}
	if j.RedFlags == nil {
		j.RedFlags = []string{}
	}
	if j.Recommendations == nil {
		j.Recommendations = []string{}
	}
	return j, nil
}

func validateReasoning(r *Reasoning) error {
	fields := map[string]string{
		"summary":               r.Summary,
		"market_analysis":       r.MarketAnalysis,
		"competitive_landscape": r.CompetitiveLandscape,
		"execution_risk":        r.ExecutionRisk,
		"revenue_potential":     r.RevenuePotential,
	}
	for name, v := range fields {
		if v == "" {
			return fmt.Errorf("parse judgment: reasoning missing %s", name)
		}
	}
	return nil
}

// ClampScore pulls out-of-range scores to the nearest bound rather than
// rejecting them. Fractional scores are rounded to the nearest integer.
func ClampScore(s float64) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return int(math.Round(s))
}

// DeriveVerdict maps a clamped score onto the verdict scale.
func DeriveVerdict(score int) Verdict {
	switch {
	case score >= shipThreshold:
		return VerdictShip
	case score >= validateThreshold:
		return VerdictValidate
	default:
		return VerdictKill
	}
}

// extractJSONObject returns the first balanced JSON object in s: from the
// first '{' to its matching '}', skipping braces inside string literals.
func extractJSONObject(s string) (string, error) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start = i
			break
		}
	}
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in model output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in model output")
}
