package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const degradedSummaryRunes = 500

var (
	degradedActionPlan = []string{
		"Review the detailed analysis for prioritized governance actions",
		"Address missing high-priority controls first",
		"Schedule a follow-up assessment once remediation is underway",
	}
	degradedTimeline        = "See the detailed analysis for recommended timelines"
	degradedRiskAssessment  = "See the detailed analysis for the current risk posture"
	degradedRecommendations = []string{
		"Review the detailed analysis with your governance team",
		"Prioritize high-priority security and access controls",
		"Re-run the assessment after remediation",
	}
)

var errIncompleteReply = errors.New("reply is missing required fields")

// ParseReply decodes a model reply into a Narrative. The reply must be a single
// JSON object, optionally inside a ```json fence, with exactly the six
// narrative fields populated.
func ParseReply(raw string) (Narrative, error) {
	body := stripFence(raw)
	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var reply struct {
		ExecutiveSummary *string  `json:"executiveSummary"`
		DetailedAnalysis *string  `json:"detailedAnalysis"`
		ActionPlan       []string `json:"actionPlan"`
		Timeline         *string  `json:"timeline"`
		RiskAssessment   *string  `json:"riskAssessment"`
		Recommendations  []string `json:"recommendations"`
	}
	if err := dec.Decode(&reply); err != nil {
		return Narrative{}, fmt.Errorf("decode reply: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Narrative{}, errors.New("decode reply: trailing data after object")
	}

	if blank(reply.ExecutiveSummary) || blank(reply.DetailedAnalysis) || blank(reply.Timeline) ||
		blank(reply.RiskAssessment) || !filled(reply.ActionPlan) || !filled(reply.Recommendations) {
		return Narrative{}, errIncompleteReply
	}
	return Narrative{
		ExecutiveSummary: *reply.ExecutiveSummary,
		DetailedAnalysis: *reply.DetailedAnalysis,
		ActionPlan:       reply.ActionPlan,
		Timeline:         *reply.Timeline,
		RiskAssessment:   *reply.RiskAssessment,
		Recommendations:  reply.Recommendations,
	}, nil
}

// Degraded wraps an unparsable model reply in the narrative shape.
func Degraded(raw string) Narrative {
	return Narrative{
		ExecutiveSummary: truncateRunes(raw, degradedSummaryRunes),
		DetailedAnalysis: raw,
		ActionPlan:       append([]string(nil), degradedActionPlan...),
		Timeline:         degradedTimeline,
		RiskAssessment:   degradedRiskAssessment,
		Recommendations:  append([]string(nil), degradedRecommendations...),
	}
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string, e.g. "json"
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func filled(list []string) bool {
	if len(list) == 0 {
		return false
	}
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
