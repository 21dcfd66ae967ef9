package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"support-rag/internal/config"
	"support-rag/internal/models"
)

// fixedPicker always chooses the same index.
type fixedPicker int

func (p fixedPicker) Pick(n int) int {
	if int(p) >= n {
		return n - 1
	}
	return int(p)
}

func candidate(id, content, url string) models.ScoredCandidate {
	return models.ScoredCandidate{
		Document: models.Document{ID: id, Content: content, Metadata: models.Metadata{SourceURL: url}},
	}
}

const admissionsContent = "Admission Process. To apply, submit your application online before June 1st. " +
	"Required documents include transcripts and ID proof. Fees are due at enrollment."

func TestSynthesize_AdmissionsExample(t *testing.T) {
	r := NewRAG(nil, nil)

	answer := r.Synthesize("How do I apply for admission?", []models.ScoredCandidate{
		candidate("adm", admissionsContent, "https://example.edu/admissions"),
	})

	assert.Equal(t,
		"Based on our information (Sources: https://example.edu/admissions): "+
			"To apply, submit your application online before June 1st.",
		answer.Response)
	assert.Equal(t, []string{"https://example.edu/admissions"}, answer.Sources)
	assert.Equal(t, 1, answer.CandidatesUsed)
}

func TestSynthesize_LimitsDedupesAndKeepsRankOrder(t *testing.T) {
	r := NewRAG(nil, nil)
	candidates := []models.ScoredCandidate{
		candidate("d1",
			"Applications open in early spring every year. Applications close in late summer every year. "+
				"Applications are reviewed within two weeks.", "https://example.edu/a"),
		candidate("d2",
			"Applications open in early spring every year. Late applications are accepted with a fee.", ""),
		candidate("d3", "Applications from abroad need a visa letter.", "https://example.edu/a"),
		candidate("d4", "Applications are never mentioned elsewhere.", "https://example.edu/d"),
	}

	answer := r.Synthesize("applications", candidates)

	assert.Equal(t,
		"Based on our information (Sources: https://example.edu/a): "+
			"Applications open in early spring every year. "+
			"Applications close in late summer every year. "+
			"Late applications are accepted with a fee.",
		answer.Response)
	assert.Equal(t, 3, answer.CandidatesUsed)
}

func TestSynthesize_AtMostTwoSources(t *testing.T) {
	r := NewRAG(nil, nil)
	candidates := []models.ScoredCandidate{
		candidate("d1", "Parking permits are sold at the front desk.", "https://a.example"),
		candidate("d2", "Parking is free on weekends for all visitors!", "https://b.example"),
		candidate("d3", "Parking spaces for bicycles are near the gate?", "https://c.example"),
	}

	answer := r.Synthesize("parking", candidates)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, answer.Sources)
	assert.Equal(t,
		"Based on our information (Sources: https://a.example, https://b.example): "+
			"Parking permits are sold at the front desk. "+
			"Parking is free on weekends for all visitors. "+
			"Parking spaces for bicycles are near the gate.",
		answer.Response)
}

func TestSynthesize_NoSourcesOmitsParenthetical(t *testing.T) {
	r := NewRAG(nil, nil)

	answer := r.Synthesize("library hours", []models.ScoredCandidate{
		candidate("d1", "The library opens at eight every weekday.", ""),
	})

	assert.Equal(t, "Based on our information: The library opens at eight every weekday.", answer.Response)
	assert.Empty(t, answer.Sources)
}

func TestSynthesize_ShortSentencesFallBackToFirstSentence(t *testing.T) {
	r := NewRAG(nil, nil)

	answer := r.Synthesize("maybe okay", []models.ScoredCandidate{
		candidate("short", "Yes. No. Maybe. OK.", "https://example.edu/short"),
	})

	assert.Equal(t, "Based on our information: Yes.", answer.Response)
	assert.Equal(t, 1, answer.CandidatesUsed)
	assert.Equal(t, []string{"https://example.edu/short"}, answer.Sources)
}

func TestSynthesize_NoMatchingSentenceUsesTopDocument(t *testing.T) {
	r := NewRAG(nil, nil)

	answer := r.Synthesize("refund", []models.ScoredCandidate{
		candidate("top", "Our office is located downtown near the station. Visit us anytime.", ""),
		candidate("second", "Another long sentence that mentions nothing useful.", ""),
	})

	assert.Equal(t, "Based on our information: Our office is located downtown near the station.", answer.Response)
}

func TestSynthesize_EmptyFirstSentenceUsesFallback(t *testing.T) {
	r := NewRAG(nil, nil)
	r.SetPicker(fixedPicker(0))

	answer := r.Synthesize("refund", []models.ScoredCandidate{candidate("dots", "  . tiny.", "")})

	assert.Equal(t, models.DefaultUnknowns[0], answer.Response)
	assert.Equal(t, 0, answer.CandidatesUsed)
}

func TestSynthesize_GreetingFallback(t *testing.T) {
	r := NewRAG(nil, nil)

	for _, q := range []string{"hello", "Hi there", "HEY!", "well, hello again"} {
		answer := r.Synthesize(q, nil)
		assert.Contains(t, models.DefaultGreetings, answer.Response, "query=%q", q)
		assert.Empty(t, answer.Sources)
		assert.Equal(t, 0, answer.CandidatesUsed)
	}
}

func TestSynthesize_UnknownFallback(t *testing.T) {
	r := NewRAG(nil, nil)

	// "this" and "they" must not count as greetings
	for _, q := range []string{"tell me about fees", "this is it", "they said so", ""} {
		answer := r.Synthesize(q, nil)
		assert.Contains(t, models.DefaultUnknowns, answer.Response, "query=%q", q)
	}
}

func TestSynthesize_InjectedPickerAndResponses(t *testing.T) {
	cfg := config.Default()
	cfg.Responses.Greetings = []string{"G0", "G1"}
	cfg.Responses.Unknowns = []string{"U0", "U1", "U2"}
	r := NewRAG(nil, cfg)
	r.SetPicker(fixedPicker(1))

	assert.Equal(t, "G1", r.Synthesize("hey", nil).Response)
	assert.Equal(t, "U1", r.Synthesize("shipping times", nil).Response)
}

func TestSynthesize_EmptyResponseListsUseDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Responses.Greetings = nil
	cfg.Responses.Unknowns = nil
	r := NewRAG(nil, cfg)

	assert.Contains(t, models.DefaultGreetings, r.Synthesize("hello", nil).Response)
	assert.Contains(t, models.DefaultUnknowns, r.Synthesize("shipping", nil).Response)
}

func TestSynthesize_NoGreetingWords(t *testing.T) {
	cfg := config.Default()
	cfg.Responses.GreetingWords = nil
	r := NewRAG(nil, cfg)

	assert.Contains(t, models.DefaultUnknowns, r.Synthesize("hello", nil).Response)
}
