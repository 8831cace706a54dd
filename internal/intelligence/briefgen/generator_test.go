package briefgen

import (
	"context"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

type fakeChat struct {
	content string
	err     error
	gotReq  openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testCfg() config.OpenAIConfig {
	return config.OpenAIConfig{Model: "gpt-4o", Temperature: 0.3, MaxTokens: 1500, Timeout: time.Second}
}

const validBriefJSON = `{
	"riskScore": 79,
	"riskLevel": "HIGH",
	"summary": "Escalation driven by cross-border strikes.",
	"keyFactors": ["strikes", "mobilisation"],
	"industries": ["shipping"],
	"watchList": ["port closures"],
	"causalChain": ["a", "b", "c", "d", "e", "f", "g"],
	"lastUpdated": "2026-02-10T12:00:00Z"
}`

func TestGenerate_NotConfigured(t *testing.T) {
	t.Parallel()
	g := NewGenerator(config.OpenAIConfig{Timeout: time.Second}, logging.NewNopLogger(), nil)

	_, err := g.Generate(context.Background(), "ctx")
	require.Error(t, err)
	assert.True(t, errors.IsCollaboratorUnavailable(err))
}

func TestGenerate_ParsesStructuredBrief(t *testing.T) {
	t.Parallel()
	fake := &fakeChat{content: validBriefJSON}
	g := newGeneratorWithClient(testCfg(), fake, logging.NewNopLogger())

	brief, err := g.Generate(context.Background(), "ML RISK ASSESSMENT FOR IRAN")
	require.NoError(t, err)
	assert.Equal(t, 79, brief.RiskScore)
	assert.Equal(t, risk.LevelHigh, brief.RiskLevel)
	assert.Len(t, brief.CausalChain, 7)
	assert.Equal(t, time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC), brief.LastUpdated)

	// Request carries the pinned persona and the caller's context.
	require.Len(t, fake.gotReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, fake.gotReq.Messages[0].Role)
	assert.Equal(t, "ML RISK ASSESSMENT FOR IRAN", fake.gotReq.Messages[1].Content)
}

func TestGenerate_StripsMarkdownFence(t *testing.T) {
	t.Parallel()
	fenced := "```json\n" + validBriefJSON + "\n```"
	g := newGeneratorWithClient(testCfg(), &fakeChat{content: fenced}, logging.NewNopLogger())

	brief, err := g.Generate(context.Background(), "ctx")
	require.NoError(t, err)
	assert.Equal(t, 79, brief.RiskScore)
}

func TestGenerate_TransportErrorIsCollaboratorUnavailable(t *testing.T) {
	t.Parallel()
	g := newGeneratorWithClient(testCfg(), &fakeChat{err: context.DeadlineExceeded}, logging.NewNopLogger())

	_, err := g.Generate(context.Background(), "ctx")
	require.Error(t, err)
	assert.True(t, errors.IsCollaboratorUnavailable(err))
}

func TestGenerate_MalformedJSONIsCollaboratorUnavailable(t *testing.T) {
	t.Parallel()
	g := newGeneratorWithClient(testCfg(), &fakeChat{content: "I cannot answer that."}, logging.NewNopLogger())

	_, err := g.Generate(context.Background(), "ctx")
	require.Error(t, err)
	assert.True(t, errors.IsCollaboratorUnavailable(err))
}

func TestBuildContext_CarriesScoreAndHeadlines(t *testing.T) {
	t.Parallel()
	score := &country.Score{
		Code:      "IR",
		Name:      "Iran",
		RiskScore: 79,
		RiskLevel: risk.LevelHigh,
		IsAnomaly: true,
		Severity:  risk.SeverityHigh,
		Prediction: country.RiskPrediction{
			Score:      79,
			Level:      risk.LevelHigh,
			Confidence: 0.87,
			TopDrivers: []string{"gdelt_event_count", "acled_fatalities_30d", "avg_tone", "extra_driver"},
		},
	}
	sentiment := intelligence.SentimentResult{DominantSentiment: "negative", EscalatoryPct: 0.6}
	heads := []string{"h1", "h2", "h3", "h4", "h5", "h6"}

	ctx := BuildContext(score, sentiment, heads)

	assert.Contains(t, ctx, "ML RISK ASSESSMENT FOR IRAN")
	assert.Contains(t, ctx, "Score: 79/100")
	assert.Contains(t, ctx, "negative (60% escalatory)")
	// Only the first three drivers and five headlines are quoted.
	assert.NotContains(t, ctx, "extra_driver")
	assert.Contains(t, ctx, "- h5")
	assert.NotContains(t, ctx, "- h6")
	assert.Contains(t, ctx, `use "HIGH"`)
}

func TestBuildContext_EmptySentimentReadsNeutral(t *testing.T) {
	t.Parallel()
	score := &country.Score{Name: "Brazil", RiskLevel: risk.LevelLow}
	ctx := BuildContext(score, intelligence.SentimentResult{}, nil)
	assert.Contains(t, ctx, "neutral (0% escalatory)")
}
