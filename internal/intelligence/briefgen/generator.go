package briefgen

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// chatClient is the slice of the OpenAI client the generator uses, extracted
// so tests can substitute a fake without network access.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator is the OpenAI-backed implementation of
// intelligence.BriefGenerator.
type Generator struct {
	cfg     config.OpenAIConfig
	client  chatClient
	logger  logging.Logger
	metrics *prometheus.Metrics
}

var _ intelligence.BriefGenerator = (*Generator)(nil)

// NewGenerator constructs a Generator.  With no API key configured every
// Generate call reports the collaborator unavailable, which the enrichment
// service converts into a fallback brief.
func NewGenerator(cfg config.OpenAIConfig, logger logging.Logger, metrics *prometheus.Metrics) *Generator {
	g := &Generator{
		cfg:     cfg,
		logger:  logger.Named("briefgen"),
		metrics: metrics,
	}
	if cfg.APIKey != "" {
		g.client = openai.NewClient(cfg.APIKey)
	}
	return g
}

// newGeneratorWithClient is the test seam.
func newGeneratorWithClient(cfg config.OpenAIConfig, client chatClient, logger logging.Logger) *Generator {
	return &Generator{cfg: cfg, client: client, logger: logger}
}

// wireBrief mirrors the JSON field set the prompt demands from the model.
type wireBrief struct {
	RiskScore   int      `json:"riskScore"`
	RiskLevel   string   `json:"riskLevel"`
	Summary     string   `json:"summary"`
	KeyFactors  []string `json:"keyFactors"`
	Industries  []string `json:"industries"`
	WatchList   []string `json:"watchList"`
	CausalChain []string `json:"causalChain"`
	LastUpdated string   `json:"lastUpdated"`
}

// Generate requests a structured brief for the given ML context.  All failure
// modes — unconfigured key, transport errors, empty choices, unparseable
// JSON — surface as ErrCodeCollaboratorUnavailable so the caller degrades to
// its fallback brief.
func (g *Generator) Generate(ctx context.Context, mlContext string) (*intelligence.Brief, error) {
	if g.client == nil {
		return nil, errors.CollaboratorUnavailable("brief generator not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: mlContext},
		},
	})
	g.observe(err == nil, time.Since(start))
	if err != nil {
		g.logger.Warn("brief generation call failed", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeCollaboratorUnavailable, "brief generation failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.CollaboratorUnavailable("brief generator returned no choices")
	}

	brief, err := parseBrief(resp.Choices[0].Message.Content)
	if err != nil {
		g.logger.Warn("brief generation returned unparseable JSON", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeCollaboratorUnavailable, "malformed brief response")
	}
	return brief, nil
}

func (g *Generator) observe(ok bool, elapsed time.Duration) {
	if g.metrics == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	g.metrics.LLMRequestsTotal.WithLabelValues(status).Inc()
	g.metrics.LLMRequestDuration.Observe(elapsed.Seconds())
}

// parseBrief decodes the model output, stripping a markdown code fence if the
// model ignored the JSON-only instruction.
func parseBrief(text string) (*intelligence.Brief, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var w wireBrief
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, err
	}

	updated, err := time.Parse(time.RFC3339, w.LastUpdated)
	if err != nil {
		updated = time.Now().UTC()
	}
	return &intelligence.Brief{
		RiskScore:   w.RiskScore,
		RiskLevel:   risk.RiskLevel(w.RiskLevel),
		Summary:     w.Summary,
		KeyFactors:  w.KeyFactors,
		Industries:  w.Industries,
		WatchList:   w.WatchList,
		CausalChain: w.CausalChain,
		LastUpdated: updated,
	}, nil
}
