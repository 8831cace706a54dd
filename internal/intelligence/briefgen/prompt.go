// Package briefgen implements the narrative brief generation collaborator:
// a prompt builder that summarises the fused ML assessment for one country,
// and an OpenAI chat-completion backend that turns it into a structured
// analyst brief.  The generator explains the score — it never invents one.
package briefgen

import (
	"fmt"
	"strings"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
)

// maxContextHeadlines bounds how many headlines the prompt quotes.
const maxContextHeadlines = 5

// maxContextDrivers bounds how many top drivers the prompt names.
const maxContextDrivers = 3

// systemPrompt pins the generator persona and the JSON-only output contract.
const systemPrompt = "You are a geopolitical intelligence analyst. Return only valid JSON."

// BuildContext renders the ML context summary the generator receives.  It
// carries the post-fusion score, the anomaly verdict, the headline sentiment
// and the quoted headlines, and instructs the model to explain the existing
// score rather than produce a new one.
func BuildContext(score *country.Score, sentiment intelligence.SentimentResult, headlines []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ML RISK ASSESSMENT FOR %s:\n", strings.ToUpper(score.Name))
	fmt.Fprintf(&b, "- ML Risk Level: %s (Score: %d/100)\n", score.RiskLevel, score.RiskScore)
	fmt.Fprintf(&b, "- Model Confidence: %.0f%%\n", score.Prediction.Confidence*100)
	fmt.Fprintf(&b, "- Anomaly Alert: %t (Severity: %s)\n", score.IsAnomaly, score.Severity)
	fmt.Fprintf(&b, "- Headline Sentiment: %s (%.0f%% escalatory)\n",
		orNeutral(sentiment.DominantSentiment), sentiment.EscalatoryPct*100)

	drivers := score.Prediction.TopDrivers
	if len(drivers) > maxContextDrivers {
		drivers = drivers[:maxContextDrivers]
	}
	fmt.Fprintf(&b, "- Top ML Risk Drivers: %s\n", strings.Join(drivers, ", "))
	b.WriteString("- Data Sources: GDELT + ACLED + UCDP + World Bank + NewsAPI\n")

	b.WriteString("\nTODAY'S HEADLINES:\n")
	quoted := headlines
	if len(quoted) > maxContextHeadlines {
		quoted = quoted[:maxContextHeadlines]
	}
	for _, h := range quoted {
		fmt.Fprintf(&b, "- %s\n", h)
	}

	fmt.Fprintf(&b, `
TASK: Write an analyst-grade intelligence brief explaining WHY the ML model scored
%s at %d/100. Reference specific named actors, regions, and mechanisms from the
headlines. Do NOT invent the score — explain it.

Return valid JSON with these fields:
- riskScore (int 0-100, use %d)
- riskLevel (string, use "%s")
- summary (string, 2-3 sentence executive summary)
- keyFactors (array of 3-5 strings, each a specific risk driver)
- industries (array of affected industry strings)
- watchList (array of 3-5 things to monitor)
- causalChain (array of 7 strings showing the step-by-step escalation chain from today's signals to predicted crisis)
- lastUpdated (ISO timestamp)

Return ONLY valid JSON. No markdown, no backticks, no explanation outside the JSON.
`, score.Name, score.RiskScore, score.RiskScore, score.RiskLevel)

	return b.String()
}

func orNeutral(s string) string {
	if s == "" {
		return "neutral"
	}
	return s
}
