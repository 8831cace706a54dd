package country

// Features is the typed per-country feature vector produced by the external
// feature pipeline.  The core reads a fixed set of named numeric fields;
// anything the pipeline computes beyond these never crosses this boundary.
//
// The one write the core performs is AnomalyScore: fusion writes the computed
// anomaly score back so downstream consumers (the sequence forecaster in
// particular) see it as an input feature.
type Features struct {
	// GDELT event aggregates
	GoldsteinMean     float64 `json:"gdelt_goldstein_mean"`
	GoldsteinStd      float64 `json:"gdelt_goldstein_std"`
	GoldsteinMin      float64 `json:"gdelt_goldstein_min"`
	EventCount        float64 `json:"gdelt_event_count"`
	AvgTone           float64 `json:"gdelt_avg_tone"`
	EventAcceleration float64 `json:"gdelt_event_acceleration"`

	// ACLED conflict events
	Fatalities30d         float64 `json:"acled_fatalities_30d"`
	BattleCount           float64 `json:"acled_battle_count"`
	ProtestCount          float64 `json:"acled_protest_count"`
	CivilianViolenceCount float64 `json:"acled_civilian_violence_count"`

	// UCDP
	ConflictIntensity float64 `json:"ucdp_conflict_intensity"`

	// World Bank
	GDPGrowthLatest float64 `json:"wb_gdp_growth_latest"`

	// FinBERT headline sentiment
	NegativeScore float64 `json:"finbert_negative_score"`
	EscalatoryPct float64 `json:"finbert_escalatory_pct"`
	NegativityIdx float64 `json:"finbert_negativity_index"`

	// Composites produced by the pipeline
	ConflictComposite float64 `json:"conflict_composite"`
	EconComposite     float64 `json:"econ_composite_score"`
	HumanitarianScore float64 `json:"humanitarian_score"`
	PoliticalRisk     float64 `json:"political_risk_score"`
	Volatility        float64 `json:"volatility"`

	// AnomalyScore is written by fusion, not by the pipeline.
	AnomalyScore float64 `json:"anomaly_score"`
}

// AnomalyInput is the feature subset consumed by the anomaly model, keyed the
// way its scaler was trained.
type AnomalyInput struct {
	GoldsteinMean float64 `json:"goldstein_mean"`
	GoldsteinStd  float64 `json:"goldstein_std"`
	GoldsteinMin  float64 `json:"goldstein_min"`
	MentionsTotal float64 `json:"mentions_total"`
	AvgTone       float64 `json:"avg_tone"`
	EventCount    float64 `json:"event_count"`
}

// AnomalyInput maps the pipeline feature names onto the anomaly model's
// input keys.  Mentions are approximated by the event count, matching the
// model's training data.
func (f Features) AnomalyInputs() AnomalyInput {
	return AnomalyInput{
		GoldsteinMean: f.GoldsteinMean,
		GoldsteinStd:  f.GoldsteinStd,
		GoldsteinMin:  f.GoldsteinMin,
		MentionsTotal: f.EventCount,
		AvgTone:       f.AvgTone,
		EventCount:    f.EventCount,
	}
}

// SequenceLength and SequenceWidth fix the forecaster's expected input shape.
const (
	SequenceLength = 90
	SequenceWidth  = 12
)

// ForecastRow builds the 12-column row the sequence forecaster consumes.
// The risk column prefers the pipeline's political risk score and falls back
// to the conflict composite, clamped to [0,100].
func (f Features) ForecastRow() [SequenceWidth]float64 {
	r := f.PoliticalRisk
	if r == 0 {
		r = f.ConflictComposite
	}
	if r < 0 {
		r = 0
	}
	if r > 100 {
		r = 100
	}
	return [SequenceWidth]float64{
		r,
		f.GoldsteinMean,
		f.EventCount,
		f.Fatalities30d,
		f.BattleCount,
		f.NegativeScore,
		f.GDPGrowthLatest,
		f.AnomalyScore,
		f.AvgTone,
		f.EventAcceleration,
		f.ConflictIntensity,
		f.EconComposite,
	}
}

// ForecastSequence repeats the current feature row SequenceLength times,
// producing the fixed-shape input the forecaster validates against.
func (f Features) ForecastSequence() [][SequenceWidth]float64 {
	row := f.ForecastRow()
	seq := make([][SequenceWidth]float64, SequenceLength)
	for i := range seq {
		seq[i] = row
	}
	return seq
}
