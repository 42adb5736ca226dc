package dto

import "time"

// AiUsageReport is what a metered call hands back to the guardrail wrapper
// for the unconditional usage log.
type AiUsageReport struct {
	Model        string
	InputTokens  int
	OutputTokens int
	CostUsd      float64
}

type UsageEntry struct {
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUsd      float64   `json:"cost_usd"`
	CreatedAt    time.Time `json:"created_at"`
}

type UsageSummaryResponse struct {
	CreditsLeft        int          `json:"credits_left"`
	PeriodStart        time.Time    `json:"period_start"`
	RequestsLastMinute int64        `json:"requests_last_minute"`
	CostTodayUsd       float64      `json:"cost_today_usd"`
	Recent             []UsageEntry `json:"recent"`
}
