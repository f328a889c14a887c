package domain

// DateLayout is the wire format for all rate dates.
const DateLayout = "2006-01-02"

// ConvertResult is the outcome of a single currency conversion.
type ConvertResult struct {
	ExchangeFrom string  `json:"exchange_from"`
	ExchangeTo   string  `json:"exchange_to"`
	Amount       string  `json:"amount"`
	Date         string  `json:"date"`
	Result       float64 `json:"result"`
	ExchangeRate float64 `json:"exchange_rate"`
}

// RateInfo holds live or single-day historical quotes for one source
// currency. Keys of ExchangeRate are bare target codes ("EUR", not "USDEUR").
type RateInfo struct {
	Date         string             `json:"date"`
	Source       string             `json:"source"`
	ExchangeRate map[string]float64 `json:"exchange_rate"`
}

// RateChange describes how one target moved over a period.
type RateChange struct {
	StartRate float64 `json:"start_rate"`
	EndRate   float64 `json:"end_rate"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// RateDynamics holds per-target movement between two dates.
type RateDynamics struct {
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Source    string                `json:"source"`
	Dynamics  map[string]RateChange `json:"dynamics"`
}

// DailySeries holds one quote per target per day over a bounded range.
// Data is keyed by ISO date, then by bare target code.
type DailySeries struct {
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Source    string                        `json:"source"`
	Data      map[string]map[string]float64 `json:"data"`
}
