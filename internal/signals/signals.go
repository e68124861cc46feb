// Package signals derives the coarse preliminary signal triple shown on an
// unpaid case. The heuristic is deterministic and deliberately vague: it
// must never reveal the severity of the real judgment.
package signals

type MarketClarity string

const (
	MarketClarityLow    MarketClarity = "LOW"
	MarketClarityMedium MarketClarity = "MEDIUM"
	MarketClarityHigh   MarketClarity = "HIGH" // declared, currently never produced
)

type WillingnessToPay string

const (
	WillingnessUncertain WillingnessToPay = "UNCERTAIN"
	WillingnessWeak      WillingnessToPay = "WEAK"
	WillingnessStrong    WillingnessToPay = "STRONG" // declared, currently never produced
)

type CompetitivePressure string

const (
	CompetitionAbsent  CompetitivePressure = "ABSENT"
	CompetitionPresent CompetitivePressure = "PRESENT"
	CompetitionIntense CompetitivePressure = "INTENSE" // declared, currently never produced
)

type Signals struct {
	MarketClarity       MarketClarity       `json:"market_clarity"`
	WillingnessToPay    WillingnessToPay    `json:"willingness_to_pay"`
	CompetitivePressure CompetitivePressure `json:"competitive_pressure"`
}

// Length thresholds for the teaser heuristic.
const (
	painPointMinLen  = 30
	targetUserMinLen = 20
	wtpMinLen        = 10
	ideaMinLen       = 100
)

// Preliminary derives the teaser signals from raw case fields. An empty
// willingnessToPay means the field was not provided.
func Preliminary(ideaDescription, targetUser, painPoint, willingnessToPay string) Signals {
	s := Signals{
		MarketClarity:       MarketClarityLow,
		WillingnessToPay:    WillingnessUncertain,
		CompetitivePressure: CompetitionAbsent,
	}

	if len(painPoint) > painPointMinLen && len(targetUser) > targetUserMinLen {
		s.MarketClarity = MarketClarityMedium
	}
	if len(willingnessToPay) > wtpMinLen {
		s.WillingnessToPay = WillingnessWeak
	}
	if len(ideaDescription) > ideaMinLen {
		s.CompetitivePressure = CompetitionPresent
	}
	return s
}
