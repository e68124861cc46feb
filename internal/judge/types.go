package judge

// Verdict is the categorical outcome derived from the numeric score.
type Verdict string

const (
	VerdictShip     Verdict = "SHIP"
	VerdictValidate Verdict = "VALIDATE"
	VerdictKill     Verdict = "KILL"
)

// Score thresholds for verdict derivation. The model's self-reported
// verdict label is never trusted; the verdict is always re-derived from
// the clamped score.
const (
	shipThreshold     = 70
	validateThreshold = 40
)

// CaseInput is the raw founder-supplied material a judgment is issued on.
// Optional fields are empty strings when absent.
type CaseInput struct {
	IdeaDescription   string
	TargetUser        string
	PainPoint         string
	Frequency         string
	CurrentWorkaround string
	WillingnessToPay  string
}

// Reasoning is the judge's structured memo. All five prose fields are
// required in a valid judgment.
type Reasoning struct {
	Summary              string `json:"summary"`
	MarketAnalysis       string `json:"market_analysis"`
	CompetitiveLandscape string `json:"competitive_landscape"`
	ExecutionRisk        string `json:"execution_risk"`
	RevenuePotential     string `json:"revenue_potential"`
}

// Community is a recommended Reddit community and why it fits.
type Community struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// PostTemplate is a ready-to-post title and body.
type PostTemplate struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type RedditTemplates struct {
	ProblemDiscovery PostTemplate `json:"problem_discovery"`
	ValidationProbe  PostTemplate `json:"validation_probe"`
	KillConfirmation PostTemplate `json:"kill_confirmation"`
}

type RedditPlaybook struct {
	RecommendedCommunities []Community     `json:"recommended_communities"`
	PostingGuidance        []string        `json:"posting_guidance"`
	Templates              RedditTemplates `json:"templates"`
}

type XPlaybook struct {
	Goal           string   `json:"goal"`
	Templates      []string `json:"templates"`
	SignalCriteria []string `json:"signal_criteria"`
}

type DiscordPlaybook struct {
	RecommendedServerTypes []string `json:"recommended_server_types"`
	EntryGuidance          []string `json:"entry_guidance"`
	StarterQuestions       []string `json:"starter_questions"`
}

// ExternalValidation is the outreach playbook generated alongside the
// judgment, guiding manual validation on Reddit, X and Discord.
type ExternalValidation struct {
	Reddit  RedditPlaybook  `json:"reddit"`
	X       XPlaybook       `json:"x"`
	Discord DiscordPlaybook `json:"discord"`
}

// Judgment is the validated, clamped result of a model response. This
// shape is the persisted-state contract; downstream display code depends
// on the field names staying exactly as they are.
type Judgment struct {
	Score           int                 `json:"score"`
	Verdict         Verdict             `json:"verdict"`
	Reasoning       Reasoning           `json:"reasoning"`
	RedFlags        []string            `json:"red_flags"`
	Recommendations []string            `json:"recommendations"`
	External        *ExternalValidation `json:"external_validation"`
}
