package judge

import (
	"fmt"
	"strings"
)

// SystemPrompt sets the judge persona, the scoring rubric and the verdict
// thresholds. It is constant across all cases.
const SystemPrompt = `You are a startup judge, not a coach.
Your job is to eliminate weak ideas early.
Be direct. Be unsentimental.

You evaluate startup ideas based on:
1. Market clarity - Is the problem real and well-defined?
2. Willingness to pay - Will people actually pay for this?
3. Competitive landscape - Is there defensibility?
4. Execution risk - Can a small team build this?
5. Revenue potential - Is there a path to meaningful revenue?

You provide scores from 0-100:
- Below 40: KILL - The idea has fundamental flaws
- 40-69: VALIDATE - The idea needs more proof before building
- 70+: SHIP - The idea is worth building

Be harsh. Most ideas should be killed. A SHIP verdict is rare and reserved for ideas with clear market demand, obvious willingness to pay, and executable scope.`

// BuildUserPrompt renders the case material into the user prompt. Optional
// fields that are empty produce no line at all, not a placeholder.
func BuildUserPrompt(in CaseInput) string {
	var b strings.Builder

	b.WriteString("## STARTUP IDEA UNDER REVIEW\n\n")
	fmt.Fprintf(&b, "**The Idea:**\n%s\n\n", in.IdeaDescription)
	fmt.Fprintf(&b, "**Target User:**\n%s\n\n", in.TargetUser)
	fmt.Fprintf(&b, "**Pain Point Being Solved:**\n%s\n\n", in.PainPoint)

	if in.Frequency != "" {
		fmt.Fprintf(&b, "**Usage Frequency:** %s\n", in.Frequency)
	}
	if in.CurrentWorkaround != "" {
		fmt.Fprintf(&b, "**Current Workaround:** %s\n", in.CurrentWorkaround)
	}
	if in.WillingnessToPay != "" {
		fmt.Fprintf(&b, "**Willingness to Pay:** %s\n", in.WillingnessToPay)
	}

	b.WriteString(promptInstructions)
	return b.String()
}

const promptInstructions = `
---

Issue your judgment. After the verdict, generate an External Signal Playbook.

Your goal is to help the founder test this idea against real people.
Do NOT suggest APIs, scraping, or automation.
Provide practical, specific guidance for manual validation.

Return a JSON object with this exact structure:

{
  "score": <number 0-100>,
  "verdict": "<SHIP | VALIDATE | KILL>",
  "reasoning": {
    "summary": "<2-3 sentence harsh summary>",
    "market_analysis": "<assessment of market clarity and size>",
    "competitive_landscape": "<who else is doing this, defensibility>",
    "execution_risk": "<can a small team build this>",
    "revenue_potential": "<path to meaningful revenue>"
  },
  "red_flags": ["<list of deal-breakers or serious concerns>"],
  "recommendations": ["<list of required actions before proceeding>"],
  "external_validation": {
    "reddit": {
      "recommended_communities": [
        { "name": "r/example", "reason": "Why this community is relevant" }
      ],
      "posting_guidance": [
        "Do not pitch your product",
        "Frame as a problem, not a solution",
        "Ask about existing behavior"
      ],
      "templates": {
        "problem_discovery": {
          "title": "<Title for discovering if problem exists>",
          "body": "<Post body that asks about the problem without mentioning your solution>"
        },
        "validation_probe": {
          "title": "<Title for testing solution appetite>",
          "body": "<Post body that tests if people want a solution>"
        },
        "kill_confirmation": {
          "title": "<Title for confirming the idea should be killed>",
          "body": "<Post body that tests the red flags directly>"
        }
      }
    },
    "x": {
      "goal": "<What you're trying to learn from X/Twitter>",
      "templates": [
        "<Tweet 1: Hot-take or frustration about the problem>",
        "<Tweet 2: Question to gauge resonance>",
        "<Tweet 3: Personal anecdote format>"
      ],
      "signal_criteria": [
        "Replies > likes indicates real engagement",
        "People sharing similar pain",
        "DMs asking follow-up questions"
      ]
    },
    "discord": {
      "recommended_server_types": [
        "<Type of Discord servers to find>"
      ],
      "entry_guidance": [
        "Lurk before posting",
        "Respond to others first",
        "Ask questions in context"
      ],
      "starter_questions": [
        "<Question to ask in Discord that feels natural>"
      ]
    }
  }
}

Return ONLY the JSON object. No other text.`
