// Package export renders an issued judgment as a PDF case dossier.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/verdicthq/verdict/internal/store"
)

const (
	margin    = 20.0
	lineHigh  = 5.0
	lineBody  = 4.0
	breakAt   = 260.0
	footerPos = 10.0
)

// Render produces the PDF dossier for a judged case. The case must have
// an issued judgment.
func Render(c *store.Case) ([]byte, error) {
	if c.Verdict == nil || c.Score == nil {
		return nil, fmt.Errorf("case %s has no issued judgment", c.ID)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*margin

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(margin, margin, "VERDICT")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(margin, margin+8, "CONFIDENTIAL CASE REVIEW")

	pdf.SetFontSize(8)
	pdf.Text(margin, margin+14, "This document represents a formal evaluation of a startup idea.")

	y := margin + 22.0
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(margin, y, pageW-margin, y)
	y += 10

	// Case metadata
	caseRef := strings.ToUpper(c.ID.String()[:8])
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(margin, y, fmt.Sprintf("CASE #%s", caseRef))
	date := c.CreatedAt.Format("January 2, 2006")
	pdf.Text(pageW-margin-pdf.GetStringWidth(date), y, date)
	y += 10

	// Idea description
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	y = writeWrapped(pdf, c.IdeaDescription, margin, y, contentW, lineHigh)
	y += 10

	// Verdict box
	pdf.SetFillColor(245, 245, 245)
	pdf.SetDrawColor(150, 150, 150)
	pdf.Rect(margin, y, contentW, 25, "FD")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(margin+5, y+6, "FINAL VERDICT")

	pdf.SetFont("Helvetica", "B", 18)
	r, g, b := verdictColor(*c.Verdict)
	pdf.SetTextColor(r, g, b)
	pdf.Text(margin+5, y+18, *c.Verdict)

	score := fmt.Sprintf("%d", *c.Score)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(150, 150, 150)
	pdf.Text(pageW-margin-5-pdf.GetStringWidth(score), y+18, score)

	y += 35

	// Judge memo
	if c.Reasoning != nil {
		y = heading(pdf, "JUDGE MEMO", y)

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 10)
		y = writeWrapped(pdf, c.Reasoning.Summary, margin, y, contentW, lineBody)
		y += 8

		sections := []struct {
			title   string
			content string
		}{
			{"MARKET ANALYSIS", c.Reasoning.MarketAnalysis},
			{"COMPETITIVE LANDSCAPE", c.Reasoning.CompetitiveLandscape},
			{"EXECUTION RISK", c.Reasoning.ExecutionRisk},
			{"REVENUE POTENTIAL", c.Reasoning.RevenuePotential},
		}
		for _, sec := range sections {
			if y > breakAt {
				pdf.AddPage()
				y = margin
			}
			y = heading(pdf, sec.title, y)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "", 9)
			y = writeWrapped(pdf, sec.content, margin, y, contentW, lineBody)
			y += 6
		}
	}

	// Red flags
	if len(c.RedFlags) > 0 {
		if y > breakAt-20 {
			pdf.AddPage()
			y = margin
		}
		pdf.SetTextColor(239, 68, 68)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.Text(margin, y, "RED FLAGS")
		y += 6

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
		for _, flag := range c.RedFlags {
			y = writeWrapped(pdf, "- "+flag, margin, y, contentW-5, lineBody)
			y += 2
		}
		y += 4
	}

	// Recommendations
	if len(c.Recommendations) > 0 {
		if y > breakAt-20 {
			pdf.AddPage()
			y = margin
		}
		y = heading(pdf, "REQUIRED ACTIONS", y)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
		for _, rec := range c.Recommendations {
			y = writeWrapped(pdf, "- "+rec, margin, y, contentW-5, lineBody)
			y += 2
		}
	}

	// Footer
	footer := "This judgment is final and based on the information provided."
	pdf.SetTextColor(150, 150, 150)
	pdf.SetFont("Helvetica", "", 7)
	pdf.Text(pageW/2-pdf.GetStringWidth(footer)/2, pageH-footerPos, footer)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for a case dossier.
func Filename(c *store.Case) string {
	return fmt.Sprintf("VERDICT_%s.pdf", strings.ToUpper(c.ID.String()[:8]))
}

func heading(pdf *fpdf.Fpdf, title string, y float64) float64 {
	pdf.SetTextColor(100, 100, 100)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.Text(margin, y, title)
	return y + 6
}

// writeWrapped draws text wrapped to width w starting at (x, y) and
// returns the y position after the last line.
func writeWrapped(pdf *fpdf.Fpdf, text string, x, y, w, lineHeight float64) float64 {
	lines := pdf.SplitText(text, w)
	for _, line := range lines {
		pdf.Text(x, y, line)
		y += lineHeight
	}
	return y
}

func verdictColor(verdict string) (int, int, int) {
	switch verdict {
	case "SHIP":
		return 34, 197, 94
	case "VALIDATE":
		return 249, 115, 22
	default:
		return 239, 68, 68
	}
}
