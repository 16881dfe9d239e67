package shortlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/painminer/painminer/internal/domain"
)

const reportTemplate = `# Pain Point Mining — Decision Shortlist

Report ID: {{.ReportID}}
Generated: {{.GeneratedAt}}
Opportunities considered: {{.TotalConsidered}}
{{if .Entries}}
{{range .Entries}}
## #{{.Rank}} {{.Opportunity.Title}}

- Final score: {{printf "%.2f" .FinalScore}} / 10
- Viability score: {{printf "%.2f" .Opportunity.ViabilityScore}}
- Validation boost: {{printf "%.1f" .ValidationBoost}}
- Recommendation: {{.Opportunity.Recommendation}}
- Market tier: {{.Opportunity.MarketTier}}

{{.Pitch}}

{{if .Opportunity.KillerRisks}}Killer risks:
{{range .Opportunity.KillerRisks}}- {{.}}
{{end}}{{end}}
{{end}}
{{else}}
No opportunities survived the hard filters this run.

{{.MostRestrictiveFilter}}
{{end}}`

// reportView adapts Result into the shape the template renders, since
// text/template needs plain fields, not methods with side effects.
type reportView struct {
	ReportID              string
	GeneratedAt           string
	TotalConsidered       int
	Entries               []entryView
	MostRestrictiveFilter string
}

type entryView struct {
	Rank            int
	Opportunity     opportunityView
	FinalScore      float64
	ValidationBoost float64
	Pitch           string
}

type opportunityView struct {
	Title          string
	ViabilityScore float64
	Recommendation string
	MarketTier     string
	KillerRisks    []string
}

// Export writes a Markdown report and a JSON file into reportDir,
// named with a UTC timestamp so repeated runs never collide. An empty
// shortlist still produces a report naming the filter that dropped the
// most candidates, per spec.md §4.9 step 6.
func Export(result Result, reportDir string, generatedAt time.Time) (mdPath, jsonPath string, err error) {
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create report directory %s: %w", reportDir, err)
	}

	stamp := generatedAt.UTC().Format("20060102T150405Z")
	mdPath = filepath.Join(reportDir, fmt.Sprintf("shortlist_%s.md", stamp))
	jsonPath = filepath.Join(reportDir, fmt.Sprintf("shortlist_%s.json", stamp))

	if err := writeMarkdown(result, mdPath, generatedAt); err != nil {
		return "", "", err
	}
	if err := writeJSON(result, jsonPath); err != nil {
		return "", "", err
	}
	return mdPath, jsonPath, nil
}

func writeMarkdown(result Result, path string, generatedAt time.Time) error {
	tmpl, err := template.New("shortlist").Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	view := reportView{
		ReportID:              result.ReportID,
		GeneratedAt:           generatedAt.UTC().Format(time.RFC3339),
		TotalConsidered:       result.TotalConsidered,
		MostRestrictiveFilter: mostRestrictive(result.FilterReasons),
	}
	for _, e := range result.Entries {
		view.Entries = append(view.Entries, entryView{
			Rank:            e.Rank,
			FinalScore:      e.FinalScore,
			ValidationBoost: e.ValidationBoost,
			Pitch:           e.Pitch,
			Opportunity: opportunityView{
				Title:          e.Opportunity.Title,
				ViabilityScore: e.Opportunity.ViabilityScore,
				Recommendation: e.Opportunity.Recommendation,
				MarketTier:     string(e.Opportunity.MarketTier),
				KillerRisks:    e.Opportunity.KillerRisks,
			},
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("execute report template: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write markdown report %s: %w", path, err)
	}
	return nil
}

func writeJSON(result Result, path string) error {
	out := struct {
		ReportID string                  `json:"report_id"`
		Entries  []domain.ShortlistEntry `json:"entries"`
	}{ReportID: result.ReportID, Entries: result.Entries}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal shortlist entries: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json report %s: %w", path, err)
	}
	return nil
}

// mostRestrictive names the hard filter that excluded the most candidates,
// for the explanatory line in an empty-shortlist report.
func mostRestrictive(reasons []FilterReason) string {
	if len(reasons) == 0 {
		return "no candidates were considered at all"
	}
	worst := reasons[0]
	for _, r := range reasons[1:] {
		if r.Dropped > worst.Dropped {
			worst = r
		}
	}
	if worst.Dropped == 0 {
		return "every candidate passed the hard filters; the candidate pool itself was empty"
	}
	return fmt.Sprintf("most restrictive filter: %s (dropped %d candidate(s))", worst.Name, worst.Dropped)
}
