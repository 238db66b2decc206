package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/winsuspend/winsuspend/internal/database"
	"github.com/winsuspend/winsuspend/internal/models"
)

// Reporter generates suspended-time reports from the transition history
type Reporter struct {
	repo *database.Repository
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{repo: repo}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// SQL does the SUM; percentages are derived here.
	summaries, err := r.repo.GetSuspendSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get suspend summary: %w", err)
	}

	var totalSeconds int64
	for i := range summaries {
		summaries[i].SuspendedMinutes = float64(summaries[i].SuspendedSeconds) / 60.0
		summaries[i].SuspendedHours = float64(summaries[i].SuspendedSeconds) / 3600.0
		totalSeconds += summaries[i].SuspendedSeconds
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].SuspendedSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	report := &models.Report{
		Period:           *period,
		Apps:             summaries,
		SuspendedSeconds: totalSeconds,
		SuspendedMinutes: float64(totalSeconds) / 60.0,
		SuspendedHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:      time.Now(),
	}

	return report, nil
}

// getPeriod calculates the time range for the report
func getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := time.Now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Suspension Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Total Suspended: %.2fh (%.0fm)\n\n", report.SuspendedHours, report.SuspendedMinutes)

	if len(report.Apps) == 0 {
		output += "No suspensions recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-30s %10s %10s %10s %10s\n", "Application", "Hours", "Minutes", "Suspends", "Percent")
	output += fmt.Sprintf("%s\n", "-------------------------------------------------------------------------------")

	for _, app := range report.Apps {
		output += fmt.Sprintf("%-30s %10.2f %10.0f %10d %9.1f%%\n",
			truncate(app.AppName, 30),
			app.SuspendedHours,
			app.SuspendedMinutes,
			app.SuspendCount,
			app.Percentage)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
