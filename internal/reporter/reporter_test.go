package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/winsuspend/winsuspend/internal/models"
)

func TestGetPeriod(t *testing.T) {
	tests := []struct {
		periodType string
		wantErr    bool
	}{
		{"day", false},
		{"today", false},
		{"week", false},
		{"month", false},
		{"year", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.periodType, func(t *testing.T) {
			period, err := getPeriod(tt.periodType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getPeriod(%q) error = %v, wantErr %v", tt.periodType, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !period.Start.Before(period.End) {
				t.Errorf("period start %v not before end %v", period.Start, period.End)
			}
			now := time.Now()
			if now.Before(period.Start) || now.After(period.End) {
				t.Errorf("now %v outside period [%v, %v]", now, period.Start, period.End)
			}
		})
	}
}

func TestWeekStartsOnMonday(t *testing.T) {
	period, err := getPeriod("week")
	if err != nil {
		t.Fatal(err)
	}
	if period.Start.Weekday() != time.Monday {
		t.Errorf("week starts on %v, want Monday", period.Start.Weekday())
	}
}

func TestFormatReportText(t *testing.T) {
	r := New(nil)
	report := &models.Report{
		Period: models.ReportPeriod{
			Start: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			Type:  "day",
		},
		Apps: []models.AppSummary{
			{AppName: "firefox", SuspendedSeconds: 5400, SuspendedHours: 1.5, SuspendedMinutes: 90, SuspendCount: 3, Percentage: 75},
			{AppName: "mpv", SuspendedSeconds: 1800, SuspendedHours: 0.5, SuspendedMinutes: 30, SuspendCount: 1, Percentage: 25},
		},
		SuspendedSeconds: 7200,
		SuspendedHours:   2,
		SuspendedMinutes: 120,
	}

	text := r.FormatReportText(report)
	for _, want := range []string{"firefox", "mpv", "Total Suspended: 2.00h", "75.0%"} {
		if !strings.Contains(text, want) {
			t.Errorf("report text missing %q:\n%s", want, text)
		}
	}
}

func TestFormatReportTextEmpty(t *testing.T) {
	r := New(nil)
	report := &models.Report{Period: models.ReportPeriod{Type: "day"}}
	if !strings.Contains(r.FormatReportText(report), "No suspensions recorded") {
		t.Error("empty report should say no suspensions recorded")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 30); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	long := strings.Repeat("a", 40)
	got := truncate(long, 30)
	if len(got) != 30 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate long = %q (len %d)", got, len(got))
	}
}
