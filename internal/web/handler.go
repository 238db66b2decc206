package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/winsuspend/winsuspend/internal/config"
	"github.com/winsuspend/winsuspend/internal/database"
	"github.com/winsuspend/winsuspend/internal/models"
	"github.com/winsuspend/winsuspend/internal/reporter"
	"github.com/winsuspend/winsuspend/internal/tracker"
	"github.com/winsuspend/winsuspend/pkg/utils"
)

type Handler struct {
	config   *config.Config
	repo     *database.Repository
	tracker  *tracker.Service
	reporter *reporter.Reporter
	log      *zap.SugaredLogger
}

func NewHandler(cfg *config.Config, repo *database.Repository, svc *tracker.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{
		config:   cfg,
		repo:     repo,
		tracker:  svc,
		reporter: reporter.New(repo),
		log:      log,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/groups", h.handleGroups)
	mux.HandleFunc("/api/transitions", h.handleTransitions)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/summary", h.handleSummary)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

// handleStatus reports the daemon state and every tracked group as of the
// last completed cycle.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groups := h.tracker.Snapshot()
	stopped := 0
	for _, g := range groups {
		if g.State == "stopped" {
			stopped++
		}
	}

	status := map[string]interface{}{
		"running":         h.tracker.IsRunning(),
		"backend":         h.tracker.Backend(),
		"poll_interval":   h.config.Tracker.PollInterval.String(),
		"debounce_cycles": h.config.Tracker.DebounceCycles,
		"clipboard_guard": h.config.Tracker.CheckClipboard,
		"groups":          len(groups),
		"stopped":         stopped,
	}

	respondJSON(w, h.log, status)
}

func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondGroupsHTML(w)
		return
	}
	respondJSON(w, h.log, h.tracker.Snapshot())
}

func (h *Handler) respondGroupsHTML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	groups := h.tracker.Snapshot()
	if len(groups) == 0 {
		w.Write([]byte(`<div class="loading">No windowed applications tracked</div>`))
		return
	}

	html := `<div class="listing">`
	for _, g := range groups {
		detail := fmt.Sprintf("%d pids, %d windows", g.Pids, g.Windows)
		if g.StoppedSince != nil {
			detail = "suspended " + utils.FormatRoundedUnit(int64(time.Since(*g.StoppedSince).Seconds()))
		}
		html += fmt.Sprintf(`
		<div class="app-item state-%s">
			<span class="app-name">%s (%d)</span>
			<div>
				<span class="app-detail">%s</span>
				<span class="app-state">%s</span>
			</div>
		</div>`, g.State, g.Name, g.Root, detail, g.State)
	}
	html += `</div>`

	w.Write([]byte(html))
}

func (h *Handler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now().Add(-24 * time.Hour)
	events, err := h.repo.GetEventsSince(start)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch transitions: %v", err), http.StatusInternalServerError)
		return
	}

	limit := 100
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	respondJSON(w, h.log, events)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, h.log, report)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondSummaryHTML(w, report.Apps, report.SuspendedSeconds)
		return
	}
	respondJSON(w, h.log, report)
}

func (h *Handler) respondSummaryHTML(w http.ResponseWriter, summaries []models.AppSummary, totalSeconds int64) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(summaries) == 0 {
		w.Write([]byte(`<div class="loading">No suspensions recorded</div>`))
		return
	}

	html := `<div class="listing">`
	for _, app := range summaries {
		html += fmt.Sprintf(`
		<div class="app-item">
			<span class="app-name">%s</span>
			<div>
				<span class="app-detail">%s</span>
				<span class="app-state">%.1f%%</span>
			</div>
		</div>`, app.AppName, utils.FormatRoundedUnit(app.SuspendedSeconds), app.Percentage)
	}
	html += `</div>`
	html += fmt.Sprintf(`<div class="total">Total suspended: %s</div>`, utils.FormatRoundedUnit(totalSeconds))

	w.Write([]byte(html))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.log, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Winsuspend</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #1a1a1a;
            color: #e0e0e0;
            padding: 20px;
        }
        h1 { font-size: 1.6rem; margin-bottom: 20px; color: #5dade2; }
        .dashboard { display: flex; gap: 20px; flex-wrap: wrap; }
        .report-box {
            flex: 1;
            min-width: 300px;
            background: #2d2d2d;
            border-radius: 8px;
            padding: 24px;
        }
        .report-box h2 {
            font-size: 1.2rem;
            margin-bottom: 16px;
            border-bottom: 2px solid #5dade2;
            padding-bottom: 8px;
        }
        .app-item {
            display: flex;
            justify-content: space-between;
            padding: 10px 8px;
            border-bottom: 1px solid #404040;
        }
        .app-item:last-child { border-bottom: none; }
        .app-name { font-weight: 500; }
        .app-detail { color: #a0a0a0; font-size: 0.9rem; }
        .app-state { margin-left: 10px; font-weight: 600; color: #5dade2; }
        .state-stopped .app-state { color: #e67e22; }
        .state-pending_stop .app-state { color: #f1c40f; }
        .loading { color: #a0a0a0; font-style: italic; }
        .total {
            margin-top: 16px;
            padding-top: 12px;
            border-top: 2px solid #4a4a4a;
            font-weight: 600;
        }
    </style>
</head>
<body>
    <h1>Winsuspend</h1>
    <div class="dashboard">
        <div class="report-box">
            <h2>Tracked Applications</h2>
            <div hx-get="/api/groups" hx-trigger="load, every 5s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
        <div class="report-box">
            <h2>Suspended Today</h2>
            <div hx-get="/api/summary?period=today" hx-trigger="load, every 30s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
        <div class="report-box">
            <h2>This Week</h2>
            <div hx-get="/api/summary?period=week" hx-trigger="load, every 30s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
    </div>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func respondJSON(w http.ResponseWriter, log *zap.SugaredLogger, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warnw("failed to encode response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
