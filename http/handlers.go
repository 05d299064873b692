package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stockradar/config"
	"stockradar/report"
)

// Reporter 报告生成与查询能力，由引擎实现
type Reporter interface {
	GenerateReport(ctx context.Context, now time.Time) (*report.Report, error)
	ReadReport(date string) (*report.Report, error)
	ListReports() ([]string, error)
}

// Handlers API 处理器集合
type Handlers struct {
	reporter   Reporter
	cfg        *config.Manager
	onSchedule func(times []string) error // 调度时刻表变更回调
	log        *zap.Logger
}

// NewHandlers 创建处理器集合
func NewHandlers(reporter Reporter, cfg *config.Manager, onSchedule func([]string) error, log *zap.Logger) *Handlers {
	return &Handlers{reporter: reporter, cfg: cfg, onSchedule: onSchedule, log: log}
}

// Register 注册全部路由
func (h *Handlers) Register(mux *http.ServeMux, hub *Hub) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/config", h.handleGetConfig)
	mux.HandleFunc("POST /api/config", h.handleUpdateConfig)
	mux.HandleFunc("POST /api/run", h.handleRun)
	mux.HandleFunc("GET /api/report", h.handleGetReport)
	mux.HandleFunc("GET /api/reports", h.handleListReports)
	if hub != nil {
		mux.HandleFunc("GET /api/ws/report", hub.HandleWebSocket)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format("2006-01-02 15:04:05"),
	})
}

func (h *Handlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.cfg.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schedule_times": cfg.Schedule.Times,
		"llm_model":      cfg.LLM.Model,
	})
}

func (h *Handlers) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScheduleTimes []string `json:"schedule_times"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.ScheduleTimes) == 0 {
		writeError(w, http.StatusBadRequest, "schedule_times required")
		return
	}

	cfg, err := h.cfg.UpdateSchedule(body.ScheduleTimes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.onSchedule != nil {
		if err := h.onSchedule(cfg.Schedule.Times); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schedule_times": cfg.Schedule.Times,
	})
}

// handleRun 手动触发一轮报告生成。生成耗时可达数分钟，
// 后台执行，接口立即返回。
func (h *Handlers) handleRun(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	var body struct {
		Date string `json:"date"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if body.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", body.Date, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expect YYYY-MM-DD")
			return
		}
		// 指定历史日期按盘后复盘口径生成
		now = time.Date(day.Year(), day.Month(), day.Day(), 18, 0, 0, 0, time.Local)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.reporter.GenerateReport(ctx, now); err != nil {
			h.log.Error("manual report run failed", zap.Error(err))
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"date":   now.Format("2006-01-02"),
	})
}

func (h *Handlers) handleGetReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expect YYYY-MM-DD")
		return
	}

	rep, err := h.reporter.ReadReport(date)
	if errors.Is(err, report.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found: "+date)
		return
	}
	if err != nil {
		h.log.Error("read report failed", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "read report failed")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) handleListReports(w http.ResponseWriter, r *http.Request) {
	dates, err := h.reporter.ListReports()
	if err != nil {
		h.log.Error("list reports failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list reports failed")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}
