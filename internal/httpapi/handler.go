package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/hovosukiasyan/calorie-tracker/internal/config"
	"github.com/hovosukiasyan/calorie-tracker/internal/daykey"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

// MaxEntriesLimit bounds the limit query parameter of the entries listing.
const MaxEntriesLimit = 1000

type Handler struct {
	db       *sqlx.DB
	settings config.Analytics
	logger   *slog.Logger
}

func NewHandler(db *sqlx.DB, settings config.Analytics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{db: db, settings: settings, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.GET("/today", h.GetToday)
	r.GET("/entries", h.ListEntries)
	r.GET("/analytics", h.GetAnalytics)
	r.GET("/deficit", h.GetDeficit)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := service.GetProfile(h.db)
	if err != nil {
		h.fail(c, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNoProfile.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) GetToday(c *gin.Context) {
	day := strings.TrimSpace(c.Query("date"))
	if day != "" && !daykey.Valid(day) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return
	}
	status, err := service.TodaySummary(h.db, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) ListEntries(c *gin.Context) {
	filter := service.ListEntriesFilter{
		Day:  c.Query("date"),
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > MaxEntriesLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and " + strconv.Itoa(MaxEntriesLimit)})
			return
		}
		filter.Limit = limit
	}
	entries, err := service.ListEntries(h.db, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (h *Handler) GetAnalytics(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetDeficit(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"range":      report.Range,
		"hasProfile": report.HasProfile,
		"target":     report.Target,
		"deficit":    report.Deficit,
	})
}

func (h *Handler) report(c *gin.Context) (*service.AnalyticsReport, bool) {
	req, err := rangeRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	settings, err := settingsOverride(c, h.settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	report, err := service.BuildAnalyticsReport(h.db, req, settings)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return report, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoProfile):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isBadInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isBadInput(err error) bool {
	for _, target := range []error{
		daykey.ErrInvalidKey,
		daykey.ErrInvalidRange,
		daykey.ErrRangeTooLarge,
		daykey.ErrInvalidPeriod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// settingsOverride applies per-request tolerance and rolling window overrides.
func settingsOverride(c *gin.Context, base config.Analytics) (config.Analytics, error) {
	out := base
	if v := strings.TrimSpace(c.Query("tolerance_mode")); v != "" {
		if err := out.Set(config.KeyToleranceMode, v); err != nil {
			return base, err
		}
	}
	if v := strings.TrimSpace(c.Query("tolerance")); v != "" {
		if err := out.Set(config.KeyToleranceValue, v); err != nil {
			return base, err
		}
	}
	if v := strings.TrimSpace(c.Query("window")); v != "" {
		if err := out.Set(config.KeyRollingWindow, v); err != nil {
			return base, err
		}
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

// rangeRequest maps query parameters to a report range. At most one of all,
// week, month, from/to and days may be given; none follows the configured
// window mode.
func rangeRequest(c *gin.Context) (service.RangeRequest, error) {
	var req service.RangeRequest
	selected := 0

	if all, _ := strconv.ParseBool(c.Query("all")); all {
		req.Kind = service.RangeAll
		selected++
	}
	if week := strings.TrimSpace(c.Query("week")); week != "" {
		if _, _, err := daykey.ISOWeekRange(week); err != nil {
			return req, err
		}
		req.Kind, req.Week = service.RangeWeek, week
		selected++
	}
	if month := strings.TrimSpace(c.Query("month")); month != "" {
		if _, _, err := daykey.MonthRange(month); err != nil {
			return req, err
		}
		req.Kind, req.Month = service.RangeMonth, month
		selected++
	}
	from, to := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if from != "" || to != "" {
		if !daykey.Valid(from) || !daykey.Valid(to) {
			return req, errors.New("from and to are both required as YYYY-MM-DD")
		}
		n, err := daykey.Diff(from, to)
		if err != nil {
			return req, err
		}
		if n < 0 {
			return req, daykey.ErrInvalidRange
		}
		if n+1 > daykey.MaxRangeDays {
			return req, daykey.ErrRangeTooLarge
		}
		req.Kind, req.From, req.To = service.RangeCustom, from, to
		selected++
	}
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 || days > daykey.MaxRangeDays {
			return req, errors.New("days must be between 1 and " + strconv.Itoa(daykey.MaxRangeDays))
		}
		req.Kind, req.Days = service.RangeTrailing, days
		selected++
	}
	if selected > 1 {
		return service.RangeRequest{}, errors.New("use only one of all, week, month, from/to or days")
	}
	return req, nil
}
