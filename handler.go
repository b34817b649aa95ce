package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/dailylog"
	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
	"lg/calorie-tracker-api/internal/predict"
	"lg/calorie-tracker-api/internal/store"
)

// Handler holds shared dependencies (store, predictor, clock) for all route handlers.
type Handler struct {
	store     store.Store
	predictor *predict.Normalizer // nil when no OpenAI key is configured
	now       func() time.Time
}

func newHandler(st store.Store, predictor *predict.Normalizer) *Handler {
	return &Handler{store: st, predictor: predictor, now: time.Now}
}

/* ─── Responses ──────────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeError maps a domain error onto its HTTP status. Anything unrecognized
// is logged under op and reported as a 500 without internal detail.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, nutrition.ErrInvalidInput):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		apiError(c, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrAlreadyPromoted):
		apiError(c, http.StatusConflict, "prediction already saved to log")
	case errors.Is(err, store.ErrConflict):
		apiError(c, http.StatusConflict, "already exists")
	case errors.Is(err, predict.ErrUnrecognized):
		apiError(c, http.StatusUnprocessableEntity, "unrecognized")
	case errors.Is(err, predict.ErrUnavailable):
		log.Printf("[%s] prediction unavailable: %v", op, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction service unavailable, try again", "retryable": true})
	default:
		if errors.Is(err, dailylog.ErrConsistencyViolation) {
			log.Printf("[%s] consistency violation: %v", op, err)
		} else {
			log.Printf("[%s] %v", op, err)
		}
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

// invalid builds a 400-class error for a rejected request field.
func invalid(msg string) error {
	return fmt.Errorf("%w: %s", nutrition.ErrInvalidInput, msg)
}

/* ─── Request helpers ────────────────────────────────────────────────── */

// userID returns the authenticated user set by authMiddleware.
func userID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

// today is the current calendar date in the server's local time.
func (h *Handler) today() model.Date {
	return model.NewDate(h.now())
}

// dateQuery reads a YYYY-MM-DD query param, falling back to def when absent.
// On a malformed value it writes a 400 and returns ok=false.
func dateQuery(c *gin.Context, key string, def model.Date) (model.Date, bool) {
	s := c.Query(key)
	if s == "" {
		return def, true
	}
	d, err := model.ParseDate(s)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+key+", expected YYYY-MM-DD")
		return model.Date{}, false
	}
	return d, true
}

// maxRangeDays bounds date-range queries so one request cannot scan years of rows.
const maxRangeDays = 366

// rangeQuery reads ?start= and ?end=, defaulting to the 7 days ending today.
// A reversed or over-long range writes a 400 and returns ok=false.
func (h *Handler) rangeQuery(c *gin.Context) (start, end model.Date, ok bool) {
	if end, ok = dateQuery(c, "end", h.today()); !ok {
		return
	}
	if start, ok = dateQuery(c, "start", end.AddDays(-6)); !ok {
		return
	}
	if start.After(end.Time) {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return start, end, false
	}
	if end.Sub(start.Time).Hours()/24 >= maxRangeDays {
		apiError(c, http.StatusBadRequest, "range must not exceed 366 days")
		return start, end, false
	}
	return start, end, true
}

// idParam parses the :id path param, writing a 400 when it is not a positive integer.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// limitQuery parses ?limit=, defaulting to store.DefaultSearchLimit and capped at 100.
func limitQuery(c *gin.Context) (int, bool) {
	s := c.Query("limit")
	if s == "" {
		return store.DefaultSearchLimit, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		apiError(c, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return min(n, 100), true
}

// profileOrDefault loads the user's profile, treating a missing row as defaults.
func (h *Handler) profileOrDefault(c *gin.Context, id int64) (model.UserProfile, error) {
	p, err := h.store.GetProfile(c, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultProfile(id), nil
	}
	return p, err
}

/* ─── Routes ─────────────────────────────────────────────────────────── */

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.POST("/api/login", h.login)
	router.POST("/api/register", h.register)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)

	api.GET("/foods", h.searchFoods)
	api.POST("/foods", h.createFood)

	api.GET("/daily", h.getDailySummary)
	api.GET("/entries", h.listEntries)
	api.POST("/entries", h.createEntry)
	api.GET("/entries/:id", h.getEntry)
	api.PUT("/entries/:id", h.updateEntry)
	api.DELETE("/entries/:id", h.deleteEntry)
	api.POST("/water", h.addWater)

	api.POST("/predictions/text", h.predictFromText)
	api.POST("/predictions/image", h.predictFromImage)
	api.GET("/predictions", h.listPredictions)
	api.GET("/predictions/:id", h.getPrediction)
	api.POST("/predictions/:id/promote", h.promotePrediction)

	api.GET("/analytics", h.getAnalytics)
	api.GET("/analytics/week", h.getWeekSummary)
}
