package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/dailylog"
	"lg/calorie-tracker-api/internal/model"
)

// getAnalytics returns daily logs and aggregate stats for a date range.
// GET /api/analytics?start=YYYY-MM-DD&end=YYYY-MM-DD (defaults to the last 7 days).
// Only days with logged data are returned; there is no gap filling.
func (h *Handler) getAnalytics(c *gin.Context) {
	id := userID(c)
	start, end, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	profile, err := h.profileOrDefault(c, id)
	if err != nil {
		writeError(c, "getAnalytics", err)
		return
	}
	logs, err := h.store.ListDailyLogs(c, id, start, end)
	if err != nil {
		writeError(c, "getAnalytics", err)
		return
	}
	if logs == nil {
		logs = []model.DailyLog{}
	}

	goal := dailylog.GoalsFromProfile(profile).Calories
	c.JSON(http.StatusOK, analyticsResponse{
		Start:       start,
		End:         end,
		CalorieGoal: profile.CalorieGoal,
		Days:        logs,
		Stats:       dailylog.RangeStats(logs, goal),
	})
}

// getWeekSummary returns the Mon–Sun week containing week_start. Days with no
// log are included with has_data=false.
// GET /api/analytics/week?week_start=YYYY-MM-DD (defaults to the current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	id := userID(c)
	anchor, ok := dateQuery(c, "week_start", h.today())
	if !ok {
		return
	}
	weekStart := dailylog.WeekStart(anchor.Time)

	profile, err := h.profileOrDefault(c, id)
	if err != nil {
		writeError(c, "getWeekSummary", err)
		return
	}
	logs, err := h.store.ListDailyLogs(c, id, weekStart, weekStart.AddDays(6))
	if err != nil {
		writeError(c, "getWeekSummary", err)
		return
	}

	c.JSON(http.StatusOK, weekSummary{
		WeekStart:   weekStart,
		CalorieGoal: profile.CalorieGoal,
		Days:        dailylog.FillWeek(id, weekStart, logs),
		Stats:       dailylog.RangeStats(logs, dailylog.GoalsFromProfile(profile).Calories),
	})
}
