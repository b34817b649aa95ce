package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/model"
)

// searchFoods returns foods whose name contains q, verified foods first.
// GET /api/foods?q=oat&limit=20. An empty q lists the first page of foods.
func (h *Handler) searchFoods(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	foods, err := h.store.SearchFoods(c, c.Query("q"), limit)
	if err != nil {
		writeError(c, "searchFoods", err)
		return
	}
	if foods == nil {
		foods = []model.Food{}
	}
	c.JSON(http.StatusOK, foods)
}

// createFood adds an unverified food owned by the caller.
// POST /api/foods.
func (h *Handler) createFood(c *gin.Context) {
	id := userID(c)

	var body createFoodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	f := model.Food{
		Name:           strings.TrimSpace(body.Name),
		Description:    strings.TrimSpace(body.Description),
		CaloriesPer100: body.CaloriesPer100,
		ProteinPer100:  body.ProteinPer100,
		CarbsPer100:    body.CarbsPer100,
		FatPer100:      body.FatPer100,
		FiberPer100:    body.FiberPer100,
		ServingSize:    body.ServingSize,
		CreatedBy:      &id,
	}
	if f.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if f.ForQuantity(100).Negative() {
		apiError(c, http.StatusBadRequest, "nutrition values must not be negative")
		return
	}

	created, err := h.store.CreateFood(c, f)
	if err != nil {
		writeError(c, "createFood", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
