package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
)

const cmPerInch = 2.54

// getProfile returns the authenticated user's profile with derived goals.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.profileOrDefault(c, userID(c))
	if err != nil {
		writeError(c, "getProfile", err)
		return
	}
	c.JSON(http.StatusOK, h.profileView(p))
}

// patchProfile updates only the provided profile fields and then recomputes
// every derived goal. When the biometrics are incomplete the goals are cleared.
// PATCH /api/profile.
func (h *Handler) patchProfile(c *gin.Context) {
	id := userID(c)

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.profileOrDefault(c, id)
	if err != nil {
		writeError(c, "patchProfile", err)
		return
	}
	if err := body.apply(&p); err != nil {
		writeError(c, "patchProfile", err)
		return
	}

	if b, ok := p.Biometrics(); ok {
		g, err := nutrition.ComputeGoals(b, h.now())
		if err != nil {
			writeError(c, "patchProfile", err)
			return
		}
		p.ApplyGoals(g)
	} else {
		p.ClearGoals()
	}

	saved, err := h.store.SaveProfile(c, p)
	if err != nil {
		writeError(c, "patchProfile", err)
		return
	}
	c.JSON(http.StatusOK, h.profileView(saved))
}

// apply validates each provided field and writes it onto p. Enum values are
// checked here so an unknown value never reaches the goal formulas.
func (r patchProfileRequest) apply(p *model.UserProfile) error {
	if r.WeightLBS != nil && r.WeightKG == nil {
		kg := nutrition.LBSToKG(*r.WeightLBS)
		r.WeightKG = &kg
	}
	if r.HeightIN != nil && r.HeightCM == nil {
		cm := *r.HeightIN * cmPerInch
		r.HeightCM = &cm
	}
	if r.WeightKG != nil {
		if *r.WeightKG <= 0 {
			return invalid("weight must be positive")
		}
		p.WeightKG = r.WeightKG
	}
	if r.HeightCM != nil {
		if *r.HeightCM <= 0 {
			return invalid("height must be positive")
		}
		p.HeightCM = r.HeightCM
	}
	if r.DateOfBirth != nil {
		p.DateOfBirth = r.DateOfBirth
	}
	if r.Sex != nil {
		s, err := nutrition.ParseSex(*r.Sex)
		if err != nil {
			return err
		}
		p.Sex = &s
	}
	if r.ActivityLevel != nil {
		a, err := nutrition.ParseActivityLevel(*r.ActivityLevel)
		if err != nil {
			return err
		}
		p.ActivityLevel = a
	}
	if r.GoalType != nil {
		g, err := nutrition.ParseGoalType(*r.GoalType)
		if err != nil {
			return err
		}
		p.GoalType = g
	}
	if r.Units != nil {
		u, err := nutrition.ParseUnits(*r.Units)
		if err != nil {
			return err
		}
		p.Units = u
	}
	if r.OnboardingComplete != nil {
		p.Onboarded = *r.OnboardingComplete
	}
	return nil
}

// profileView adds the read-only values the client displays.
func (h *Handler) profileView(p model.UserProfile) profileResponse {
	resp := profileResponse{UserProfile: p}
	if p.DateOfBirth != nil {
		age := nutrition.Age(p.DateOfBirth.Time, h.now())
		resp.Age = &age
	}
	if p.WeightKG != nil {
		lbs := nutrition.KGToLBS(*p.WeightKG)
		resp.WeightLBS = &lbs
	}
	if p.HeightCM != nil {
		if r, err := nutrition.IdealWeightRange(*p.HeightCM); err == nil {
			resp.IdealWeight = &r
		}
	}
	return resp
}
