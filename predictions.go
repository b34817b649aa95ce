package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
	"lg/calorie-tracker-api/internal/predict"
	"lg/calorie-tracker-api/internal/store"
)

// maxImageBytes bounds an uploaded meal photo.
const maxImageBytes = 8 << 20

// predictFromText estimates nutrition for a free-text description and stores
// the prediction. Nothing is added to the food log until it is promoted.
// POST /api/predictions/text.
func (h *Handler) predictFromText(c *gin.Context) {
	var body predictTextRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	req := predict.Request{Text: strings.TrimSpace(body.Description), At: h.now()}
	if body.EatenAt != nil {
		req.At = *body.EatenAt
	}
	h.predict(c, "predictFromText", req, "")
}

// predictFromImage estimates nutrition from a multipart "image" upload with
// an optional "description" hint. Only the image's sha256 is kept.
// POST /api/predictions/image.
func (h *Handler) predictFromImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+1<<20)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apiError(c, http.StatusRequestEntityTooLarge, "image must be at most 8 MiB")
			return
		}
		apiError(c, http.StatusBadRequest, "image file is required")
		return
	}
	if fh.Size > maxImageBytes {
		apiError(c, http.StatusRequestEntityTooLarge, "image must be at most 8 MiB")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, "predictFromImage", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		writeError(c, "predictFromImage", err)
		return
	}
	if len(data) == 0 {
		apiError(c, http.StatusBadRequest, "image file is empty")
		return
	}

	// The part's Content-Type is client-supplied; only the sniffed type counts.
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		apiError(c, http.StatusBadRequest, "file is not a supported image")
		return
	}
	sum := sha256.Sum256(data)

	req := predict.Request{
		Text:      strings.TrimSpace(c.PostForm("description")),
		Image:     data,
		ImageMIME: mime,
		At:        h.now(),
	}
	h.predict(c, "predictFromImage", req, hex.EncodeToString(sum[:]))
}

// predict runs the normalizer with the user's body stats and persists the result.
func (h *Handler) predict(c *gin.Context, op string, req predict.Request, imageSHA string) {
	if h.predictor == nil {
		writeError(c, op, errors.Join(predict.ErrUnavailable, errors.New("no OpenAI key configured")))
		return
	}
	id := userID(c)

	profile, err := h.profileOrDefault(c, id)
	if err != nil {
		writeError(c, op, err)
		return
	}
	req.User = userContext(profile, req.At)

	est, err := h.predictor.Predict(c.Request.Context(), req)
	if err != nil {
		writeError(c, op, err)
		return
	}

	p := model.CaloriePrediction{
		UserID:      id,
		InputKind:   req.Kind(),
		Description: req.Text,
		FoodName:    est.FoodName,
		QuantityG:   est.QuantityG,
		Nutrition:   est.Nutrition,
		Confidence:  est.Confidence,
		MealType:    est.MealType,
		Model:       est.Model,
	}
	if req.Kind() == model.InputImage {
		p.ImageMIME = req.ImageMIME
		p.ImageSHA256 = imageSHA
	}
	saved, err := h.store.CreatePrediction(c, p)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// userContext returns the body stats worth sending with a prediction, or nil
// when the profile is incomplete.
func userContext(p model.UserProfile, at time.Time) *predict.UserContext {
	b, ok := p.Biometrics()
	if !ok {
		return nil
	}
	return &predict.UserContext{
		Sex:      string(b.Sex),
		Age:      nutrition.Age(b.DateOfBirth, at),
		WeightKG: b.WeightKG,
		HeightCM: b.HeightCM,
	}
}

// listPredictions returns the caller's prediction history, newest first.
// GET /api/predictions?limit=20.
func (h *Handler) listPredictions(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	preds, err := h.store.ListPredictions(c, userID(c), limit)
	if err != nil {
		writeError(c, "listPredictions", err)
		return
	}
	if preds == nil {
		preds = []model.CaloriePrediction{}
	}
	c.JSON(http.StatusOK, preds)
}

// getPrediction returns one of the caller's predictions.
// GET /api/predictions/:id.
func (h *Handler) getPrediction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.store.GetPrediction(c, userID(c), id)
	if err != nil {
		writeError(c, "getPrediction", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// promotePrediction saves a prediction to the food log. A prediction can be
// promoted once; a second attempt is a 409.
// POST /api/predictions/:id/promote.
func (h *Handler) promotePrediction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var body promoteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	opts := store.PromoteOptions{QuantityG: body.QuantityG, Notes: body.Notes, LoggedAt: h.now()}
	if body.MealType != nil {
		m, err := model.ParseMealType(*body.MealType)
		if err != nil {
			writeError(c, "promotePrediction", invalid(err.Error()))
			return
		}
		opts.MealType = &m
	}
	if body.LoggedAt != nil {
		opts.LoggedAt = *body.LoggedAt
	}
	if body.Date != nil {
		opts.Date = *body.Date
	}

	entry, day, err := h.store.PromotePrediction(c, userID(c), id, opts)
	if err != nil {
		writeError(c, "promotePrediction", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry, "daily_log": day})
}
