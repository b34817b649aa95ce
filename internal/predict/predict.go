// Package predict turns a food description or photo into a validated
// nutrition estimate. Inference itself is delegated to an Inferrer; this
// package owns the timeout, the single retry, parsing and plausibility rules.
package predict

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
)

var (
	// ErrUnavailable means the inference collaborator failed, timed out or
	// returned output that could not be parsed. It is always retryable.
	ErrUnavailable = errors.New("prediction unavailable")

	// ErrUnrecognized means the collaborator answered but the input is not food.
	ErrUnrecognized = errors.New("input not recognized as food")

	// ErrInvalidInput is shared with nutrition so callers map one sentinel.
	ErrInvalidInput = nutrition.ErrInvalidInput
)

const (
	// MaxPlausibleCalories bounds a single prediction.
	MaxPlausibleCalories = 10000.0

	// DefaultTimeout applies when the Normalizer is built with a zero timeout.
	DefaultTimeout = 20 * time.Second

	defaultConfidence = 0.5
	maxAttempts       = 2
)

// UserContext is optional body data that sharpens an estimate.
type UserContext struct {
	Sex      string
	Age      int
	WeightKG float64
	HeightCM float64
}

// Request is the input to a prediction. Exactly one of Text or Image is required.
type Request struct {
	Text      string
	Image     []byte
	ImageMIME string
	At        time.Time
	User      *UserContext
}

// Kind reports whether the request is text or image based.
func (r Request) Kind() model.InputKind {
	if len(r.Image) > 0 {
		return model.InputImage
	}
	return model.InputText
}

func (r Request) validate() error {
	hasText := strings.TrimSpace(r.Text) != ""
	hasImage := len(r.Image) > 0
	switch {
	case !hasText && !hasImage:
		return fmt.Errorf("%w: a description or an image is required", ErrInvalidInput)
	case hasImage && !strings.HasPrefix(r.ImageMIME, "image/"):
		return fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, r.ImageMIME)
	}
	return nil
}

// Inferrer is the external AI collaborator. Infer returns the model's raw
// text; transport failures wrap ErrUnavailable.
type Inferrer interface {
	Infer(ctx context.Context, req Request) (string, error)
	Model() string
}

// Estimate is a normalized prediction ready to be persisted.
type Estimate struct {
	FoodName  string  `json:"food_name"`
	QuantityG float64 `json:"quantity_g"`
	model.Nutrition
	Confidence        float64        `json:"confidence"`
	MealType          model.MealType `json:"meal_type"`
	MealTypeDefaulted bool           `json:"meal_type_defaulted"`
	Model             string         `json:"model"`
}

// Normalizer wraps an Inferrer with validation.
type Normalizer struct {
	ai      Inferrer
	timeout time.Duration
}

// NewNormalizer returns a Normalizer calling ai with the given per-request timeout.
func NewNormalizer(ai Inferrer, timeout time.Duration) *Normalizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Normalizer{ai: ai, timeout: timeout}
}

// Predict runs inference for req and normalizes the answer. Failures of the
// collaborator surface as ErrUnavailable; implausible values as ErrInvalidInput.
// No nutrition value is ever filled in on the collaborator's behalf.
func (n *Normalizer) Predict(ctx context.Context, req Request) (Estimate, error) {
	if err := req.validate(); err != nil {
		return Estimate{}, err
	}
	if req.At.IsZero() {
		req.At = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	raw, err := n.infer(ctx, req)
	if err != nil {
		return Estimate{}, err
	}
	est, err := Normalize(raw, req.At)
	if err != nil {
		return Estimate{}, err
	}
	est.Model = n.ai.Model()
	return est, nil
}

// infer calls the collaborator, retrying once immediately when the call or
// the parse fails and the deadline has not passed.
func (n *Normalizer) infer(ctx context.Context, req Request) (Raw, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := n.ai.Infer(ctx, req)
		if err == nil {
			raw, perr := ParseRaw(text)
			if perr == nil || errors.Is(perr, ErrUnrecognized) {
				return raw, perr
			}
			err = perr
		}
		lastErr = err
		log.Printf("[predict] attempt %d/%d failed: %v", attempt, maxAttempts, err)
		if ctx.Err() != nil {
			return Raw{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}
	}
	if !errors.Is(lastErr, ErrUnavailable) {
		lastErr = fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
	}
	return Raw{}, lastErr
}

// Normalize validates raw and converts it to an Estimate. at picks the meal
// type when raw has none.
func Normalize(raw Raw, at time.Time) (Estimate, error) {
	name := strings.Join(strings.Fields(raw.FoodName), " ")
	if name == "" {
		return Estimate{}, fmt.Errorf("%w: response has no food name", ErrUnavailable)
	}

	quantity := 0.0
	if raw.QuantityGrams != nil {
		quantity = *raw.QuantityGrams
	}
	if quantity < 0 {
		return Estimate{}, fmt.Errorf("%w: negative quantity %.1f g", ErrInvalidInput, quantity)
	}

	nut, quantity, err := raw.nutrition(quantity)
	if err != nil {
		return Estimate{}, err
	}
	if nut.Negative() {
		return Estimate{}, fmt.Errorf("%w: negative nutrition in prediction (%.1f kcal)", ErrInvalidInput, nut.Calories)
	}
	if nut.Calories > MaxPlausibleCalories {
		return Estimate{}, fmt.Errorf("%w: %.0f kcal exceeds plausible maximum", ErrInvalidInput, nut.Calories)
	}

	est := Estimate{
		FoodName:   cases.Title(language.English, cases.NoLower).String(name),
		QuantityG:  quantity,
		Nutrition:  nut,
		Confidence: normalizeConfidence(raw.Confidence),
	}
	if m, err := model.ParseMealType(raw.MealType); err == nil {
		est.MealType = m
	} else {
		est.MealType = MealTypeAt(at)
		est.MealTypeDefaulted = true
	}
	return est, nil
}

// normalizeConfidence clamps to [0,1]; a missing value is a middling 0.5.
func normalizeConfidence(c *float64) float64 {
	if c == nil {
		return defaultConfidence
	}
	return min(max(*c, 0), 1)
}

// MealTypeAt classifies a meal by the hour of t in t's location.
func MealTypeAt(t time.Time) model.MealType {
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return model.Breakfast
	case h >= 11 && h < 16:
		return model.Lunch
	case h >= 16 && h < 21:
		return model.Dinner
	default:
		return model.Snack
	}
}
