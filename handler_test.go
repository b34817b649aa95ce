package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/predict"
	"lg/calorie-tracker-api/internal/store"
	"lg/calorie-tracker-api/internal/store/sqlite"
)

// fixedNow is lunchtime on the day every test logs against.
var fixedNow = time.Date(2026, 10, 14, 12, 30, 0, 0, time.UTC)

type testEnv struct {
	router *gin.Engine
	h      *Handler
	store  store.Store
	token  string
	userID int64

	mockStatus atomic.Int32
	mockBody   atomic.Value
	mockCalls  atomic.Int32
}

// setupTest creates a Gin engine over a temp-dir SQLite store, a mock OpenAI
// server, and one user whose token is in env.token.
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{}
	env.mockStatus.Store(http.StatusOK)
	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mockCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(env.mockStatus.Load()))
		json.NewEncoder(w).Encode(env.mockBody.Load())
	}))
	t.Cleanup(mockOpenAI.Close)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	env.store = st

	ai := predict.NewOpenAI("test-key", mockOpenAI.URL+"/v1/", "")
	env.h = newHandler(st, predict.NewNormalizer(ai, 5*time.Second))
	env.h.now = func() time.Time { return fixedNow }
	env.router = gin.New()
	env.h.registerRoutes(env.router)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := st.CreateUser(context.Background(), model.User{
		Username:  "lyle",
		Email:     "lyle@example.com",
		Password:  string(hash),
		AuthToken: uuid.New().String(),
	})
	require.NoError(t, err)
	env.token, env.userID = u.AuthToken, u.ID
	return env
}

// setMock sets the status and content of the next OpenAI responses.
func (env *testEnv) setMock(status int, content string) {
	env.mockStatus.Store(int32(status))
	env.mockBody.Store(openAIChatResponse(content))
}

// openAIChatResponse wraps a content string in the OpenAI chat completions
// response shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

// do sends an authenticated JSON request.
func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type entryResponse struct {
	Entry    model.FoodEntry `json:"entry"`
	DailyLog model.DailyLog  `json:"daily_log"`
}

/* ─── Auth ───────────────────────────────────────────────────────────── */

func TestAuth_RejectsMissingAndUnknownTokens(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/api/profile", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.token = "not-a-token"
	assert.Equal(t, http.StatusUnauthorized, env.do("GET", "/api/profile", "").Code)
}

func TestAuth_RegisterThenLogin(t *testing.T) {
	env := setupTest(t)

	w := env.do("POST", "/api/register", `{"username":"sam","email":"sam@example.com","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[map[string]any](t, w)

	w = env.do("POST", "/api/login", `{"username":"sam","password":"longenough"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[map[string]any](t, w)
	assert.Equal(t, reg["token"], login["token"])

	assert.Equal(t, http.StatusUnauthorized, env.do("POST", "/api/login", `{"username":"sam","password":"wrong"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do("POST", "/api/login", `{"username":"nobody","password":"x"}`).Code)
	assert.Equal(t, http.StatusConflict, env.do("POST", "/api/register", `{"username":"sam","password":"longenough"}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/register", `{"username":"kim","password":"short"}`).Code)
}

/* ─── Profile ────────────────────────────────────────────────────────── */

func TestProfile_PatchRecomputesGoals(t *testing.T) {
	env := setupTest(t)

	w := env.do("PATCH", "/api/profile",
		`{"weight_kg":80,"height_cm":180,"date_of_birth":"1996-10-14","sex":"M","activity_level":"moderate","goal_type":"maintain"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decode[profileResponse](t, w)

	require.NotNil(t, p.BMR)
	assert.InDelta(t, 1780, *p.BMR, 1e-9)
	assert.InDelta(t, 2759, *p.TDEE, 1e-9)
	assert.InDelta(t, 2759, *p.CalorieGoal, 1e-9)
	assert.InDelta(t, 2640, *p.WaterGoalML, 1e-9)
	assert.Equal(t, "normal", string(*p.BMICategory))
	require.NotNil(t, p.Age)
	assert.Equal(t, 30, *p.Age)
	require.NotNil(t, p.IdealWeight)

	// Switching goal recomputes from the stored biometrics.
	w = env.do("PATCH", "/api/profile", `{"goal_type":"lose"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p = decode[profileResponse](t, w)
	assert.InDelta(t, 2259, *p.CalorieGoal, 1e-9)
}

func TestProfile_PatchImperialWeight(t *testing.T) {
	env := setupTest(t)

	w := env.do("PATCH", "/api/profile", `{"weight_lbs":220.462,"units":"imperial"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decode[profileResponse](t, w)
	require.NotNil(t, p.WeightKG)
	assert.InDelta(t, 100, *p.WeightKG, 0.01)
	// Incomplete biometrics leave goals unset.
	assert.Nil(t, p.CalorieGoal)
}

func TestProfile_PatchRejectsInvalidValues(t *testing.T) {
	env := setupTest(t)

	for _, body := range []string{
		`{"sex":"other"}`,
		`{"activity_level":"couch"}`,
		`{"goal_type":"bulk"}`,
		`{"weight_kg":-70}`,
		`{"weight_kg":70,"height_cm":175,"sex":"female","date_of_birth":"2030-01-01"}`,
	} {
		w := env.do("PATCH", "/api/profile", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

/* ─── Food log ───────────────────────────────────────────────────────── */

func TestEntries_CreateUpdateDeleteKeepDailyLogInStep(t *testing.T) {
	env := setupTest(t)

	w := env.do("POST", "/api/entries", `{"food_name":"Toast","calories":120,"carbs_g":20,"meal_type":"breakfast"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[entryResponse](t, w)
	assert.Equal(t, 120.0, first.DailyLog.Calories)
	assert.Equal(t, "2026-10-14", first.Entry.Date.String())

	// No meal type: classified from the logged-at time (12:30 → lunch).
	w = env.do("POST", "/api/entries", `{"food_name":"Soup","calories":300}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	second := decode[entryResponse](t, w)
	assert.Equal(t, model.Lunch, second.Entry.MealType)
	assert.Equal(t, 420.0, second.DailyLog.Calories)

	w = env.do("PUT", "/api/entries/"+itoa(second.Entry.ID), `{"nutrition":{"calories":350}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do("DELETE", "/api/entries/"+itoa(first.Entry.ID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	del := decode[map[string]model.DailyLog](t, w)
	assert.Equal(t, 350.0, del["daily_log"].Calories)
	assert.Equal(t, 1, del["daily_log"].EntryCount)

	w = env.do("GET", "/api/daily?date=2026-10-14", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode[dailySummary](t, w)
	assert.Equal(t, 350.0, sum.Log.Calories)
	require.Len(t, sum.Entries, 1)
	assert.Equal(t, 350.0, sum.ByMeal[model.Lunch])
}

func TestEntries_FromFoodDatabase(t *testing.T) {
	env := setupTest(t)

	w := env.do("POST", "/api/foods", `{"name":"Rolled Oats","calories_per_100g":380,"protein_per_100g":13,"carbs_per_100g":66,"fat_per_100g":7,"fiber_per_100g":10}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	food := decode[model.Food](t, w)
	assert.False(t, food.Verified)

	w = env.do("GET", "/api/foods?q=oat", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Food](t, w), 1)

	w = env.do("POST", "/api/entries", `{"food_id":`+itoa(food.ID)+`,"quantity_g":50,"meal_type":"breakfast"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e := decode[entryResponse](t, w)
	assert.Equal(t, "Rolled Oats", e.Entry.FoodName)
	assert.InDelta(t, 190, e.Entry.Calories, 1e-9)
	assert.InDelta(t, 5, e.Entry.FiberG, 1e-9)

	assert.Equal(t, http.StatusNotFound, env.do("POST", "/api/entries", `{"food_id":999,"quantity_g":50}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/entries", `{"food_id":`+itoa(food.ID)+`}`).Code)
}

func TestEntries_RejectInvalid(t *testing.T) {
	env := setupTest(t)

	for _, body := range []string{
		`{"food_name":"Mystery"}`,
		`{"food_name":"Bad","calories":-5}`,
		`{"food_name":"Bad","calories":100,"meal_type":"brunch"}`,
		`{"calories":100}`,
	} {
		assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/entries", body).Code, body)
	}
	assert.Equal(t, http.StatusNotFound, env.do("DELETE", "/api/entries/12345", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("DELETE", "/api/entries/abc", "").Code)

	w := env.do("GET", "/api/daily", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[dailySummary](t, w).Log.EntryCount)
}

func TestEntries_HistoryAndGet(t *testing.T) {
	env := setupTest(t)
	for _, body := range []string{
		`{"food_name":"Rice","calories":200,"date":"2026-10-01"}`,
		`{"food_name":"Beans","calories":300,"date":"2026-10-09"}`,
		`{"food_name":"Soup","calories":150}`,
	} {
		require.Equal(t, http.StatusCreated, env.do("POST", "/api/entries", body).Code, body)
	}

	// Defaults to the 7 days ending today (2026-10-08 .. 2026-10-14).
	w := env.do("GET", "/api/entries", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	history := decode[struct {
		Start   model.Date        `json:"start"`
		Entries []model.FoodEntry `json:"entries"`
	}](t, w)
	assert.Equal(t, "2026-10-08", history.Start.String())
	require.Len(t, history.Entries, 2)
	assert.Equal(t, "Beans", history.Entries[0].FoodName)
	assert.Equal(t, "Soup", history.Entries[1].FoodName)

	w = env.do("GET", "/api/entries?start=2026-09-30&end=2026-10-05", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	old := decode[struct {
		Entries []model.FoodEntry `json:"entries"`
	}](t, w).Entries
	require.Len(t, old, 1)

	w = env.do("GET", "/api/entries/"+itoa(old[0].ID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Rice", decode[model.FoodEntry](t, w).FoodName)

	assert.Equal(t, http.StatusNotFound, env.do("GET", "/api/entries/12345", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/entries?start=2020-01-01&end=2026-10-14", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/entries?start=2026-10-15&end=2026-10-14", "").Code)
}

func TestWater_DefaultsToOneGlass(t *testing.T) {
	env := setupTest(t)

	w := env.do("POST", "/api/water", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do("POST", "/api/water", `{"ml":500}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 750.0, decode[entryResponse](t, w).DailyLog.WaterML)

	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/water", `{"ml":-1}`).Code)
}

// corruptStore returns a stale daily log and records repairs. beforeRepair,
// when set, runs ahead of each repair.
type corruptStore struct {
	store.Store
	recomputed   atomic.Int32
	beforeRepair func(ctx context.Context)
}

func (s *corruptStore) GetDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error) {
	d, err := s.Store.GetDailyLog(ctx, userID, date)
	d.Calories += 999
	return d, err
}

func (s *corruptStore) RecomputeDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error) {
	s.recomputed.Add(1)
	if s.beforeRepair != nil {
		s.beforeRepair(ctx)
	}
	return s.Store.RecomputeDailyLog(ctx, userID, date)
}

func TestDailySummary_RepairsInconsistentLog(t *testing.T) {
	env := setupTest(t)
	require.Equal(t, http.StatusCreated, env.do("POST", "/api/entries", `{"food_name":"Apple","calories":95}`).Code)

	cs := &corruptStore{Store: env.store}
	env.h.store = cs

	w := env.do("GET", "/api/daily", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 95.0, decode[dailySummary](t, w).Log.Calories)
	assert.Equal(t, int32(1), cs.recomputed.Load())
}

func TestDailySummary_RepairRereadsEntries(t *testing.T) {
	env := setupTest(t)
	require.Equal(t, http.StatusCreated, env.do("POST", "/api/entries", `{"food_name":"Apple","calories":95}`).Code)

	// An entry written between the summary's reads and its repair.
	cs := &corruptStore{Store: env.store}
	cs.beforeRepair = func(ctx context.Context) {
		_, _, err := env.store.CreateEntry(ctx, model.FoodEntry{
			UserID:    env.userID,
			FoodName:  "Pear",
			MealType:  model.Snack,
			Date:      model.NewDate(fixedNow),
			LoggedAt:  fixedNow,
			Nutrition: model.Nutrition{Calories: 100},
		})
		require.NoError(t, err)
	}
	env.h.store = cs

	w := env.do("GET", "/api/daily", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode[dailySummary](t, w)
	assert.Equal(t, 195.0, sum.Log.Calories)
	assert.Len(t, sum.Entries, 2)
	assert.Equal(t, 100.0, sum.ByMeal[model.Snack])
}

/* ─── Predictions ────────────────────────────────────────────────────── */

const saladPrediction = `{"food_name":"chicken caesar salad","meal_type":"lunch","quantity_grams":300,"calories":450,"protein_g":35,"carbs_g":15,"fat_g":28,"fiber_g":4,"confidence":0.8}`

func TestPredictions_TextThenPromote(t *testing.T) {
	env := setupTest(t)
	env.setMock(http.StatusOK, saladPrediction)

	w := env.do("POST", "/api/predictions/text", `{"description":"caesar salad with grilled chicken"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[model.CaloriePrediction](t, w)
	assert.Equal(t, "Chicken Caesar Salad", p.FoodName)
	assert.Equal(t, model.InputText, p.InputKind)
	assert.False(t, p.Saved)

	// Predicting does not touch the log.
	w = env.do("GET", "/api/daily", "")
	assert.Zero(t, decode[dailySummary](t, w).Log.Calories)

	w = env.do("POST", "/api/predictions/"+itoa(p.ID)+"/promote", `{"quantity_g":150}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e := decode[entryResponse](t, w)
	assert.InDelta(t, 225, e.Entry.Calories, 1e-9)
	assert.True(t, e.Entry.AIGenerated)
	assert.InDelta(t, 225, e.DailyLog.Calories, 1e-9)

	assert.Equal(t, http.StatusConflict, env.do("POST", "/api/predictions/"+itoa(p.ID)+"/promote", "").Code)

	w = env.do("GET", "/api/predictions/"+itoa(p.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.CaloriePrediction](t, w).Saved)
}

func TestPredictions_NegativeCaloriesPersistNothing(t *testing.T) {
	env := setupTest(t)
	env.setMock(http.StatusOK, `{"food_name":"anti-food","calories":-5}`)

	w := env.do("POST", "/api/predictions/text", `{"description":"something odd"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do("GET", "/api/predictions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.CaloriePrediction](t, w))
}

func TestPredictions_Unrecognized(t *testing.T) {
	env := setupTest(t)
	env.setMock(http.StatusOK, `{"error":"unrecognized"}`)

	w := env.do("POST", "/api/predictions/text", `{"description":"asdfghjkl"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, int32(1), env.mockCalls.Load())
}

func TestPredictions_UpstreamFailureIsRetryable(t *testing.T) {
	env := setupTest(t)
	env.setMock(http.StatusInternalServerError, `{}`)

	w := env.do("POST", "/api/predictions/text", `{"description":"2 eggs"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, int32(2), env.mockCalls.Load())
}

func TestPredictions_NoKeyConfigured(t *testing.T) {
	env := setupTest(t)
	env.h.predictor = nil

	w := env.do("POST", "/api/predictions/text", `{"description":"2 eggs"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/predictions/text", `{"description":"  "}`).Code)
}

func TestPredictions_Image(t *testing.T) {
	env := setupTest(t)
	env.setMock(http.StatusOK, `{"food_name":"margherita pizza","quantity_grams":120,"calories":300}`)

	// Minimal PNG signature so content sniffing reports image/png.
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "pizza.png")
	require.NoError(t, err)
	_, err = fw.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("description", "one slice"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/predictions/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[model.CaloriePrediction](t, w)
	assert.Equal(t, model.InputImage, p.InputKind)
	assert.Equal(t, "image/png", p.ImageMIME)
	assert.Len(t, p.ImageSHA256, 64)
	// No meal type in the answer: defaulted from the 12:30 request time.
	assert.Equal(t, model.Lunch, p.MealType)
}

func TestPredictions_ImageRejectsNonImageContent(t *testing.T) {
	env := setupTest(t)
	env.setMock(http.StatusOK, `{"food_name":"pizza","calories":300}`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="pizza.png"`)
	hdr.Set("Content-Type", "image/png")
	pw, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = pw.Write([]byte("just some text, labelled as a png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/predictions/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Zero(t, env.mockCalls.Load())
}

func TestPredictions_ImageRequired(t *testing.T) {
	env := setupTest(t)
	req := httptest.NewRequest("POST", "/api/predictions/image", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

/* ─── Analytics ──────────────────────────────────────────────────────── */

func TestWeekSummary_FillsGaps(t *testing.T) {
	env := setupTest(t)
	require.Equal(t, http.StatusCreated, env.do("POST", "/api/entries", `{"food_name":"Rice","calories":200,"date":"2026-10-13"}`).Code)
	require.Equal(t, http.StatusCreated, env.do("POST", "/api/entries", `{"food_name":"Beans","calories":300,"date":"2026-10-15"}`).Code)

	// Any day in the week resolves to its Monday.
	w := env.do("GET", "/api/analytics/week?week_start=2026-10-14", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	week := decode[struct {
		WeekStart model.Date `json:"week_start"`
		Days      []struct {
			Date     model.Date `json:"date"`
			Calories float64    `json:"total_calories"`
			HasData  bool       `json:"has_data"`
		} `json:"days"`
	}](t, w)

	assert.Equal(t, "2026-10-12", week.WeekStart.String())
	require.Len(t, week.Days, 7)
	assert.False(t, week.Days[0].HasData)
	assert.True(t, week.Days[1].HasData)
	assert.Equal(t, 200.0, week.Days[1].Calories)
	assert.True(t, week.Days[3].HasData)
	assert.Equal(t, "2026-10-18", week.Days[6].Date.String())
}

func TestAnalytics_Range(t *testing.T) {
	env := setupTest(t)
	require.Equal(t, http.StatusCreated, env.do("POST", "/api/entries", `{"food_name":"Rice","calories":200,"date":"2026-10-10"}`).Code)
	require.Equal(t, http.StatusCreated, env.do("POST", "/api/entries", `{"food_name":"Beans","calories":400,"date":"2026-10-14"}`).Code)

	w := env.do("GET", "/api/analytics?start=2026-10-08&end=2026-10-14", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[analyticsResponse](t, w)
	assert.Len(t, resp.Days, 2)
	assert.Equal(t, 2, resp.Stats.DaysTracked)
	assert.InDelta(t, 300, resp.Stats.AvgCalories, 1e-9)

	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/analytics?start=2026-10-15&end=2026-10-14", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/analytics?start=2020-01-01&end=2026-10-14", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/analytics?start=yesterday", "").Code)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
