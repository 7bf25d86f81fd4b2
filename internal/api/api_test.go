package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodtracking/backend/internal/health"
	"github.com/pageza/foodtracking/backend/internal/middleware"
	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/pageza/foodtracking/backend/internal/service"
	"github.com/pageza/foodtracking/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *gin.Engine
	store  *health.MemoryStore
}

func newTestAPI(t *testing.T, images ImageAttacher) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	entryRepo := service.NewGormEntryRepository(db)
	store := health.NewMemoryStore()
	settings := service.NewSettingsService(service.NewMemoryPreferenceStore())

	entries := NewEntryHandler(service.NewEntryService(entryRepo, store), settings, images)
	entries.now = func() time.Time { return testhelpers.NoonOn(testhelpers.Day) }
	favorites := NewFavoriteHandler(service.NewFavoriteService(service.NewGormFavoriteRepository(db), entryRepo))
	favorites.now = entries.now

	router := gin.New()
	router.Use(middleware.ErrorHandler(StatusFor))
	v1 := router.Group("/api/v1")
	entries.RegisterRoutes(v1)
	favorites.RegisterRoutes(v1)
	NewSettingsHandler(settings).RegisterRoutes(v1)
	return &testAPI{router: router, store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func appleRequest() gin.H {
	return gin.H{
		"name":         "Apple",
		"emoji":        "🍎",
		"calories":     52,
		"fats":         0.2,
		"proteins":     0.3,
		"carbs":        14,
		"weight_grams": 100,
		"date":         testhelpers.Day.String(),
		"timestamp":    testhelpers.NoonOn(testhelpers.Day).UnixMilli(),
		"source":       "PHOTO",
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrEntryNotFound, http.StatusNotFound},
		{service.ErrFavoriteNotFound, http.StatusNotFound},
		{service.ErrInvalidEntry, http.StatusBadRequest},
		{service.ErrInvalidProfile, http.StatusBadRequest},
		{service.ErrUnsupportedImage, http.StatusBadRequest},
		{service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{service.ErrInvalidToken, http.StatusUnauthorized},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
		})
	}
}

func TestEntryLifecycle(t *testing.T) {
	a := newTestAPI(t, nil)

	rr := a.do(t, http.MethodPost, "/api/v1/entries", appleRequest())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[model.FoodEntry](t, rr)
	assert.Equal(t, model.SourcePhoto, created.Source)
	assert.False(t, created.Sync.IsSynced())

	rr = a.do(t, http.MethodPatch, "/api/v1/entries/"+itoa(created.ID)+"/weight", gin.H{"weight_grams": 200})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	scaled := decode[model.FoodEntry](t, rr)
	assert.Equal(t, 104, scaled.Calories)
	assert.InDelta(t, 28.0, scaled.Carbs, 1e-9)

	rr = a.do(t, http.MethodGet, "/api/v1/entries?date="+testhelpers.Day.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct {
		Entries []model.FoodEntry `json:"entries"`
	}](t, rr)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, 200, list.Entries[0].WeightGrams)

	rr = a.do(t, http.MethodDelete, "/api/v1/entries/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	outcome := decode[service.DeleteOutcome](t, rr)
	assert.False(t, outcome.RemoteDeleted)

	rr = a.do(t, http.MethodGet, "/api/v1/entries/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(t, http.MethodPost, "/api/v1/entries/restore", outcome.Entry)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	restored := decode[model.FoodEntry](t, rr)
	assert.NotEqual(t, created.ID, restored.ID)
	assert.Equal(t, 104, restored.Calories)
}

func TestCreateEntrySyncNow(t *testing.T) {
	a := newTestAPI(t, nil)

	req := appleRequest()
	req["sync_now"] = true
	rr := a.do(t, http.MethodPost, "/api/v1/entries", req)
	require.Equal(t, http.StatusCreated, rr.Code)

	created := decode[model.FoodEntry](t, rr)
	externalID, ok := created.Sync.ExternalID()
	require.True(t, ok)
	_, stored := a.store.Record(externalID)
	assert.True(t, stored)
}

func TestEntryValidationErrors(t *testing.T) {
	a := newTestAPI(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"missing name", http.MethodPost, "/api/v1/entries", gin.H{"calories": 10}, http.StatusBadRequest},
		{"negative calories", http.MethodPost, "/api/v1/entries", gin.H{"name": "Bad", "calories": -1}, http.StatusBadRequest},
		{"unknown source", http.MethodPost, "/api/v1/entries", gin.H{"name": "Odd", "source": "TELEPATHY"}, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/v1/entries/abc", nil, http.StatusBadRequest},
		{"unknown id", http.MethodPut, "/api/v1/entries/99", gin.H{"name": "Ghost"}, http.StatusNotFound},
		{"bad date", http.MethodGet, "/api/v1/summary?date=04-03-2024", nil, http.StatusBadRequest},
		{"no image store", http.MethodPost, "/api/v1/entries/1/image", nil, http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestSummaryAndHistory(t *testing.T) {
	a := newTestAPI(t, nil)

	for _, cal := range []int{500, 700} {
		req := appleRequest()
		req["calories"] = cal
		require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/entries", req).Code)
	}
	yesterday := appleRequest()
	yesterday["date"] = testhelpers.Day.AddDays(-1).String()
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/entries", yesterday).Code)

	rr := a.do(t, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[summaryResponse](t, rr)
	assert.Equal(t, 1200, summary.Summary.TotalCalories)
	assert.Equal(t, 2000, summary.Limits.Calories)
	assert.InDelta(t, 0.6, summary.Progress.Calories, 1e-9)

	rr = a.do(t, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[struct {
		Days []service.DayHistory `json:"days"`
	}](t, rr)
	require.Len(t, history.Days, 2)
	assert.True(t, history.Days[0].Date.Equal(testhelpers.Day))
	assert.Equal(t, 1200, history.Days[0].Summary.TotalCalories)
}

func TestFavoritesFlow(t *testing.T) {
	a := newTestAPI(t, nil)

	rr := a.do(t, http.MethodPost, "/api/v1/entries", appleRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[model.FoodEntry](t, rr)

	rr = a.do(t, http.MethodPost, "/api/v1/favorites/toggle", gin.H{"entry_id": created.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"is_favorite":true}`, rr.Body.String())

	rr = a.do(t, http.MethodPost, "/api/v1/favorites/toggle", gin.H{"name": "Toast", "calories": 90})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(t, http.MethodGet, "/api/v1/favorites", nil)
	list := decode[struct {
		Favorites []model.FavoriteFood `json:"favorites"`
	}](t, rr)
	require.Len(t, list.Favorites, 2)
	assert.Equal(t, "Apple", list.Favorites[0].Name)

	rr = a.do(t, http.MethodPost, "/api/v1/favorites/Apple/log", gin.H{"date": testhelpers.Day.AddDays(1).String()})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	logged := decode[model.FoodEntry](t, rr)
	assert.Equal(t, model.SourceFavorite, logged.Source)
	assert.True(t, logged.Date.Equal(testhelpers.Day.AddDays(1)))

	rr = a.do(t, http.MethodDelete, "/api/v1/favorites/Apple", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	removed := decode[model.FavoriteFood](t, rr)
	assert.Equal(t, 52, removed.Calories)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, "/api/v1/favorites/Apple", nil).Code)
	assert.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/favorites/restore", removed).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/v1/favorites/toggle", gin.H{}).Code)
}

func TestToggleInlineFavoriteDefaultsWeight(t *testing.T) {
	a := newTestAPI(t, nil)

	rr := a.do(t, http.MethodPost, "/api/v1/favorites/toggle", gin.H{"name": "Toast", "calories": 90})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(t, http.MethodGet, "/api/v1/favorites", nil)
	list := decode[struct {
		Favorites []model.FavoriteFood `json:"favorites"`
	}](t, rr)
	require.Len(t, list.Favorites, 1)
	assert.Equal(t, model.DefaultWeightGrams, list.Favorites[0].WeightGrams)

	rr = a.do(t, http.MethodPost, "/api/v1/favorites/Toast/log", gin.H{"date": testhelpers.Day.String()})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	logged := decode[model.FoodEntry](t, rr)
	assert.Equal(t, model.DefaultWeightGrams, logged.WeightGrams)
	assert.Equal(t, 90, logged.Calories)
}

func TestSettingsEndpoints(t *testing.T) {
	a := newTestAPI(t, nil)

	rr := a.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	settings := decode[service.Settings](t, rr)
	assert.False(t, settings.OnboardingComplete)
	assert.Equal(t, 2633, settings.TDEE)

	profile := gin.H{
		"age":              30,
		"weight_kg":        75,
		"target_weight_kg": 70,
		"weeks_to_goal":    8,
		"is_male":          true,
		"activity_level":   "MODERATE",
	}
	rr = a.do(t, http.MethodPost, "/api/v1/goals/preview", profile)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	preview := decode[struct {
		Breakdown service.GoalBreakdown `json:"breakdown"`
	}](t, rr)
	assert.Equal(t, 1946, preview.Breakdown.Calories)

	rr = a.do(t, http.MethodGet, "/api/v1/settings", nil)
	assert.False(t, decode[service.Settings](t, rr).OnboardingComplete)

	rr = a.do(t, http.MethodPut, "/api/v1/settings/profile", profile)
	require.Equal(t, http.StatusOK, rr.Code)
	goal := decode[model.GoalProfile](t, rr)
	assert.Equal(t, 1946, goal.Limits.Calories)

	rr = a.do(t, http.MethodPut, "/api/v1/settings/limits", gin.H{"calories": 1800, "fats": 0})
	require.Equal(t, http.StatusOK, rr.Code)
	limits := decode[model.DailyLimits](t, rr)
	assert.Equal(t, 1800, limits.Calories)
	assert.Equal(t, 65.0, limits.Fats)

	rr = a.do(t, http.MethodGet, "/api/v1/settings", nil)
	settings = decode[service.Settings](t, rr)
	assert.True(t, settings.OnboardingComplete)
	assert.Equal(t, 1800, settings.Limits.Calories)

	profile["activity_level"] = "couch"
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPut, "/api/v1/settings/profile", profile).Code)
	profile["activity_level"] = "light"
	profile["age"] = -5
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/v1/goals/preview", profile).Code)
}

type fakeImages struct {
	contentType string
	size        int
}

func (f *fakeImages) Attach(ctx context.Context, entryID uint, data []byte, contentType string) (*model.FoodEntry, error) {
	if contentType != "image/jpeg" {
		return nil, service.ErrUnsupportedImage
	}
	f.contentType = contentType
	f.size = len(data)
	uri := "s3://bucket/entry-images/x.jpg"
	return &model.FoodEntry{ID: entryID, Name: "Apple", ImageURI: &uri}, nil
}

func (f *fakeImages) URL(ctx context.Context, entry *model.FoodEntry) (string, error) {
	if entry.ImageURI == nil {
		return "", nil
	}
	return "https://signed.example/x.jpg", nil
}

func multipartImage(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="meal"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	images := &fakeImages{}
	a := newTestAPI(t, images)

	body, ct := multipartImage(t, "image/jpeg", []byte("jpegbytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries/5/image", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/jpeg", images.contentType)
	assert.Equal(t, 9, images.size)

	body, ct = multipartImage(t, "text/plain", []byte("nope"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/entries/5/image", body)
	req.Header.Set("Content-Type", ct)
	rr = httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetEntryIncludesImageURL(t *testing.T) {
	a := newTestAPI(t, &fakeImages{})

	req := appleRequest()
	req["image_uri"] = "s3://bucket/entry-images/x.jpg"
	rr := a.do(t, http.MethodPost, "/api/v1/entries", req)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[model.FoodEntry](t, rr)

	rr = a.do(t, http.MethodGet, "/api/v1/entries/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[entryResponse](t, rr)
	assert.Equal(t, "https://signed.example/x.jpg", got.ImageURL)
	assert.Equal(t, "Apple", got.Name)
}

type fakeSyncer struct {
	result *service.SyncResult
}

func (f *fakeSyncer) SyncRecent(ctx context.Context) *service.SyncResult {
	return f.result
}

func TestSyncHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		result  *service.SyncResult
		status  int
		message string
	}{
		{"nothing to do", &service.SyncResult{Checked: 3}, http.StatusOK, "✓ All 3 entries checked"},
		{"partial", &service.SyncResult{Checked: 3, Inserted: 2, InsertFailed: 1}, http.StatusOK, "✓ Synced/Updated 2 entries (1 failed)"},
		{"unavailable", &service.SyncResult{Checked: 3, Err: service.ErrStoreUnavailable}, http.StatusServiceUnavailable, "✗ Sync failed: health store unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			NewSyncHandler(&fakeSyncer{result: tt.result}, nil).RegisterRoutes(router.Group(""))

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sync", nil))
			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.message)
		})
	}
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(clientID string) (string, error) { return "token-for-" + clientID, nil }

func TestTokenExchange(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		secret string
		body   string
		status int
	}{
		{"valid", "s3cret", `{"client_id":"phone","secret":"s3cret"}`, http.StatusOK},
		{"wrong secret", "s3cret", `{"client_id":"phone","secret":"guess"}`, http.StatusUnauthorized},
		{"missing fields", "s3cret", `{"client_id":"phone"}`, http.StatusBadRequest},
		{"disabled", "", `{"client_id":"phone","secret":""}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			NewAuthHandler(fakeIssuer{}, tt.secret).RegisterRoutes(router.Group(""))

			req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"token":"token-for-phone","token_type":"Bearer"}`, rr.Body.String())
			}
		})
	}
}
