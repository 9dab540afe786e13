package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/services"
	"github.com/ytfeed/ytfeed-backend/internal/types"
)

type fakeContributionService struct {
	storeErr  error
	byTagErr  error
	cachedErr error
}

func (f *fakeContributionService) StoreData(ctx context.Context, googleID, videoURL string, tags []string) error {
	return f.storeErr
}

func (f *fakeContributionService) GetByTag(ctx context.Context, tag string) ([]services.TaggedVideo, error) {
	if f.byTagErr != nil {
		return nil, f.byTagErr
	}
	return []services.TaggedVideo{{VideoID: "abc123def45", Tags: []string{tag}, Count: 2}}, nil
}

func (f *fakeContributionService) GetCachedByTag(ctx context.Context, tag string) ([]*types.CachedVideoData, error) {
	if f.cachedErr != nil {
		return nil, f.cachedErr
	}
	return []*types.CachedVideoData{{VideoID: "abc123def45", TagCategory: tag}}, nil
}

func (f *fakeContributionService) UserContributions(ctx context.Context, googleID string) ([]services.ContributedVideo, error) {
	return nil, nil
}

func newDataRouter(t *testing.T, svc services.ContributionService, googleID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	dh := NewDataHandler(log, svc)
	router := gin.New()
	// Stand-in for the auth middleware: inject the id the way it does.
	router.Use(func(c *gin.Context) {
		if googleID != "" {
			c.Set("ytfeed.google_id", googleID)
		}
		c.Next()
	})
	router.POST("/api/store-data", dh.StoreData)
	router.GET("/api/get-data-by-tag/:tag", dh.GetDataByTag)
	router.GET("/api/get-cached-videos/:tag", dh.GetCachedVideos)
	return router
}

func postStoreData(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/store-data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStoreDataStatusMapping(t *testing.T) {
	body := `{"video_url":"https://www.youtube.com/watch?v=abc123def45","tags":["music"]}`
	cases := []struct {
		name       string
		storeErr   error
		wantStatus int
	}{
		{name: "ok", storeErr: nil, wantStatus: http.StatusOK},
		{name: "invalid_input", storeErr: services.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "quota", storeErr: services.ErrQuotaExceeded, wantStatus: http.StatusTooManyRequests},
		{name: "storage", storeErr: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newDataRouter(t, &fakeContributionService{storeErr: tc.storeErr}, "u1")
			rec := postStoreData(router, body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want %d, got %d (%s)", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestStoreDataWithoutIdentity(t *testing.T) {
	router := newDataRouter(t, &fakeContributionService{}, "")
	rec := postStoreData(router, `{"video_url":"x","tags":["music"]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want 401, got %d", rec.Code)
	}
}

func TestTagLookupsNotFound(t *testing.T) {
	router := newDataRouter(t, &fakeContributionService{
		byTagErr:  services.ErrNotFound,
		cachedErr: services.ErrNotFound,
	}, "u1")

	for _, path := range []string{"/api/get-data-by-tag/music", "/api/get-cached-videos/music"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: want 404, got %d", path, rec.Code)
		}
	}
}

func TestTagLookupsFound(t *testing.T) {
	router := newDataRouter(t, &fakeContributionService{}, "u1")

	for _, path := range []string{"/api/get-data-by-tag/music", "/api/get-cached-videos/music"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: want 200, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "abc123def45") {
			t.Fatalf("%s: body missing video id: %s", path, rec.Body.String())
		}
	}
}
