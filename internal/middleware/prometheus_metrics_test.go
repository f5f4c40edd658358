package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestMetricsMiddleware_StatusCodesAreNumeric(t *testing.T) {
	m := metrics.Initialize()
	m.HTTPRequestsTotal.Reset()

	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/items/:id", func(c *gin.Context) {
		switch c.Param("id") {
		case "missing":
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		case "broken":
			c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		}
	})

	for _, id := range []string{"1", "2", "missing", "broken"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/items/"+id, nil))
	}

	// labelled by route template, not by raw path
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "500")))
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), GinLoggerMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

type stubProvider struct {
	err error
}

func (s stubProvider) Get(context.Context) (*gorm.DB, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &gorm.DB{}, nil
}

func TestRequireDatabase(t *testing.T) {
	build := func(p database.Provider) *gin.Engine {
		router := gin.New()
		router.GET("/data", RequireDatabase(p, time.Second), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return router
	}

	w := httptest.NewRecorder()
	build(stubProvider{}).ServeHTTP(w, httptest.NewRequest("GET", "/data", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	down := stubProvider{err: fmt.Errorf("%w: dial tcp: refused", database.ErrUnavailable)}
	build(down).ServeHTTP(w, httptest.NewRequest("GET", "/data", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Service Unavailable: Could not connect to the database.")
}

func TestTracingMiddlewarePassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(TracingMiddleware("test")...)
	router.GET("/posts/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/posts/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
