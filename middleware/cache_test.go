package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCacheServesRepeatedGets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	FlushCache()

	hits := 0
	r := gin.New()
	r.GET("/list", Cache(), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hit": hits})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"hit":1`)
	}
	assert.Equal(t, 1, hits)
}

func TestCacheKeyedByQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	FlushCache()

	r := gin.New()
	r.GET("/list", Cache(), func(c *gin.Context) {
		c.String(http.StatusOK, c.Query("page"))
	})

	for _, page := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list?page="+page, nil))
		assert.Equal(t, page, w.Body.String())
	}
}

func TestFlushCacheDropsEntries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	FlushCache()

	hits := 0
	r := gin.New()
	r.GET("/list", Cache(), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, strconv.Itoa(hits))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))
	assert.Equal(t, "1", w.Body.String())

	FlushCache()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))
	assert.Equal(t, "2", w.Body.String())
}

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/pin", RateLimitByIP(0.001, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/pin", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
