package pagecache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCountingRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	hits := 0
	r.GET("/", store.Middleware(), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, fmt.Sprintf("render %d", hits))
	})

	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCachedPageIsServedStaleWithinTTL(t *testing.T) {
	store := New(time.Minute)
	r := newCountingRouter(store)

	first := get(r, "/")
	second := get(r, "/")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "render 1", first.Body.String())
	assert.Equal(t, "render 1", second.Body.String(), "second request must be served from cache")
}

func TestClearMakesNewContentVisible(t *testing.T) {
	store := New(time.Minute)
	r := newCountingRouter(store)

	assert.Equal(t, "render 1", get(r, "/").Body.String())
	store.Clear()
	assert.Equal(t, "render 2", get(r, "/").Body.String())
}

func TestExpiryMakesNewContentVisible(t *testing.T) {
	store := New(30 * time.Millisecond)
	r := newCountingRouter(store)

	assert.Equal(t, "render 1", get(r, "/").Body.String())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, "render 2", get(r, "/").Body.String())
}

func TestDistinctQueriesCachedSeparately(t *testing.T) {
	store := New(time.Minute)
	r := newCountingRouter(store)

	assert.Equal(t, "render 1", get(r, "/?page=1").Body.String())
	assert.Equal(t, "render 2", get(r, "/?page=2").Body.String())
	assert.Equal(t, "render 1", get(r, "/?page=1").Body.String())
}

func TestNonGetRequestsBypassCache(t *testing.T) {
	store := New(time.Minute)
	gin.SetMode(gin.TestMode)
	r := gin.New()

	posts := 0
	r.POST("/", store.Middleware(), func(c *gin.Context) {
		posts++
		c.String(http.StatusOK, fmt.Sprintf("post %d", posts))
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, "post 1", w1.Body.String())
	assert.Equal(t, "post 2", w2.Body.String())
}
