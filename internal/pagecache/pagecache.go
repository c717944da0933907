package pagecache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// Store caches rendered page bodies for a fixed TTL. Within the window a
// cached page is served as-is even though the store already reflects newer
// writes; only expiry or Clear makes changes visible. Concurrent renders of
// the same key race last-write-wins, which is fine for stale-tolerant pages.
type Store struct {
	c   *cache.Cache
	ttl time.Duration
}

type entry struct {
	status      int
	contentType string
	body        []byte
}

func New(ttl time.Duration) *Store {
	return &Store{
		c:   cache.New(ttl, 2*ttl),
		ttl: ttl,
	}
}

// Clear drops every cached page. Exposed to the admin path and tests.
func (s *Store) Clear() {
	s.c.Flush()
}

// Middleware serves and records GET responses keyed by path and raw query.
// Only 200 responses are recorded.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.Path + "?" + c.Request.URL.RawQuery
		if v, ok := s.c.Get(key); ok {
			e := v.(entry)
			c.Data(e.status, e.contentType, e.body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() == http.StatusOK {
			s.c.SetDefault(key, entry{
				status:      w.Status(),
				contentType: w.Header().Get("Content-Type"),
				body:        w.buf.Bytes(),
			})
		}
	}
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
