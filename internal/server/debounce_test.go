package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerAdmit(t *testing.T) {
	d := NewDebouncer(3*time.Second, time.Minute)
	now := time.Now()

	assert.True(t, d.Admit("k1", now))
	assert.False(t, d.Admit("k1", now.Add(time.Second)))
	assert.False(t, d.Admit("k1", now.Add(2*time.Second)))

	// Rejections keep the original timestamp, so the window is measured from
	// the admitted submission, not the last retry.
	assert.True(t, d.Admit("k1", now.Add(3*time.Second)))
}

func TestDebouncerIndependentKeys(t *testing.T) {
	d := NewDebouncer(3*time.Second, time.Minute)
	now := time.Now()

	assert.True(t, d.Admit("actor:1|POST /reservations|aa", now))
	assert.True(t, d.Admit("actor:2|POST /reservations|aa", now))
	assert.True(t, d.Admit("actor:1|POST /reservations|bb", now))
	assert.Equal(t, 3, d.Len())
}

func TestDebounceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	d := NewDebouncer(3*time.Second, time.Minute)
	router := gin.New()
	router.POST("/reservations", DebounceMiddleware(d), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	body := `{"facility_id":1,"date":"2026-03-02","time":"09:00","seats":[1]}`

	do := func(payload string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBufferString(payload))
		router.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusCreated, do(body))

	// Identical resubmission inside the window is refused.
	assert.Equal(t, http.StatusTooManyRequests, do(body))

	// A different payload is a different submission.
	other := `{"facility_id":1,"date":"2026-03-02","time":"09:30","seats":[1]}`
	assert.Equal(t, http.StatusCreated, do(other))
}

func TestDebounceMiddlewareDistinctPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)

	d := NewDebouncer(3*time.Second, time.Minute)
	router := gin.New()
	router.PATCH("/reservations/:reservationID", DebounceMiddleware(d), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	body := `{"seat_number":6,"date":"2026-03-02","time":"15:30"}`

	do := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, path, bytes.NewBufferString(body))
		router.ServeHTTP(w, req)
		return w.Code
	}

	// Identical bodies against different reservations are unrelated
	// submissions; only a retry against the same resource is refused.
	require.Equal(t, http.StatusOK, do("/reservations/5"))
	assert.Equal(t, http.StatusOK, do("/reservations/6"))
	assert.Equal(t, http.StatusTooManyRequests, do("/reservations/5"))
}
