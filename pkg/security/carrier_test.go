package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieCarrier(t *testing.T) {
	t.Parallel()

	c := NewCarrier(Options{Strategy: StrategyCookie, CookieKey: DefaultCookieKey})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := c.Token(r)
	assert.False(t, ok)

	w := httptest.NewRecorder()
	c.Attach(w, "tok123", time.Hour)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieKey, cookies[0].Name)
	assert.Equal(t, "tok123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	token, ok := c.Token(r)
	require.True(t, ok)
	assert.Equal(t, "tok123", token)

	w = httptest.NewRecorder()
	c.Clear(w)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHeaderCarrier(t *testing.T) {
	t.Parallel()

	c := NewCarrier(Options{Strategy: StrategyHeader})

	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"missing header", "", "", false},
		{"no token", "Bearer ", "", false},
		{"wrong scheme", "Basic abc", "", false},
		{"scheme only", "Bearer", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			token, ok := c.Token(r)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestHeaderCarrierAttachIsNoop(t *testing.T) {
	t.Parallel()

	c := NewCarrier(Options{Strategy: StrategyHeader})
	w := httptest.NewRecorder()
	c.Attach(w, "tok", time.Hour)
	assert.Empty(t, w.Result().Cookies())
}

func TestHybridCarrierHeaderWins(t *testing.T) {
	t.Parallel()

	c := NewCarrier(Options{Strategy: StrategyHybrid, CookieKey: DefaultCookieKey})

	// A stale cookie must not shadow the explicitly sent bearer token.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	r.AddCookie(&http.Cookie{Name: DefaultCookieKey, Value: "from-cookie"})

	token, ok := c.Token(r)
	require.True(t, ok)
	assert.Equal(t, "from-header", token)
}

func TestHybridCarrierFallsBackToCookie(t *testing.T) {
	t.Parallel()

	c := NewCarrier(Options{Strategy: StrategyHybrid, CookieKey: DefaultCookieKey})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieKey, Value: "from-cookie"})

	token, ok := c.Token(r)
	require.True(t, ok)
	assert.Equal(t, "from-cookie", token)
}

func TestHybridCarrierAttachSetsCookie(t *testing.T) {
	t.Parallel()

	c := NewCarrier(Options{Strategy: StrategyHybrid, CookieKey: DefaultCookieKey})

	w := httptest.NewRecorder()
	c.Attach(w, "tok123", time.Hour)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tok123", cookies[0].Value)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	token, ok := c.Token(r)
	require.True(t, ok)
	assert.Equal(t, "tok123", token)
}
