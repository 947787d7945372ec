package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"header", "/api/state?session=q", "h", "h"},
		{"query", "/api/state?session=q", "", "q"},
		{"default", "/api/state", "", DefaultSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(SessionHeader, tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			var got string
			handler := SessionMiddleware()(func(c echo.Context) error {
				got = SessionID(c)
				return nil
			})
			require.NoError(t, handler(c))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionIDWithoutMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?session=abc", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "abc", SessionID(c))
}

func TestError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Error(c, domain.NewValidationError("Prompt required")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Prompt required"}`, rec.Body.String())
}
