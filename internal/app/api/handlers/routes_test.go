package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/subscription/pkg/apperr"
	"github.com/fatflowers/subscription/pkg/response"
)

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHealthRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSubscriptionRoutesRejectBadIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// A nil service is fine here: invalid input is rejected before the
	// handler touches it.
	RegisterSubscriptionRoutes(r, nil)

	cases := []struct {
		name   string
		method string
		path   string
	}{
		{"get with non-numeric id", http.MethodGet, "/subscriptions/abc"},
		{"renew with non-numeric id", http.MethodPost, "/subscriptions/abc/renew"},
		{"list without customer_id", http.MethodGet, "/subscriptions"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			require.Contains(t, w.Body.String(), `"code":40000`)
		})
	}
}

func TestPaymentRoutesRejectBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r, nil)

	cases := []struct {
		name   string
		method string
		path   string
	}{
		{"get with non-numeric id", http.MethodGet, "/payments/abc"},
		{"confirm with non-numeric id", http.MethodPost, "/payments/abc/success"},
		{"fail with non-numeric id", http.MethodPost, "/payments/abc/fail"},
		{"list without filters", http.MethodGet, "/payments"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			require.Contains(t, w.Body.String(), `"code":40000`)
		})
	}
}

func TestNotificationListRequiresCustomerID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterNotificationRoutes(r, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"code":40000`)
}

func TestCodeForMapsServiceErrors(t *testing.T) {
	wrapped := func(sentinel error) error { return fmt.Errorf("subscription 3: %w", sentinel) }

	require.Equal(t, response.APIResponseCodeNotFound, codeFor(wrapped(apperr.ErrNotFound)))
	require.Equal(t, response.APIResponseCodeBadRequest, codeFor(wrapped(apperr.ErrValidation)))
	require.Equal(t, response.APIResponseCodeConflict, codeFor(wrapped(apperr.ErrDuplicateSubscription)))
	require.Equal(t, response.APIResponseCodeConflict, codeFor(wrapped(apperr.ErrConflict)))
	require.Equal(t, response.APIResponseCodeInvalidState, codeFor(wrapped(apperr.ErrInvalidState)))
	require.Equal(t, response.APIResponseCodeMessaging, codeFor(wrapped(apperr.ErrMessaging)))
	require.Equal(t, response.APIResponseCodeError, codeFor(http.ErrBodyNotAllowed))
}
