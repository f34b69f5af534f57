package tests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"campuslink/internal/adapter/api"
)

func TestHealthCheck(t *testing.T) {
	// Setup
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Define the handler
	healthHandler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	// Assertions
	if assert.NoError(t, healthHandler(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	}
}

func TestValidatorRejectsMissingContent(t *testing.T) {
	e := echo.New()
	e.Validator = api.NewValidator()

	body := strings.NewReader(`{"recipient_id":"bob"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/messaging/messages", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var payload struct {
		Content     string `json:"content" validate:"required"`
		RecipientID string `json:"recipient_id"`
	}
	assert.NoError(t, c.Bind(&payload))
	assert.Error(t, c.Validate(&payload))
}
