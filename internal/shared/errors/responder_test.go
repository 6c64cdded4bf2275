package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agizo/agizo-api/internal/shared/validation"
)

var errBoom = errors.New("boom")

func serve(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/thing", handler)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/thing", nil))
	return rec
}

func TestRespondError_Validation(t *testing.T) {
	var errs validation.Errors
	errs.Add("items", validation.CodeEmpty, validation.MsgEmptyList())

	rec := serve(t, func(c *gin.Context) {
		RespondError(c, fmt.Errorf("invalid: %w", errs))
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	var body struct {
		Type       string `json:"type"`
		Instance   string `json:"instance"`
		Extensions struct {
			Fields map[string][]string `json:"fields"`
			Codes  map[string][]string `json:"codes"`
		} `json:"extensions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeValidation, body.Type)
	assert.Equal(t, "/thing", body.Instance)
	assert.Equal(t, []string{"This list may not be empty."}, body.Extensions.Fields["items"])
	assert.Equal(t, []string{"empty"}, body.Extensions.Codes["items"])
}

func TestChainedResponder_UsesMappersFirst(t *testing.T) {
	responder := NewChainedResponder("https://errors.agizo.example", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errBoom) {
			return ErrConflict.WithDetail("mapped"), true
		}
		return ProblemDetail{}, false
	})

	rec := serve(t, func(c *gin.Context) { responder.RespondError(c, errBoom) })
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://errors.agizo.example/problems/conflict")

	rec = serve(t, func(c *gin.Context) { responder.RespondError(c, errors.New("other")) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWithExtension_DoesNotMutateTemplate(t *testing.T) {
	_ = ErrNotFound.WithExtension("k", "v")
	assert.Nil(t, ErrNotFound.Extensions)
}

func TestHTTPStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatusFromError(ErrConflict))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromError(validation.Errors{{Field: "a"}}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromError(errBoom))
}
