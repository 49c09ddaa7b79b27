package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "digipraman/pkg/domain-errors"
)

type sampleItem struct {
	Label string `json:"label" validate:"required"`
}

type sampleRequest struct {
	LoanID string       `json:"loanId" validate:"required,max=36"`
	Items  []sampleItem `json:"items" validate:"required,min=1,dive"`
}

func (r *sampleRequest) Validate() error {
	r.LoanID = strings.ToLower(r.LoanID)
	if r.Items[0].Label == "forbidden" {
		return dErrors.New(dErrors.CodeValidation, "label not allowed")
	}
	return nil
}

func decodeBody(t *testing.T, body string) (*sampleRequest, bool, map[string]string, int) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	out, ok := DecodeAndPrepare[sampleRequest](rec, req, logger, context.Background(), "req-1")
	var errBody map[string]string
	if !ok {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&errBody))
	}
	return out, ok, errBody, rec.Code
}

func TestDecodeAndPrepare(t *testing.T) {
	const loanID = "7F7C4D8E-2B7A-4C56-9F3E-1A2B3C4D5E6F"

	t.Run("valid body runs Validate", func(t *testing.T) {
		out, ok, _, _ := decodeBody(t, `{"loanId":"`+loanID+`","items":[{"label":"Invoice"}]}`)
		require.True(t, ok)
		assert.Equal(t, strings.ToLower(loanID), out.LoanID)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		_, ok, body, status := decodeBody(t, `{"loanId":`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "bad_request", body["error"])
	})

	t.Run("missing field names the JSON field", func(t *testing.T) {
		_, ok, body, status := decodeBody(t, `{"items":[{"label":"Invoice"}]}`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "loanId is required", body["error_description"])
	})

	t.Run("nested field failure uses indexed path", func(t *testing.T) {
		_, ok, body, _ := decodeBody(t, `{"loanId":"`+loanID+`","items":[{"label":""}]}`)
		require.False(t, ok)
		assert.Equal(t, "items[0].label is required", body["error_description"])
	})

	t.Run("tag failure is reported before Validate", func(t *testing.T) {
		_, ok, body, _ := decodeBody(t, `{"loanId":"`+loanID+`-extra","items":[{"label":"forbidden"}]}`)
		require.False(t, ok)
		assert.Equal(t, "validation_error", body["error"])
		assert.NotEqual(t, "label not allowed", body["error_description"])
	})

	t.Run("Validate failure is reported", func(t *testing.T) {
		_, ok, body, _ := decodeBody(t, `{"loanId":"`+loanID+`","items":[{"label":"forbidden"}]}`)
		require.False(t, ok)
		assert.Equal(t, "label not allowed", body["error_description"])
	})
}
