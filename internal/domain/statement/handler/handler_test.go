package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/engine"
	"github.com/tmashinini/bankconvert/internal/domain/statement/service"
	"github.com/tmashinini/bankconvert/pkg/storage"
)

const fnbStatement = `Statement Period: 01/07/2024 to 31/07/2024
14 Jul FNB App Transfer from John Doe 400.00Cr 1,654.13Cr
15 Jul POS Purchase Checkers 123.45 1,530.68Cr
`

func newTestHandler(t *testing.T) *StatementHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	spool, err := storage.NewSpool(t.TempDir())
	require.NoError(t, err)
	svc := service.New(logger, engine.New(logger), spool, "ZAR")
	return NewStatementHandler(svc, spool, logger, statement.DefaultOptions(), 8<<20)
}

type upload struct {
	name    string
	content string
}

func multipartRequest(t *testing.T, target string, uploads []upload, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, u := range uploads {
		fw, err := mw.CreateFormFile("files", u.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(u.content))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestStatementHandler_Preview(t *testing.T) {
	t.Run("returns rows and meta as json", func(t *testing.T) {
		h := newTestHandler(t)
		req := multipartRequest(t, "/v1/bank/preview", []upload{{"statement.txt", fnbStatement}}, nil)
		rec := httptest.NewRecorder()

		h.Preview(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var out service.PreviewOutput
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Len(t, out.Rows, 2)
		assert.Equal(t, 2, out.Meta.Rows)
	})

	t.Run("no files is a bad request", func(t *testing.T) {
		h := newTestHandler(t)
		req := multipartRequest(t, "/v1/bank/preview", nil, nil)
		rec := httptest.NewRecorder()

		h.Preview(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown toggle is a bad request", func(t *testing.T) {
		h := newTestHandler(t)
		fields := map[string]string{"toggles": `{"turbo_mode": true}`}
		req := multipartRequest(t, "/v1/bank/preview", []upload{{"statement.txt", fnbStatement}}, fields)
		rec := httptest.NewRecorder()

		h.Preview(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "turbo_mode")
	})

	t.Run("get is not allowed", func(t *testing.T) {
		h := newTestHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/v1/bank/preview", nil)
		rec := httptest.NewRecorder()

		h.Preview(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestStatementHandler_Convert(t *testing.T) {
	t.Run("streams a csv download with meta header", func(t *testing.T) {
		h := newTestHandler(t)
		req := multipartRequest(t, "/v1/bank/convert", []upload{{"statement.txt", fnbStatement}}, nil)
		rec := httptest.NewRecorder()

		h.Convert(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "bank-converted.csv")

		raw, err := base64.StdEncoding.DecodeString(rec.Header().Get("X-Conversion-Meta"))
		require.NoError(t, err)
		var meta service.Meta
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, 2, meta.Rows)

		assert.Contains(t, rec.Body.String(), "FNB App Transfer from John Doe")
	})

	t.Run("honors format and columns fields", func(t *testing.T) {
		h := newTestHandler(t)
		fields := map[string]string{
			"format":  "csv",
			"columns": `["amount","description"]`,
		}
		req := multipartRequest(t, "/v1/bank/convert", []upload{{"statement.txt", fnbStatement}}, fields)
		rec := httptest.NewRecorder()

		h.Convert(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("amount,description\n")))
	})

	t.Run("unsupported format is a bad request", func(t *testing.T) {
		h := newTestHandler(t)
		fields := map[string]string{"format": "pdf"}
		req := multipartRequest(t, "/v1/bank/convert", []upload{{"statement.txt", fnbStatement}}, fields)
		rec := httptest.NewRecorder()

		h.Convert(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported upload type", func(t *testing.T) {
		h := newTestHandler(t)
		req := multipartRequest(t, "/v1/bank/convert", []upload{{"photo.png", "junk"}}, nil)
		rec := httptest.NewRecorder()

		h.Convert(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("too many files", func(t *testing.T) {
		h := newTestHandler(t)
		uploads := make([]upload, 11)
		for i := range uploads {
			uploads[i] = upload{"statement.txt", fnbStatement}
		}
		req := multipartRequest(t, "/v1/bank/convert", uploads, nil)
		rec := httptest.NewRecorder()

		h.Convert(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty batch is unprocessable", func(t *testing.T) {
		h := newTestHandler(t)
		req := multipartRequest(t, "/v1/bank/convert", []upload{{"prose.txt", "no transactions here"}}, nil)
		rec := httptest.NewRecorder()

		h.Convert(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
