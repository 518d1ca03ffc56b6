package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-service/internal/api/responses"
	"conference-service/internal/core/analysis"
	"conference-service/internal/core/conference"
	"conference-service/internal/core/export"
	"conference-service/internal/core/matching"
	"conference-service/internal/core/parser"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	responses.InitLogger()

	conferenceService := conference.NewService(parser.NewService(), matching.NewService(), analysis.NewService())
	handler := NewConferenceHandler(conferenceService, export.NewService())

	router := gin.New()
	router.POST("/api/v1/conference/analyze", handler.HandleAnalyze)
	return router
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("conteudo"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestAnalyzeRejectsMissingProduction(t *testing.T) {
	router := newTestRouter()

	body, contentType := multipartUpload(t, map[string]string{
		"repasseFile": "repasse.csv",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conference/analyze", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Produção")
}

func TestAnalyzeRejectsProductionExtension(t *testing.T) {
	router := newTestRouter()

	body, contentType := multipartUpload(t, map[string]string{
		"productionFile": "producao.pdf",
		"repasseFile":    "repasse.csv",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conference/analyze", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "produção não suportada")
}

func TestAnalyzeRejectsRepasseExtension(t *testing.T) {
	router := newTestRouter()

	body, contentType := multipartUpload(t, map[string]string{
		"productionFile": "producao.xlsx",
		"repasseFile":    "repasse.txt",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conference/analyze", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "repasse não suportada")
}
