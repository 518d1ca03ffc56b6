// internal/api/handlers/conference_handler.go
package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"conference-service/internal/api/responses"
	"conference-service/internal/core/conference"
	"conference-service/internal/core/export"
)

// ConferenceHandler lida com as requisições da API de conferência
// produção × repasse.
type ConferenceHandler struct {
	service  conference.Service
	exporter export.Service
}

// NewConferenceHandler cria um novo handler de conferência.
func NewConferenceHandler(service conference.Service, exporter export.Service) *ConferenceHandler {
	return &ConferenceHandler{
		service:  service,
		exporter: exporter,
	}
}

// openConferenceFiles valida e abre os uploads da conferência. O arquivo de
// convênios é opcional; quando ausente o reader retornado é nil.
func openConferenceFiles(c *gin.Context) (production multipart.File, productionName string, repasse multipart.File, convenios multipart.File, closers []io.Closer, ok bool) {
	productionHeader, err := c.FormFile("productionFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de Produção (.xls, .xlsx) não encontrado ou inválido")
		return nil, "", nil, nil, nil, false
	}
	repasseHeader, err := c.FormFile("repasseFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de Repasse (.csv) não encontrado ou inválido")
		return nil, "", nil, nil, nil, false
	}

	ext := strings.ToLower(filepath.Ext(productionHeader.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo de produção não suportada: %s", ext))
		return nil, "", nil, nil, nil, false
	}

	if repasseExt := strings.ToLower(filepath.Ext(repasseHeader.Filename)); repasseExt != ".csv" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo de repasse não suportada: %s", repasseExt))
		return nil, "", nil, nil, nil, false
	}

	production, err = productionHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de Produção")
		return nil, "", nil, nil, nil, false
	}
	closers = append(closers, production)

	repasse, err = repasseHeader.Open()
	if err != nil {
		closeAll(closers)
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de Repasse")
		return nil, "", nil, nil, nil, false
	}
	closers = append(closers, repasse)

	if conveniosHeader, err := c.FormFile("conveniosFile"); err == nil {
		convenios, err = conveniosHeader.Open()
		if err != nil {
			closeAll(closers)
			responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de Convênios")
			return nil, "", nil, nil, nil, false
		}
		closers = append(closers, convenios)
	}

	return production, productionHeader.Filename, repasse, convenios, closers, true
}

func closeAll(closers []io.Closer) {
	for _, closer := range closers {
		closer.Close()
	}
}

// HandleAnalyze executa a conferência completa e retorna o relatório em JSON.
func (h *ConferenceHandler) HandleAnalyze(c *gin.Context) {
	production, productionName, repasse, convenios, closers, ok := openConferenceFiles(c)
	if !ok {
		return
	}
	defer closeAll(closers)

	var conveniosReader io.Reader
	if convenios != nil {
		conveniosReader = convenios
	}

	report, err := h.service.Analyze(production, productionName, repasse, conveniosReader)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro na conferência produção × repasse", err.Error())
		return
	}

	responses.Success(c, report, "Conferência concluída com sucesso")
}

// HandleExport executa a conferência e retorna as divergências em CSV.
func (h *ConferenceHandler) HandleExport(c *gin.Context) {
	production, productionName, repasse, convenios, closers, ok := openConferenceFiles(c)
	if !ok {
		return
	}
	defer closeAll(closers)

	var conveniosReader io.Reader
	if convenios != nil {
		conveniosReader = convenios
	}

	report, err := h.service.Analyze(production, productionName, repasse, conveniosReader)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro na conferência produção × repasse", err.Error())
		return
	}

	outputCSV, err := h.exporter.DivergencesCSV(report.Divergences)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar CSV de divergências", err.Error())
		return
	}

	fileName := fmt.Sprintf("Divergencias_%s.csv", time.Now().Format("20060102_150405"))
	responses.Attachment(c, fileName, "text/csv; charset=windows-1252", outputCSV)
}
