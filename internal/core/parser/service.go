// package parser/service.go
package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"conference-service/internal/core/normalizer"
	"conference-service/internal/domain"
)

// Service defines the interface for upload parsing. Parsers return errors
// only for unreadable files; malformed rows are skipped and counted in the
// returned stats.
type Service interface {
	ParseProduction(file io.Reader, filename string) ([]domain.ProductionEntry, domain.ParseStats, error)
	ParseRepasse(file io.Reader) ([]domain.RepasseEntry, domain.ParseStats, error)
}

type service struct{}

// NewService creates a new parsing service.
func NewService() Service {
	return &service{}
}

// ---------------------- utilitários comuns ----------------------

// loadWorkbookRows carrega todas as linhas da planilha alvo: tenta xlsx
// (excelize) e em seguida xls (xlsReader). Prefere a aba cujo nome contém
// "TODOS"; caso contrário usa a primeira.
func (svc *service) loadWorkbookRows(file io.Reader) ([][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	reader := bytes.NewReader(data)

	// tenta xlsx
	f, err := excelize.OpenReader(reader)
	if err == nil {
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("a planilha não contém abas")
		}
		target := sheets[0]
		for _, name := range sheets {
			if strings.Contains(strings.ToUpper(name), "TODOS") {
				target = name
				break
			}
		}
		return f.GetRows(target)
	}

	// tenta xls
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	workbook, err := xls.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("formato de planilha não suportado")
	}
	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("o arquivo .xls não contém planilhas")
	}
	targetIdx := 0
	for i := range sheets {
		if strings.Contains(strings.ToUpper(sheets[i].GetName()), "TODOS") {
			targetIdx = i
			break
		}
	}
	sheet, err := workbook.GetSheet(targetIdx)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
	}
	var allRows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		allRows = append(allRows, cells)
	}
	return allRows, nil
}

// parseBRLNumber: heurística robusta para valores brasileiros/anglo
// ("1.234,56", "1234.56", "R$ 10,00", "(5,00)").
func parseBRLNumber(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0.0
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0.0
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case lastDot > lastComma:
		if strings.Count(s, ".") > 1 {
			parts := strings.Split(s, ".")
			decimalPart := parts[len(parts)-1]
			intPart := strings.Join(parts[:len(parts)-1], "")
			s = intPart + "." + decimalPart
		}
	default:
		s = strings.ReplaceAll(s, ",", ".")
	}

	var filtered []rune
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			filtered = append(filtered, r)
		}
	}
	s = string(filtered)
	if s == "" {
		return 0.0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	if neg {
		return -f
	}
	return f
}

// cellDate normaliza uma célula de data: formatos textuais primeiro e, se
// a célula for um número puro, a contagem serial da planilha.
func cellDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if d := normalizer.NormalizeDate(trimmed); d != "" {
		return d
	}
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return normalizer.NormalizeDate(serial)
	}
	return ""
}

// trackPeriod atualiza o intervalo de datas observado em um upload.
func trackPeriod(stats *domain.ParseStats, date string) {
	if date == "" {
		return
	}
	if stats.PeriodStart == "" || date < stats.PeriodStart {
		stats.PeriodStart = date
	}
	if stats.PeriodEnd == "" || date > stats.PeriodEnd {
		stats.PeriodEnd = date
	}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
