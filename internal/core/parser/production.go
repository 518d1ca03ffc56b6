// package parser/production.go
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"conference-service/internal/core/classifier"
	"conference-service/internal/core/normalizer"
	"conference-service/internal/domain"
)

// productionColumns holds the resolved column indices of the production
// spreadsheet (iGUT export: NUMERO, DATA, NOME DO PACIENTE, PLANO, TIPO).
type productionColumns struct {
	numero   int
	data     int
	paciente int
	plano    int
	tipo     int
}

// defaultProductionColumns is used when no header row is found; data then
// starts at row 4, as in the original iGUT layout.
var defaultProductionColumns = productionColumns{numero: 0, data: 1, paciente: 2, plano: 3, tipo: 4}

// ParseProduction parses a production spreadsheet (.xlsx or .xls) into
// normalized entries. The header row is detected among the first rows by
// the PACIENTE/NOME column; rows without patient or date are skipped.
func (svc *service) ParseProduction(file io.Reader, filename string) ([]domain.ProductionEntry, domain.ParseStats, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" && ext != "" {
		return nil, domain.ParseStats{}, fmt.Errorf("formato de arquivo de produção não suportado: %s", ext)
	}

	rows, err := svc.loadWorkbookRows(file)
	if err != nil {
		return nil, domain.ParseStats{}, fmt.Errorf("erro ao carregar planilha de produção: %w", err)
	}

	cols, headerRow := detectProductionHeader(rows)
	startRow := 3
	if headerRow >= 0 {
		startRow = headerRow + 1
	}

	var entries []domain.ProductionEntry
	var stats domain.ParseStats

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}

		paciente := cellAt(row, cols.paciente)
		data := cellAt(row, cols.data)
		if paciente == "" || data == "" {
			stats.SkippedRows++
			continue
		}
		stats.TotalRows++

		dateStr := cellDate(data)
		plano := cellAt(row, cols.plano)
		tipo := cellAt(row, cols.tipo)
		categories := classifier.ExtractProductionProcedures(tipo)

		trackPeriod(&stats, dateStr)

		rowNumber := 0
		if numero := cellAt(row, cols.numero); numero != "" {
			if n, err := strconv.Atoi(numero); err == nil {
				rowNumber = n
			}
		}

		excluded := classifier.IsExcludedConvenio(plano)
		nonBillable := classifier.AllProceduresNonBillable(categories)

		entries = append(entries, domain.ProductionEntry{
			ID:                    uuid.NewString(),
			RowNumber:             rowNumber,
			ServiceDate:           dateStr,
			PatientName:           paciente,
			PatientNameNormalized: normalizer.NormalizePatientName(paciente),
			ConvenioOriginal:      plano,
			ConvenioNormalized:    normalizer.NormalizeConvenio(plano),
			ProcedureOriginal:     tipo,
			Categories:            categories,
			GeneratesRepasse:      !excluded && !nonBillable,
		})
	}

	return entries, stats, nil
}

// detectProductionHeader scans the first rows for the header, anchoring on
// the patient column and resolving the remaining ones by name with
// positional fallbacks.
func detectProductionHeader(rows [][]string) (productionColumns, int) {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}

	for i := 0; i < limit; i++ {
		headers := make([]string, len(rows[i]))
		for j, c := range rows[i] {
			headers[j] = strings.ToUpper(strings.TrimSpace(c))
		}

		pacienteIdx := findHeader(headers, func(h string) bool {
			return strings.Contains(h, "PACIENTE") || strings.Contains(h, "NOME")
		})
		if pacienteIdx < 0 {
			continue
		}

		cols := defaultProductionColumns
		cols.paciente = pacienteIdx
		if idx := findHeader(headers, func(h string) bool { return strings.Contains(h, "DATA") }); idx >= 0 {
			cols.data = idx
		}
		if idx := findHeader(headers, func(h string) bool {
			return strings.Contains(h, "PLANO") || strings.Contains(h, "CONVENIO")
		}); idx >= 0 {
			cols.plano = idx
		}
		if idx := findHeader(headers, func(h string) bool { return strings.Contains(h, "TIPO") }); idx >= 0 {
			cols.tipo = idx
		}
		if idx := findHeader(headers, func(h string) bool {
			return h == "NUMERO" || h == "NUM" || h == "#"
		}); idx >= 0 {
			cols.numero = idx
		}
		return cols, i
	}

	return defaultProductionColumns, -1
}

func findHeader(headers []string, match func(string) bool) int {
	for i, h := range headers {
		if match(h) {
			return i
		}
	}
	return -1
}
