// package parser/repasse.go
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"conference-service/internal/core/classifier"
	"conference-service/internal/core/normalizer"
	"conference-service/internal/domain"
)

// repasseDefaults maps the expected repasse CSV columns to their usual
// positions, used when the header omits a name.
var repasseDefaults = map[string]int{
	"convenio":           0,
	"data_atendimento":   1,
	"hora":               2,
	"paciente":           3,
	"procedimento_cod":   4,
	"procedimento_desc":  5,
	"forma_pgt":          6,
	"valor":              7,
	"glosa_estorno":      8,
	"imposto_abatimento": 9,
	"liquido":            10,
	"a_repassar":         11,
	"regra_pct":          12,
}

// ParseRepasse parses a repasse CSV into normalized entries. Estorno rows
// and rows without a patient are skipped; monetary columns tolerate both
// comma and period decimal separators.
func (svc *service) ParseRepasse(file io.Reader) ([]domain.RepasseEntry, domain.ParseStats, error) {
	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.ParseStats{}, fmt.Errorf("erro ao ler arquivo de repasse: %w", err)
	}
	if len(records) < 2 {
		return nil, domain.ParseStats{}, nil
	}

	colMap := make(map[string]int, len(repasseDefaults))
	for name, idx := range repasseDefaults {
		colMap[name] = idx
	}
	for i, h := range records[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		if name != "" {
			colMap[name] = i
		}
	}

	var entries []domain.RepasseEntry
	var stats domain.ParseStats

	for _, row := range records[1:] {
		if len(row) == 0 {
			continue
		}
		stats.TotalRows++

		paciente := cellAt(row, colMap["paciente"])
		if paciente == "" || strings.Contains(strings.ToUpper(paciente), "ESTORNO") {
			stats.SkippedRows++
			continue
		}

		dateStr := normalizer.NormalizeDate(cellAt(row, colMap["data_atendimento"]))
		convenio := cellAt(row, colMap["convenio"])
		procedimentoDesc := cellAt(row, colMap["procedimento_desc"])

		trackPeriod(&stats, dateStr)

		entries = append(entries, domain.RepasseEntry{
			ID:                    uuid.NewString(),
			ServiceDate:           dateStr,
			ServiceTime:           cellAt(row, colMap["hora"]),
			PatientName:           paciente,
			PatientNameNormalized: normalizer.NormalizePatientName(paciente),
			ConvenioOriginal:      convenio,
			ConvenioNormalized:    normalizer.NormalizeConvenio(convenio),
			TussCode:              cellAt(row, colMap["procedimento_cod"]),
			ProcedureDescription:  procedimentoDesc,
			CategorySlug:          classifier.ClassifyProcedure(procedimentoDesc),
			PaymentForm:           cellAt(row, colMap["forma_pgt"]),
			ValorBruto:            parseBRLNumber(cellAt(row, colMap["valor"])),
			Glosa:                 parseBRLNumber(cellAt(row, colMap["glosa_estorno"])),
			Imposto:               parseBRLNumber(cellAt(row, colMap["imposto_abatimento"])),
			Liquido:               parseBRLNumber(cellAt(row, colMap["liquido"])),
			ARepassar:             parseBRLNumber(cellAt(row, colMap["a_repassar"])),
			RegraPct:              parseBRLNumber(cellAt(row, colMap["regra_pct"])),
		})
	}

	return entries, stats, nil
}
