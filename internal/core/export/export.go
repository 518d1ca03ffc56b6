// package export/export.go
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"conference-service/internal/domain"
)

// Service defines the interface for report exports.
type Service interface {
	DivergencesCSV(divergences []domain.Divergence) ([]byte, error)
}

type service struct{}

// NewService creates a new export service.
func NewService() Service {
	return &service{}
}

var severityRank = map[domain.Severity]int{
	domain.SeverityAlta:  0,
	domain.SeverityMedia: 1,
	domain.SeverityBaixa: 2,
}

// DivergencesCSV renders the divergence list as a ';'-separated CSV in
// Windows-1252, ordered by severity then type, for review in spreadsheet
// tools.
func (svc *service) DivergencesCSV(divergences []domain.Divergence) ([]byte, error) {
	ordered := make([]domain.Divergence, len(divergences))
	copy(ordered, divergences)
	sort.SliceStable(ordered, func(i, j int) bool {
		if severityRank[ordered[i].Severity] != severityRank[ordered[j].Severity] {
			return severityRank[ordered[i].Severity] < severityRank[ordered[j].Severity]
		}
		return ordered[i].Type < ordered[j].Type
	})

	var buffer bytes.Buffer
	encoder := charmap.Windows1252.NewEncoder() // manter cp1252 para abrir direto no Excel
	writer := csv.NewWriter(transform.NewWriter(&buffer, encoder))
	writer.Comma = ';'

	header := []string{
		"Severidade", "Tipo", "Data", "Paciente", "Convênio",
		"Procedimento (Produção)", "Procedimento (Repasse)",
		"Valor Esperado", "Valor Recebido", "Diferença", "Detalhe",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, d := range ordered {
		record := []string{
			sanitizeForCSV(domain.SeverityLabels[d.Severity]),
			sanitizeForCSV(domain.DivergenceTypeLabels[d.Type]),
			sanitizeForCSV(d.ServiceDate),
			sanitizeForCSV(d.PatientName),
			sanitizeForCSV(d.ConvenioName),
			sanitizeForCSV(d.ProcedureProduction),
			sanitizeForCSV(d.ProcedureRepasse),
			formatOptionalValue(d.ValorEsperado),
			formatOptionalValue(d.ValorRecebido),
			formatOptionalValue(d.Diferenca),
			sanitizeForCSV(d.Detail),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buffer.Bytes(), writer.Error()
}

func formatOptionalValue(val *float64) string {
	if val == nil {
		return ""
	}
	return strings.Replace(fmt.Sprintf("%.2f", *val), ".", ",", 1)
}

// sanitizeForCSV remove caracteres de controle e normaliza espaços nas
// bordas antes da escrita.
func sanitizeForCSV(s string) string {
	if s == "" {
		return ""
	}

	start := 0
	end := len(s)

	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	if start >= end {
		return ""
	}

	var b strings.Builder
	b.Grow(end - start)

	for i := start; i < end; {
		r, size := utf8.DecodeRuneInString(s[i:end])
		i += size

		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < 32 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
