package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-service/internal/domain"
)

const repasseCSV = `convenio,data_atendimento,hora,paciente,procedimento_cod,procedimento_desc,forma_pgt,valor,glosa_estorno,imposto_abatimento,liquido,a_repassar,regra_pct
| UNIMED,2024-01-10,08:30,JOÃO DA SILVA,10101012,CONSULTA EM CONSULTORIO,CONVENIO,"150,00",0,"16,50","133,50","93,45",70
BRADESCO,10/01/2024,09:00,MARIA DE SOUZA,40201732,VIDEOFARINGOLARINGOSCOPIA,CONVENIO,200.00,15.00,22.00,178.00,124.60,70
UNIMED,2024-01-11,10:00,ESTORNO REF 123,10101012,CONSULTA,CONVENIO,-150.00,0,0,-150.00,-105.00,70
UNIMED,2024-01-12,11:00,,10101012,CONSULTA,CONVENIO,150.00,0,0,150.00,105.00,70
`

func TestParseRepasse(t *testing.T) {
	t.Parallel()

	svc := NewService()
	entries, stats, err := svc.ParseRepasse(strings.NewReader(repasseCSV))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 2, stats.SkippedRows)
	assert.Equal(t, "2024-01-10", stats.PeriodStart)
	assert.Equal(t, "2024-01-10", stats.PeriodEnd)

	first := entries[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "2024-01-10", first.ServiceDate)
	assert.Equal(t, "08:30", first.ServiceTime)
	assert.Equal(t, "JOÃO DA SILVA", first.PatientName)
	assert.Equal(t, "JOAO DA SILVA", first.PatientNameNormalized)
	assert.Equal(t, "| UNIMED", first.ConvenioOriginal)
	assert.Equal(t, "UNIMED", first.ConvenioNormalized)
	assert.Equal(t, "10101012", first.TussCode)
	assert.Equal(t, domain.CategoryConsulta, first.CategorySlug)
	assert.InDelta(t, 150.00, first.ValorBruto, 0.001)
	assert.InDelta(t, 16.50, first.Imposto, 0.001)
	assert.InDelta(t, 133.50, first.Liquido, 0.001)
	assert.InDelta(t, 93.45, first.ARepassar, 0.001)
	assert.InDelta(t, 70, first.RegraPct, 0.001)

	second := entries[1]
	// data em DD/MM/YYYY também é normalizada
	assert.Equal(t, "2024-01-10", second.ServiceDate)
	assert.Equal(t, domain.CategoryVideoLaringo, second.CategorySlug)
	assert.InDelta(t, 15.00, second.Glosa, 0.001)
}

func TestParseRepasseReorderedHeader(t *testing.T) {
	t.Parallel()

	csvText := "paciente,convenio,data_atendimento,valor,a_repassar,regra_pct,procedimento_desc\n" +
		"ANA PAULA,AMIL,2024-02-05,\"1.250,00\",\"875,00\",70,CONSULTA\n"

	svc := NewService()
	entries, stats, err := svc.ParseRepasse(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, stats.TotalRows)
	assert.Equal(t, 0, stats.SkippedRows)

	entry := entries[0]
	assert.Equal(t, "ANA PAULA", entry.PatientName)
	assert.Equal(t, "AMIL", entry.ConvenioNormalized)
	// separador de milhar brasileiro
	assert.InDelta(t, 1250.00, entry.ValorBruto, 0.001)
	assert.InDelta(t, 875.00, entry.ARepassar, 0.001)
}

func TestParseRepasseEmpty(t *testing.T) {
	t.Parallel()

	svc := NewService()
	entries, stats, err := svc.ParseRepasse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, stats.TotalRows)
}

func TestParseBRLNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected float64
	}{
		{"", 0},
		{"150,00", 150.00},
		{"150.00", 150.00},
		{"1.250,75", 1250.75},
		{"1,250.75", 1250.75},
		{"R$ 99,90", 99.90},
		{"-15,00", -15.00},
		{"(15,00)", -15.00},
		{"abc", 0},
		{"70", 70},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, parseBRLNumber(tt.input), 0.001, "input %q", tt.input)
	}
}

func TestCellDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01-10", cellDate("2024-01-10"))
	assert.Equal(t, "2024-01-10", cellDate("10/01/2024"))
	// número puro é tratado como serial de planilha
	assert.Equal(t, "2024-01-01", cellDate("45292"))
	assert.Equal(t, "", cellDate(""))
	assert.Equal(t, "", cellDate("sem data"))
}
