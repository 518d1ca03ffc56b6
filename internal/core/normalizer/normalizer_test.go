package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "only spaces", input: "   ", expected: ""},
		{name: "accents removed", input: "João da Conceição", expected: "JOAO DA CONCEICAO"},
		{name: "whitespace collapsed", input: "  MARIA   DE  SOUZA ", expected: "MARIA DE SOUZA"},
		{name: "non-breaking spaces", input: "ANA  PAULA", expected: "ANA PAULA"},
		{name: "tabs and newlines", input: "PEDRO\t\nALVES", expected: "PEDRO ALVES"},
		{name: "already normalized", input: "BRADESCO SAUDE", expected: "BRADESCO SAUDE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "João  da Silva", "DRA. MÔNICA", "  Ção   ção  ", "UNIMED - HOSPITAL SÃO LUCAS"}
	for _, input := range inputs {
		once := NormalizeText(input)
		assert.Equal(t, once, NormalizeText(once), "input %q", input)
	}
}

func TestNormalizePatientName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"Dr. Carlos Pereira", "CARLOS PEREIRA"},
		{"DRA. Ana Beatriz", "ANA BEATRIZ"},
		{"sr. josé santos", "JOSE SANTOS"},
		{"SRA. MARIA LIMA", "MARIA LIMA"},
		{"JOÃO DA SILVA", "JOAO DA SILVA"},
		// título só é removido no início
		{"PEDRO DR. ALMEIDA", "PEDRO DR. ALMEIDA"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizePatientName(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeConvenio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"| UNIMED", "UNIMED"},
		{"BRADESCO - HOSPITAL SÃO LUCAS", "BRADESCO"},
		{"AMIL (INATIVO)", "AMIL"},
		{"| SULAMÉRICA - HOSPITAL CENTRAL", "SULAMERICA"},
		{"CASSI", "CASSI"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeConvenio(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "time value", input: time.Date(2024, 1, 10, 13, 45, 0, 0, time.UTC), expected: "2024-01-10"},
		{name: "zero time", input: time.Time{}, expected: ""},
		{name: "iso date", input: "2024-01-10", expected: "2024-01-10"},
		{name: "iso datetime", input: "2024-01-10T15:04:05", expected: "2024-01-10"},
		{name: "br date", input: "10/01/2024", expected: "2024-01-10"},
		{name: "br datetime", input: "10/01/2024 - 15:30:00", expected: "2024-01-10"},
		// dia 1 da contagem serial = 1899-12-31
		{name: "serial day one", input: 1, expected: "1899-12-31"},
		// 25569 = 1970-01-01 na convenção de planilhas
		{name: "serial epoch unix", input: 25569.0, expected: "1970-01-01"},
		{name: "serial recent", input: 45292.0, expected: "2024-01-01"},
		{name: "serial zero", input: 0.0, expected: ""},
		{name: "garbage", input: "amanhã", expected: ""},
		{name: "empty string", input: "", expected: ""},
		{name: "unsupported type", input: []string{"2024-01-10"}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDate(tt.input))
		})
	}
}

func TestMatchingKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "JOAO DA SILVA|2024-01-10|BRADESCO", MatchingKey("JOAO DA SILVA", "2024-01-10", "BRADESCO"))
	assert.Equal(t, "||", MatchingKey("", "", ""))
}

func TestFuzzyMatchPatientName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{name: "identical", a: "JOAO DA SILVA", b: "JOAO DA SILVA", expected: true},
		{name: "missing middle word", a: "MARIA DE SOUZA OLIVEIRA", b: "MARIA SOUZA OLIVEIRA", expected: true},
		{name: "single common word", a: "MARIA SILVA", b: "MARIA SANTOS", expected: false},
		{name: "low overlap", a: "ANA SILVA", b: "ANA SILVA SANTOS SOUZA", expected: false},
		{name: "disjoint", a: "PEDRO ALVES", b: "CARLA DIAS", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FuzzyMatchPatientName(tt.a, tt.b))
			// simétrica
			assert.Equal(t, tt.expected, FuzzyMatchPatientName(tt.b, tt.a))
		})
	}
}
