// package normalizer/normalizer.go
//
// Funções puras de normalização de texto, nomes, convênios e datas usadas
// pelo cruzamento produção × repasse. Todas as funções são totais: entrada
// malformada normaliza para string vazia, nunca para erro.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex     = regexp.MustCompile(`[\s\x{00A0}]+`)
	titlePrefixRegex    = regexp.MustCompile(`^(DR\.|DRA\.|SR\.|SRA\.)\s*`)
	leadingPipeRegex    = regexp.MustCompile(`^\|\s*`)
	hospitalSuffixRegex = regexp.MustCompile(`\s*-\s*HOSPITAL\s+.*$`)
	inativoMarkerRegex  = regexp.MustCompile(`\s*\(INATIVO\)\s*`)
	isoDateRegex        = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	brDateRegex         = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})`)
)

// serialEpoch é o dia zero da contagem serial de planilhas (1899-12-30);
// o dia 1 corresponde a 1899-12-31 nessa convenção.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// NormalizeText remove acentos via decomposição NFD, converte para
// maiúsculas e colapsa espaços (incluindo não separáveis) em um único
// espaço ASCII.
func NormalizeText(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, err := transform.String(t, strings.TrimSpace(str))
	if err != nil {
		result = strings.TrimSpace(str)
	}
	result = strings.ToUpper(result)
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// NormalizePatientName normaliza um nome de paciente e remove o título
// inicial (DR., DRA., SR., SRA.) quando presente.
func NormalizePatientName(name string) string {
	result := NormalizeText(name)
	return titlePrefixRegex.ReplaceAllString(result, "")
}

// NormalizeConvenio normaliza um nome de convênio: remove o pipe inicial
// presente em alguns cadastros do iGUT, o sufixo " - HOSPITAL ..." e o
// marcador "(INATIVO)".
func NormalizeConvenio(name string) string {
	result := NormalizeText(name)
	result = leadingPipeRegex.ReplaceAllString(result, "")
	result = hospitalSuffixRegex.ReplaceAllString(result, "")
	result = inativoMarkerRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// NormalizeDate converte valores de data em formatos variados para
// YYYY-MM-DD. Aceita time.Time, número serial de planilha (dias desde
// 1899-12-30), string ISO (com ou sem hora) e DD/MM/YYYY[ - HH:MM:SS].
// Valores não reconhecidos resultam em string vazia.
func NormalizeDate(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("2006-01-02")
	case float64:
		return serialToDate(v)
	case int:
		return serialToDate(float64(v))
	case int64:
		return serialToDate(float64(v))
	case string:
		str := strings.TrimSpace(v)
		if str == "" {
			return ""
		}
		if m := isoDateRegex.FindString(str); m != "" {
			return m
		}
		if m := brDateRegex.FindStringSubmatch(str); m != nil {
			return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
		}
		return ""
	default:
		return ""
	}
}

func serialToDate(serial float64) string {
	if serial <= 0 {
		return ""
	}
	t := serialEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
	return t.Format("2006-01-02")
}

// MatchingKey monta a chave composta paciente|data|convênio usada no
// cruzamento exato. O pipe não ocorre nos campos já normalizados.
func MatchingKey(patient, date, convenio string) string {
	return patient + "|" + date + "|" + convenio
}

// FuzzyMatchPatientName compara dois nomes já normalizados por
// sobreposição de palavras: exige pelo menos 2 palavras em comum e
// sobreposição >= 60% em relação ao nome com mais palavras. Simétrica.
func FuzzyMatchPatientName(name1, name2 string) bool {
	if name1 == name2 {
		return true
	}

	words1 := make(map[string]bool)
	for _, w := range strings.Fields(name1) {
		words1[w] = true
	}
	words2 := make(map[string]bool)
	for _, w := range strings.Fields(name2) {
		words2[w] = true
	}

	common := 0
	for w := range words1 {
		if words2[w] {
			common++
		}
	}

	if common < 2 {
		return false
	}
	total := len(words1)
	if len(words2) > total {
		total = len(words2)
	}
	return float64(common)/float64(total) >= 0.6
}
