// package classifier/classifier.go
package classifier

import (
	"strings"

	"conference-service/internal/core/normalizer"
	"conference-service/internal/domain"
)

var surgeryKeywords = []string{
	"ADENOIDECTOMIA", "AMIGDALECTOMIA", "TURBINECTOMIA",
	"TURBINOPLASTIA", "FRENECTOMIA", "SEPTOPLASTIA",
	"SINUSOTOMIA", "OTOPLASTIA", "TIMPANOPLASTIA",
	"MICROCIRURGIA", "TUBO DE VENTILACAO",
}

var consultationKeywords = []string{
	"CONSULTA", "PRONTO SOCORRO", "PRONTO ATENDIMENTO",
	"CONSULTORIO", "TELEMEDICINA",
}

// ClassifyProcedure maps a free-text procedure description to a category.
// Rules are evaluated in a fixed order and the first match wins; the
// consultation keywords are checked last because they are the most generic.
func ClassifyProcedure(procedureText string) domain.ProcedureCategory {
	text := normalizer.NormalizeText(procedureText)
	if text == "" {
		return domain.CategoryOutro
	}

	// Sem repasse: retornos, perdas e cortesias
	if text == "RETORNO" || text == "PERDA" || strings.Contains(text, "CORTESIA") {
		return domain.CategorySemRepasse
	}

	for _, keyword := range surgeryKeywords {
		if strings.Contains(text, keyword) {
			return domain.CategoryCirurgia
		}
	}

	// FEES (avaliação endoscópica da deglutição)
	if strings.Contains(text, "DEGLUTICAO") || strings.Contains(text, "FEES") || strings.Contains(text, "AVALIACAO ENDOSCOPICA") {
		return domain.CategoryFees
	}

	if strings.Contains(text, "VIDEO") || strings.Contains(text, "ENDOSCOPIA") || strings.Contains(text, "LARINGO") {
		if strings.Contains(text, "NASO") || strings.Contains(text, "SINUSAL") {
			return domain.CategoryVideoNaso
		}
		if strings.Contains(text, "FARINGO") || strings.Contains(text, "LARINGO") {
			return domain.CategoryVideoLaringo
		}
		return domain.CategoryVideoGenerico
	}

	if strings.Contains(text, "CERUMEN") || strings.Contains(text, "CERUME") || strings.Contains(text, "REMOCAO DE CERUME") {
		return domain.CategoryCerumen
	}

	if strings.Contains(text, "CORPOS ESTRANHOS") || strings.Contains(text, "BIOPSIA") {
		return domain.CategoryCorpoEstranho
	}

	if strings.Contains(text, "OTONEUROLOGIA") {
		return domain.CategoryOtoneurologia
	}

	if strings.Contains(text, "PRICK") || strings.Contains(text, "TESTE") || strings.Contains(text, "ALERGICO") {
		return domain.CategoryTesteAlergico
	}

	if strings.Contains(text, "PARES CRANIANOS") {
		return domain.CategoryParesCranianos
	}

	for _, keyword := range consultationKeywords {
		if strings.Contains(text, keyword) {
			return domain.CategoryConsulta
		}
	}

	return domain.CategoryOutro
}

// ExtractProductionProcedures splits the pipe-separated TIPO field from the
// production spreadsheet and classifies each segment. The "-TIPO-"
// placeholder and empty segments are discarded. Never returns an empty
// slice: when nothing remains the single category "outro" is used.
func ExtractProductionProcedures(tipoText string) []domain.ProcedureCategory {
	var categories []domain.ProcedureCategory

	for _, part := range strings.Split(tipoText, "|") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" || trimmed == "-TIPO-" {
			continue
		}
		categories = append(categories, ClassifyProcedure(trimmed))
	}

	if len(categories) == 0 {
		return []domain.ProcedureCategory{domain.CategoryOutro}
	}
	return categories
}

// AllProceduresNonBillable reports whether every category of a production
// record is sem_repasse.
func AllProceduresNonBillable(categories []domain.ProcedureCategory) bool {
	if len(categories) == 0 {
		return false
	}
	for _, c := range categories {
		if c != domain.CategorySemRepasse {
			return false
		}
	}
	return true
}

// IsExcludedConvenio reports whether a convênio name excludes the record
// from matching: empty, cortesia or marked as inactive.
func IsExcludedConvenio(convenio string) bool {
	normalized := normalizer.NormalizeText(convenio)
	return normalized == "" || normalized == "CORTESIA" || strings.Contains(normalized, "(INATIVO)")
}
