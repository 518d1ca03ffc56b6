// package analysis/detector.go
package analysis

import (
	"fmt"
	"math"
	"strings"

	"conference-service/internal/domain"
)

// Tolerance, in currency units, for float comparisons against expected
// repasse values.
const Tolerance = 0.05

// examCategories lists the categories treated as exams by the
// exame-não-pago rule. The production and repasse sides share the same
// slugs; keep this set in lockstep with the classifier categories.
var examCategories = map[domain.ProcedureCategory]bool{
	domain.CategoryVideoNaso:     true,
	domain.CategoryVideoLaringo:  true,
	domain.CategoryVideoGenerico: true,
	domain.CategoryFees:          true,
	domain.CategoryCerumen:       true,
}

// Service defines the interface for divergence analysis.
type Service interface {
	Detect(matchedPairs []domain.MatchedPair, unmatchedProduction []domain.ProductionEntry, unmatchedRepasse []domain.RepasseEntry) []domain.Divergence
	Summarize(production []domain.ProductionEntry, repasse []domain.RepasseEntry, output domain.MatchingOutput, divergences []domain.Divergence) domain.ConferenceSummary
}

type service struct{}

// NewService creates a new divergence analysis service.
func NewService() Service {
	return &service{}
}

// Detect evaluates the divergence rules over a matching result. Emission
// order is fixed: unmatched production first, then unmatched repasse, then
// the matched pairs in input order. A single pair may emit several
// divergences since every rule is evaluated independently.
func (s *service) Detect(matchedPairs []domain.MatchedPair, unmatchedProduction []domain.ProductionEntry, unmatchedRepasse []domain.RepasseEntry) []domain.Divergence {
	divergences := []domain.Divergence{}

	// 1. Produção sem repasse (caso mais crítico)
	for i := range unmatchedProduction {
		p := &unmatchedProduction[i]
		divergences = append(divergences, domain.Divergence{
			Type:                domain.DivergenceProduzidoSemRepasse,
			Severity:            domain.SeverityAlta,
			ServiceDate:         p.ServiceDate,
			PatientName:         p.PatientName,
			ConvenioName:        p.ConvenioOriginal,
			ProductionRecordID:  p.ID,
			ProcedureProduction: p.ProcedureOriginal,
			Detail:              fmt.Sprintf("Atendimento consta na produção (%s) mas não foi encontrado no repasse.", joinCategories(p.Categories)),
		})
	}

	// 2. Repasse sem produção (pode ser de período anterior)
	for i := range unmatchedRepasse {
		r := &unmatchedRepasse[i]
		divergences = append(divergences, domain.Divergence{
			Type:             domain.DivergenceRepasseSemProducao,
			Severity:         domain.SeverityBaixa,
			ServiceDate:      r.ServiceDate,
			PatientName:      r.PatientName,
			ConvenioName:     r.ConvenioOriginal,
			RepasseRecordID:  r.ID,
			ValorRecebido:    floatPtr(r.ARepassar),
			ProcedureRepasse: repasseProcedure(r),
			Detail:           fmt.Sprintf("Repasse registrado mas não encontrado na produção. Pode ser de período anterior. Valor: R$ %.2f, Regra: %.0f%%", r.ValorBruto, r.RegraPct),
		})
	}

	// 3. Regras por par casado
	for _, pair := range matchedPairs {
		p := pair.Production

		for _, r := range pair.Repasse {
			if r.Glosa > 0 {
				divergences = append(divergences, domain.Divergence{
					Type:                domain.DivergenceGlosaInesperada,
					Severity:            domain.SeverityMedia,
					ServiceDate:         r.ServiceDate,
					PatientName:         r.PatientName,
					ConvenioName:        r.ConvenioOriginal,
					ProductionRecordID:  p.ID,
					RepasseRecordID:     r.ID,
					ValorEsperado:       floatPtr(r.ValorBruto),
					ValorRecebido:       floatPtr(r.ValorBruto - r.Glosa),
					Diferenca:           floatPtr(-r.Glosa),
					ProcedureProduction: p.ProcedureOriginal,
					ProcedureRepasse:    repasseProcedure(r),
					Detail:              fmt.Sprintf("Glosa de R$ %.2f aplicada. Valor bruto: R$ %.2f, Líquido: R$ %.2f", r.Glosa, r.ValorBruto, r.Liquido),
				})
			}

			if r.RegraPct > 0 && r.Liquido > 0 {
				expected := r.Liquido * r.RegraPct / 100
				if math.Abs(r.ARepassar-expected) > Tolerance {
					divergences = append(divergences, domain.Divergence{
						Type:                domain.DivergencePercentualIncorreto,
						Severity:            domain.SeverityAlta,
						ServiceDate:         r.ServiceDate,
						PatientName:         r.PatientName,
						ConvenioName:        r.ConvenioOriginal,
						ProductionRecordID:  p.ID,
						RepasseRecordID:     r.ID,
						ValorEsperado:       floatPtr(expected),
						ValorRecebido:       floatPtr(r.ARepassar),
						Diferenca:           floatPtr(r.ARepassar - expected),
						ProcedureProduction: p.ProcedureOriginal,
						ProcedureRepasse:    repasseProcedure(r),
						Detail:              fmt.Sprintf("Percentual %.0f%% aplicado sobre líquido R$ %.2f deveria dar R$ %.2f, mas recebeu R$ %.2f", r.RegraPct, r.Liquido, expected, r.ARepassar),
					})
				}
			}
		}

		// Produção com exame mas repasse pagando só consulta
		prodHasExam := false
		for _, c := range p.Categories {
			if examCategories[c] {
				prodHasExam = true
				break
			}
		}
		repasseHasExam := false
		for _, r := range pair.Repasse {
			if examCategories[r.CategorySlug] {
				repasseHasExam = true
				break
			}
		}

		if prodHasExam && !repasseHasExam && len(pair.Repasse) > 0 {
			var repasseProcedures []string
			for _, r := range pair.Repasse {
				repasseProcedures = append(repasseProcedures, repasseProcedure(r))
			}
			divergences = append(divergences, domain.Divergence{
				Type:                domain.DivergenceExameNaoPago,
				Severity:            domain.SeverityAlta,
				ServiceDate:         p.ServiceDate,
				PatientName:         p.PatientName,
				ConvenioName:        p.ConvenioOriginal,
				ProductionRecordID:  p.ID,
				RepasseRecordID:     pair.Repasse[0].ID,
				ProcedureProduction: p.ProcedureOriginal,
				ProcedureRepasse:    strings.Join(repasseProcedures, " | "),
				Detail:              fmt.Sprintf("Produção inclui exame (%s) mas repasse só contém consulta.", joinCategories(p.Categories)),
			})
		}
	}

	return divergences
}

// Summarize computes the session-level KPIs over a matching result and its
// divergences.
func (s *service) Summarize(production []domain.ProductionEntry, repasse []domain.RepasseEntry, output domain.MatchingOutput, divergences []domain.Divergence) domain.ConferenceSummary {
	summary := domain.ConferenceSummary{
		TotalProduction:          len(production),
		TotalRepasse:             len(repasse),
		TotalMatched:             len(output.Matches),
		TotalUnmatchedProduction: len(output.UnmatchedProduction),
		TotalUnmatchedRepasse:    len(output.UnmatchedRepasse),
		TotalDivergences:         len(divergences),
	}

	for i := range repasse {
		summary.TotalValorBruto += repasse[i].ValorBruto
		summary.TotalValorRepassado += repasse[i].ARepassar
	}

	for i := range divergences {
		switch divergences[i].Severity {
		case domain.SeverityAlta:
			summary.DivergencesAlta++
		case domain.SeverityMedia:
			summary.DivergencesMedia++
		case domain.SeverityBaixa:
			summary.DivergencesBaixa++
		}
		if divergences[i].Diferenca != nil {
			summary.TotalValorDivergente += math.Abs(*divergences[i].Diferenca)
		}
	}

	if len(production) > 0 {
		matchedProduction := len(production) - len(output.UnmatchedProduction)
		summary.MatchRate = float64(matchedProduction) / float64(len(production))
	}

	return summary
}

func repasseProcedure(r *domain.RepasseEntry) string {
	return strings.TrimSpace(r.TussCode + " " + r.ProcedureDescription)
}

func joinCategories(categories []domain.ProcedureCategory) string {
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func floatPtr(v float64) *float64 {
	return &v
}
