// package matching/matcher.go
package matching

import (
	"conference-service/internal/core/normalizer"
	"conference-service/internal/domain"
)

// Confidence assigned to each matching strategy.
const (
	confidenceExact         = 1.0
	confidenceFuzzyName     = 0.8
	confidenceFuzzyConvenio = 0.6
)

// Service defines the interface for the production × repasse matching engine.
type Service interface {
	Match(production []domain.ProductionEntry, repasse []domain.RepasseEntry) domain.MatchingOutput
}

type service struct{}

// NewService creates a new matching service.
func NewService() Service {
	return &service{}
}

// Match pairs production entries to repasse entries. Production entries are
// processed in input order and each one tries the strategies in order,
// stopping at the first success:
//
//  1. chave exata (paciente + data + convênio) — consome todas as linhas de
//     repasse disponíveis com a mesma chave (pagamentos divididos)
//  2. nome fuzzy (mesma data + convênio, nome semelhante)
//  3. convênio fuzzy (mesma data + paciente, grafia de convênio diferente)
//
// A repasse line consumed by any strategy is never reused. The pass is
// intentionally greedy: earliest in input order wins and there is no
// backtracking, so the result is deterministic for a given input order.
// All lookup indices are rebuilt per call; the service holds no state.
func (s *service) Match(production []domain.ProductionEntry, repasse []domain.RepasseEntry) domain.MatchingOutput {
	matches := []domain.Match{}
	outcomes := []domain.MatchOutcome{}
	usedRepasseIDs := make(map[string]bool)
	matchedProductionIDs := make(map[string]bool)

	repasseByKey := make(map[string][]*domain.RepasseEntry)
	repasseByDateConvenio := make(map[string][]*domain.RepasseEntry)
	repasseByDatePatient := make(map[string][]*domain.RepasseEntry)

	for i := range repasse {
		r := &repasse[i]
		key := normalizer.MatchingKey(r.PatientNameNormalized, r.ServiceDate, r.ConvenioNormalized)
		repasseByKey[key] = append(repasseByKey[key], r)
		repasseByDateConvenio[r.ServiceDate+"|"+r.ConvenioNormalized] = append(repasseByDateConvenio[r.ServiceDate+"|"+r.ConvenioNormalized], r)
		repasseByDatePatient[r.ServiceDate+"|"+r.PatientNameNormalized] = append(repasseByDatePatient[r.ServiceDate+"|"+r.PatientNameNormalized], r)
	}

	for i := range production {
		p := &production[i]

		// Estratégia 1: chave exata, um-para-muitos
		exactKey := normalizer.MatchingKey(p.PatientNameNormalized, p.ServiceDate, p.ConvenioNormalized)
		var available []*domain.RepasseEntry
		for _, r := range repasseByKey[exactKey] {
			if !usedRepasseIDs[r.ID] {
				available = append(available, r)
			}
		}
		if len(available) > 0 {
			outcome := domain.MatchOutcome{
				Kind:         domain.OutcomeOneToMany,
				ProductionID: p.ID,
				MatchType:    domain.MatchExact,
				Confidence:   confidenceExact,
			}
			for _, r := range available {
				matches = append(matches, domain.Match{
					ProductionID: p.ID,
					RepasseID:    r.ID,
					MatchType:    domain.MatchExact,
					Confidence:   confidenceExact,
				})
				outcome.RepasseIDs = append(outcome.RepasseIDs, r.ID)
				usedRepasseIDs[r.ID] = true
			}
			outcomes = append(outcomes, outcome)
			matchedProductionIDs[p.ID] = true
			continue
		}

		// Estratégia 2: nome fuzzy na mesma data + convênio
		foundFuzzyName := false
		for _, r := range repasseByDateConvenio[p.ServiceDate+"|"+p.ConvenioNormalized] {
			if usedRepasseIDs[r.ID] {
				continue
			}
			if normalizer.FuzzyMatchPatientName(p.PatientNameNormalized, r.PatientNameNormalized) {
				matches = append(matches, domain.Match{
					ProductionID: p.ID,
					RepasseID:    r.ID,
					MatchType:    domain.MatchFuzzyName,
					Confidence:   confidenceFuzzyName,
				})
				outcomes = append(outcomes, domain.MatchOutcome{
					Kind:         domain.OutcomeOneToOne,
					ProductionID: p.ID,
					RepasseIDs:   []string{r.ID},
					MatchType:    domain.MatchFuzzyName,
					Confidence:   confidenceFuzzyName,
				})
				usedRepasseIDs[r.ID] = true
				matchedProductionIDs[p.ID] = true
				foundFuzzyName = true
				break
			}
		}
		if foundFuzzyName {
			continue
		}

		// Estratégia 3: mesmo paciente e data, convênio com grafia diferente
		for _, r := range repasseByDatePatient[p.ServiceDate+"|"+p.PatientNameNormalized] {
			if usedRepasseIDs[r.ID] {
				continue
			}
			matches = append(matches, domain.Match{
				ProductionID: p.ID,
				RepasseID:    r.ID,
				MatchType:    domain.MatchFuzzyConvenio,
				Confidence:   confidenceFuzzyConvenio,
			})
			outcomes = append(outcomes, domain.MatchOutcome{
				Kind:         domain.OutcomeOneToOne,
				ProductionID: p.ID,
				RepasseIDs:   []string{r.ID},
				MatchType:    domain.MatchFuzzyConvenio,
				Confidence:   confidenceFuzzyConvenio,
			})
			usedRepasseIDs[r.ID] = true
			matchedProductionIDs[p.ID] = true
			break
		}
	}

	unmatchedProduction := []string{}
	for i := range production {
		if !matchedProductionIDs[production[i].ID] {
			unmatchedProduction = append(unmatchedProduction, production[i].ID)
		}
	}

	unmatchedRepasse := []string{}
	for i := range repasse {
		if !usedRepasseIDs[repasse[i].ID] {
			unmatchedRepasse = append(unmatchedRepasse, repasse[i].ID)
		}
	}

	return domain.MatchingOutput{
		Matches:             matches,
		Outcomes:            outcomes,
		UnmatchedProduction: unmatchedProduction,
		UnmatchedRepasse:    unmatchedRepasse,
	}
}

// BuildMatchedPairs resolves the grouped outcomes of a matching pass back
// to full records for divergence analysis.
func BuildMatchedPairs(output domain.MatchingOutput, production []domain.ProductionEntry, repasse []domain.RepasseEntry) []domain.MatchedPair {
	prodByID := make(map[string]*domain.ProductionEntry, len(production))
	for i := range production {
		prodByID[production[i].ID] = &production[i]
	}
	repByID := make(map[string]*domain.RepasseEntry, len(repasse))
	for i := range repasse {
		repByID[repasse[i].ID] = &repasse[i]
	}

	var pairs []domain.MatchedPair
	for _, outcome := range output.Outcomes {
		p, ok := prodByID[outcome.ProductionID]
		if !ok {
			continue
		}
		pair := domain.MatchedPair{Production: p}
		for _, id := range outcome.RepasseIDs {
			if r, ok := repByID[id]; ok {
				pair.Repasse = append(pair.Repasse, r)
			}
		}
		pairs = append(pairs, pair)
	}
	return pairs
}
