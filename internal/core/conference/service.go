// package conference/service.go
package conference

import (
	"fmt"
	"io"

	"conference-service/internal/core/analysis"
	"conference-service/internal/core/convenios"
	"conference-service/internal/core/matching"
	"conference-service/internal/core/parser"
	"conference-service/internal/domain"
)

// Service defines the interface for the conference pipeline: parse the two
// uploads, cross-match them and detect divergences.
type Service interface {
	Analyze(productionFile io.Reader, productionFilename string, repasseFile io.Reader, conveniosFile io.Reader) (*domain.ConferenceReport, error)
}

type service struct {
	parser   parser.Service
	matcher  matching.Service
	analyzer analysis.Service
}

// NewService creates a new conference service.
func NewService(parserSvc parser.Service, matcherSvc matching.Service, analyzerSvc analysis.Service) Service {
	return &service{
		parser:   parserSvc,
		matcher:  matcherSvc,
		analyzer: analyzerSvc,
	}
}

// Analyze runs the full reconciliation pipeline. conveniosFile is optional;
// when present the registered names canonicalize payer spellings on both
// sides before matching. Every invocation is independent: nothing is
// retained between calls.
func (s *service) Analyze(productionFile io.Reader, productionFilename string, repasseFile io.Reader, conveniosFile io.Reader) (*domain.ConferenceReport, error) {
	productionEntries, productionStats, err := s.parser.ParseProduction(productionFile, productionFilename)
	if err != nil {
		return nil, fmt.Errorf("falha ao processar arquivo de produção: %w", err)
	}

	repasseEntries, repasseStats, err := s.parser.ParseRepasse(repasseFile)
	if err != nil {
		return nil, fmt.Errorf("falha ao processar arquivo de repasse: %w", err)
	}

	if conveniosFile != nil {
		registry, err := convenios.Load(conveniosFile)
		if err != nil {
			return nil, fmt.Errorf("falha ao carregar registro de convênios: %w", err)
		}
		canonicalizeConvenios(registry, productionEntries, repasseEntries)
	}

	// Apenas registros que geram repasse entram no cruzamento
	billable := make([]domain.ProductionEntry, 0, len(productionEntries))
	for i := range productionEntries {
		if productionEntries[i].GeneratesRepasse {
			billable = append(billable, productionEntries[i])
		}
	}

	output := s.matcher.Match(billable, repasseEntries)
	pairs := matching.BuildMatchedPairs(output, billable, repasseEntries)

	unmatchedProduction := resolveProduction(output.UnmatchedProduction, billable)
	unmatchedRepasse := resolveRepasse(output.UnmatchedRepasse, repasseEntries)

	divergences := s.analyzer.Detect(pairs, unmatchedProduction, unmatchedRepasse)
	summary := s.analyzer.Summarize(billable, repasseEntries, output, divergences)

	return &domain.ConferenceReport{
		Summary:         summary,
		ProductionStats: productionStats,
		RepasseStats:    repasseStats,
		Matches:         output.Matches,
		Divergences:     divergences,
		UnmatchedProd:   unmatchedProduction,
		UnmatchedRep:    unmatchedRepasse,
	}, nil
}

// canonicalizeConvenios rewrites normalized payer names on both datasets to
// the registered spelling, so registry-known aliases match exactly.
func canonicalizeConvenios(registry *convenios.Registry, production []domain.ProductionEntry, repasse []domain.RepasseEntry) {
	if registry.Len() == 0 {
		return
	}
	for i := range production {
		if name, ok := registry.CanonicalName(production[i].ConvenioOriginal); ok {
			production[i].ConvenioNormalized = name
		}
	}
	for i := range repasse {
		if name, ok := registry.CanonicalName(repasse[i].ConvenioOriginal); ok {
			repasse[i].ConvenioNormalized = name
		}
	}
}

func resolveProduction(ids []string, entries []domain.ProductionEntry) []domain.ProductionEntry {
	byID := make(map[string]*domain.ProductionEntry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}
	resolved := make([]domain.ProductionEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			resolved = append(resolved, *e)
		}
	}
	return resolved
}

func resolveRepasse(ids []string, entries []domain.RepasseEntry) []domain.RepasseEntry {
	byID := make(map[string]*domain.RepasseEntry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}
	resolved := make([]domain.RepasseEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			resolved = append(resolved, *e)
		}
	}
	return resolved
}
