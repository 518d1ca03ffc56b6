// package convenios/registry.go
//
// Registro de convênios cadastrados, usado para canonizar grafias
// divergentes de nomes de pagadores antes do cruzamento. A busca é exata
// sobre o nome normalizado e, em último caso, fuzzy via closestmatch.
package convenios

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"conference-service/internal/core/normalizer"
	"conference-service/internal/domain"
)

// MatchKind identifies how a registry lookup resolved.
const (
	MatchExata        = "exata"
	MatchFuzzy        = "fuzzy"
	MatchNaoEncontada = "nao_encontrada"
)

// Registry holds the registered convênios indexed by normalized name.
type Registry struct {
	entries map[string]domain.Convenio
	keys    []string
	cm      *closestmatch.ClosestMatch
}

// Load reads a convênios CSV (code;name;category;active) in the same
// layout family as the accounting plan files: ';' separated, ISO8859-1.
// Inactive entries are kept but never resolved to.
func Load(file io.Reader) (*Registry, error) {
	decoder := charmap.ISO8859_1.NewDecoder()
	reader := csv.NewReader(transform.NewReader(file, decoder))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de convênios: %w", err)
	}

	registry := &Registry{entries: make(map[string]domain.Convenio)}
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		code := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		key := normalizer.NormalizeConvenio(name)
		if key == "" {
			continue
		}

		convenio := domain.Convenio{
			Code:           code,
			Name:           name,
			NormalizedName: key,
			Active:         true,
		}
		if len(record) > 2 {
			convenio.Category = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			active := strings.ToUpper(strings.TrimSpace(record[3]))
			convenio.Active = active != "0" && active != "NAO" && active != "NÃO" && active != "FALSE"
		}

		if _, exists := registry.entries[key]; !exists && convenio.Active {
			registry.entries[key] = convenio
			registry.keys = append(registry.keys, key)
		}
	}

	if len(registry.keys) > 0 {
		registry.cm = closestmatch.New(registry.keys, []int{3, 4})
	}
	return registry, nil
}

// Len returns the number of active registered convênios.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Resolve looks a raw convênio name up in the registry: exact on the
// normalized name first, then closest-match fuzzy.
func (r *Registry) Resolve(name string) (domain.Convenio, string) {
	key := normalizer.NormalizeConvenio(name)
	if key == "" {
		return domain.Convenio{}, MatchNaoEncontada
	}

	if convenio, ok := r.entries[key]; ok {
		return convenio, MatchExata
	}

	// closestmatch monta os n-grams em minúsculas; a busca precisa ser
	// feita com a chave minúscula, o retorno preserva a grafia original
	if r.cm != nil {
		if match := r.cm.Closest(strings.ToLower(key)); match != "" {
			if convenio, ok := r.entries[match]; ok {
				return convenio, MatchFuzzy
			}
		}
	}

	return domain.Convenio{}, MatchNaoEncontada
}

// CanonicalName resolves a raw payer name to the registered normalized
// name, reporting whether the registry knew it.
func (r *Registry) CanonicalName(name string) (string, bool) {
	convenio, kind := r.Resolve(name)
	if kind == MatchNaoEncontada {
		return "", false
	}
	return convenio.NormalizedName, true
}
