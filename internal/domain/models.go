// package domain/models.go
package domain

// ProcedureCategory classifies a procedure text into a fixed category slug.
type ProcedureCategory string

// Constants for procedure categories.
const (
	CategoryConsulta       ProcedureCategory = "consulta"
	CategoryCirurgia       ProcedureCategory = "cirurgia"
	CategoryVideoNaso      ProcedureCategory = "video_naso"
	CategoryVideoLaringo   ProcedureCategory = "video_laringo"
	CategoryVideoGenerico  ProcedureCategory = "video_generico"
	CategoryFees           ProcedureCategory = "fees"
	CategoryCerumen        ProcedureCategory = "cerumen"
	CategoryCorpoEstranho  ProcedureCategory = "corpo_estranho"
	CategoryOtoneurologia  ProcedureCategory = "otoneurologia"
	CategoryTesteAlergico  ProcedureCategory = "teste_alergico"
	CategoryParesCranianos ProcedureCategory = "pares_cranianos"
	CategorySemRepasse     ProcedureCategory = "sem_repasse"
	CategoryOutro          ProcedureCategory = "outro"
)

// MatchType identifies which matching strategy paired a production entry
// to a repasse entry.
type MatchType string

// Constants for match types, ordered by strategy precedence.
const (
	MatchExact         MatchType = "exact"
	MatchFuzzyName     MatchType = "fuzzy_name"
	MatchFuzzyConvenio MatchType = "fuzzy_convenio"
)

// DivergenceType identifies the discrepancy rule that fired.
type DivergenceType string

// Constants for divergence types.
const (
	DivergenceProduzidoSemRepasse DivergenceType = "PRODUZIDO_SEM_REPASSE"
	DivergenceRepasseSemProducao  DivergenceType = "REPASSE_SEM_PRODUCAO"
	DivergenceGlosaInesperada     DivergenceType = "GLOSA_INESPERADA"
	DivergencePercentualIncorreto DivergenceType = "PERCENTUAL_INCORRETO"
	DivergenceExameNaoPago        DivergenceType = "EXAME_NAO_PAGO"
)

// Severity ranks a divergence for manual review priority.
type Severity string

// Constants for severities.
const (
	SeverityAlta  Severity = "ALTA"
	SeverityMedia Severity = "MEDIA"
	SeverityBaixa Severity = "BAIXA"
)

// ProductionEntry is one service event from the production spreadsheet,
// already normalized for matching. Immutable once built.
type ProductionEntry struct {
	ID                    string              `json:"id"`
	RowNumber             int                 `json:"row_number,omitempty"`
	ServiceDate           string              `json:"service_date"`
	PatientName           string              `json:"patient_name"`
	PatientNameNormalized string              `json:"patient_name_normalized"`
	ConvenioOriginal      string              `json:"convenio_original"`
	ConvenioNormalized    string              `json:"convenio_normalized"`
	ProcedureOriginal     string              `json:"procedure_original"`
	Categories            []ProcedureCategory `json:"categories"`
	GeneratesRepasse      bool                `json:"generates_repasse"`
}

// RepasseEntry is one payment pass-through line from the repasse report.
// Monetary values follow the upstream convention liquido = bruto - imposto.
type RepasseEntry struct {
	ID                    string            `json:"id"`
	ServiceDate           string            `json:"service_date"`
	ServiceTime           string            `json:"service_time,omitempty"`
	PatientName           string            `json:"patient_name"`
	PatientNameNormalized string            `json:"patient_name_normalized"`
	ConvenioOriginal      string            `json:"convenio_original"`
	ConvenioNormalized    string            `json:"convenio_normalized"`
	TussCode              string            `json:"tuss_code"`
	ProcedureDescription  string            `json:"procedure_description"`
	CategorySlug          ProcedureCategory `json:"category_slug"`
	PaymentForm           string            `json:"payment_form,omitempty"`
	ValorBruto            float64           `json:"valor_bruto"`
	Glosa                 float64           `json:"glosa"`
	Imposto               float64           `json:"imposto"`
	Liquido               float64           `json:"liquido"`
	ARepassar             float64           `json:"a_repassar"`
	RegraPct              float64           `json:"regra_pct"`
}

// Match links one production entry to one repasse entry.
type Match struct {
	ProductionID string    `json:"production_id"`
	RepasseID    string    `json:"repasse_id"`
	MatchType    MatchType `json:"match_type"`
	Confidence   float64   `json:"confidence"`
}

// OutcomeKind distinguishes the exact strategy, which may consume several
// repasse lines for a single production entry, from the one-to-one
// fuzzy strategies.
type OutcomeKind string

// Constants for outcome kinds.
const (
	OutcomeOneToMany OutcomeKind = "one_to_many"
	OutcomeOneToOne  OutcomeKind = "one_to_one"
)

// MatchOutcome groups the repasse lines consumed by one production entry.
type MatchOutcome struct {
	Kind         OutcomeKind `json:"kind"`
	ProductionID string      `json:"production_id"`
	RepasseIDs   []string    `json:"repasse_ids"`
	MatchType    MatchType   `json:"match_type"`
	Confidence   float64     `json:"confidence"`
}

// MatchingOutput is the full result of one matching pass.
type MatchingOutput struct {
	Matches             []Match        `json:"matches"`
	Outcomes            []MatchOutcome `json:"outcomes"`
	UnmatchedProduction []string       `json:"unmatched_production"`
	UnmatchedRepasse    []string       `json:"unmatched_repasse"`
}

// MatchedPair pairs a production entry with the repasse lines it consumed,
// resolved back to full records for divergence analysis.
type MatchedPair struct {
	Production *ProductionEntry
	Repasse    []*RepasseEntry
}

// Divergence is one detected discrepancy. Monetary fields are pointers so
// rules that carry no values serialize them as null.
type Divergence struct {
	Type                DivergenceType `json:"type"`
	Severity            Severity       `json:"severity"`
	ServiceDate         string         `json:"service_date,omitempty"`
	PatientName         string         `json:"patient_name,omitempty"`
	ConvenioName        string         `json:"convenio_name,omitempty"`
	ProductionRecordID  string         `json:"production_record_id,omitempty"`
	RepasseRecordID     string         `json:"repasse_record_id,omitempty"`
	ValorEsperado       *float64       `json:"valor_esperado,omitempty"`
	ValorRecebido       *float64       `json:"valor_recebido,omitempty"`
	Diferenca           *float64       `json:"diferenca,omitempty"`
	ProcedureProduction string         `json:"procedure_production,omitempty"`
	ProcedureRepasse    string         `json:"procedure_repasse,omitempty"`
	Detail              string         `json:"detail"`
}

// ParseStats summarizes one parsed upload.
type ParseStats struct {
	TotalRows   int    `json:"total_rows"`
	SkippedRows int    `json:"skipped_rows"`
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`
}

// ConferenceSummary carries the session-level KPIs computed after
// matching and divergence detection.
type ConferenceSummary struct {
	TotalProduction          int     `json:"total_production"`
	TotalRepasse             int     `json:"total_repasse"`
	TotalMatched             int     `json:"total_matched"`
	TotalUnmatchedProduction int     `json:"total_unmatched_production"`
	TotalUnmatchedRepasse    int     `json:"total_unmatched_repasse"`
	TotalDivergences         int     `json:"total_divergences"`
	DivergencesAlta          int     `json:"divergences_alta"`
	DivergencesMedia         int     `json:"divergences_media"`
	DivergencesBaixa         int     `json:"divergences_baixa"`
	TotalValorBruto          float64 `json:"total_valor_bruto"`
	TotalValorRepassado      float64 `json:"total_valor_repassado"`
	TotalValorDivergente     float64 `json:"total_valor_divergente"`
	MatchRate                float64 `json:"match_rate"`
}

// ConferenceReport is the payload returned by the analyze endpoint.
type ConferenceReport struct {
	Summary         ConferenceSummary `json:"summary"`
	ProductionStats ParseStats        `json:"production_stats"`
	RepasseStats    ParseStats        `json:"repasse_stats"`
	Matches         []Match           `json:"matches"`
	Divergences     []Divergence      `json:"divergences"`
	UnmatchedProd   []ProductionEntry `json:"unmatched_production"`
	UnmatchedRep    []RepasseEntry    `json:"unmatched_repasse"`
}

// Convenio is one registered payer plan from the convênios registry file.
type Convenio struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	Category       string `json:"category,omitempty"`
	Active         bool   `json:"active"`
}

// DivergenceTypeLabels maps divergence types to display labels.
var DivergenceTypeLabels = map[DivergenceType]string{
	DivergenceProduzidoSemRepasse: "Produzido sem Repasse",
	DivergenceRepasseSemProducao:  "Repasse sem Produção",
	DivergenceGlosaInesperada:     "Glosa Inesperada",
	DivergencePercentualIncorreto: "Percentual Incorreto",
	DivergenceExameNaoPago:        "Exame Não Pago",
}

// SeverityLabels maps severities to display labels.
var SeverityLabels = map[Severity]string{
	SeverityAlta:  "Alta",
	SeverityMedia: "Média",
	SeverityBaixa: "Baixa",
}

// ProcedureCategoryLabels maps category slugs to display labels.
var ProcedureCategoryLabels = map[ProcedureCategory]string{
	CategoryConsulta:       "Consulta",
	CategoryCirurgia:       "Cirurgia",
	CategoryVideoNaso:      "Vídeo-Endoscopia Nasal",
	CategoryVideoLaringo:   "Vídeo-Faringo-Laringoscopia",
	CategoryVideoGenerico:  "Vídeo (genérico)",
	CategoryFees:           "FEES",
	CategoryCerumen:        "Remoção de Cerúmen",
	CategoryCorpoEstranho:  "Corpos Estranhos",
	CategoryOtoneurologia:  "Otoneurologia",
	CategoryTesteAlergico:  "Teste Alérgico",
	CategoryParesCranianos: "Pares Cranianos",
	CategorySemRepasse:     "Sem Repasse",
	CategoryOutro:          "Outro",
}
