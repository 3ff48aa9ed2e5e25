package tradedata

import (
	"errors"
	"fmt"

	"github.com/opencustoms/tradeflow/internal/auth"
)

// ErrValidation marks caller-supplied criteria that violate invariants.
// Rejected before any store call is made.
var ErrValidation = errors.New("invalid criteria")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	codesFacetSize     = 10000
	countriesFacetSize = 1000
)

// QueryCriteria is the user-facing search filter.
type QueryCriteria struct {
	CustomsCode   string
	ImportCountry string
	ExportCountry string
	Importer      string
	Exporter      string
	StartDate     string
	EndDate       string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// Validate enforces the criteria invariants: positive 1-based page, page size
// in [1,100], a named sort field, sort order asc or desc.
func (c *QueryCriteria) Validate() error {
	if c.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrValidation)
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page_size must be in [1,%d]", ErrValidation, MaxPageSize)
	}
	if c.SortBy == "" {
		return fmt.Errorf("%w: sort_by is required", ErrValidation)
	}
	if c.SortOrder != "asc" && c.SortOrder != "desc" {
		return fmt.Errorf("%w: sort_order must be asc or desc", ErrValidation)
	}
	return nil
}

// RestrictionClause produces the mandatory access-restriction clause for a
// scope, or nil for administrators. A restricted scope with no authorized
// codes still yields a terms clause over the empty set, which matches zero
// records: access fails closed, never open.
func RestrictionClause(scope auth.AccessScope) map[string]any {
	if !scope.Restricted() {
		return nil
	}
	codes := scope.AllowedCustomsCodes
	if codes == nil {
		codes = []string{}
	}
	return map[string]any{
		"terms": map[string]any{FieldCustomsCode: codes},
	}
}

// BuildSearch composes the criteria and the scope restriction into one store
// search body, including sort, pagination and the search projection.
func BuildSearch(c QueryCriteria, scope auth.AccessScope) (map[string]any, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var must []map[string]any
	for field, value := range map[string]string{
		FieldCustomsCode:     c.CustomsCode,
		FieldImporterCountry: c.ImportCountry,
		FieldExporterCountry: c.ExportCountry,
		FieldImporter:        c.Importer,
		FieldExporter:        c.Exporter,
	} {
		if value != "" {
			must = append(must, map[string]any{
				"term": map[string]any{field: value},
			})
		}
	}

	if c.StartDate != "" || c.EndDate != "" {
		dateRange := map[string]any{}
		if c.StartDate != "" {
			dateRange["gte"] = c.StartDate
		}
		if c.EndDate != "" {
			dateRange["lte"] = c.EndDate
		}
		must = append(must, map[string]any{
			"range": map[string]any{FieldDate: dateRange},
		})
	}

	var filter []map[string]any
	if clause := RestrictionClause(scope); clause != nil {
		filter = append(filter, clause)
	}

	return map[string]any{
		"query":   boolOrMatchAll(must, filter),
		"sort":    []map[string]any{{c.SortBy: map[string]any{"order": c.SortOrder}}},
		"from":    (c.Page - 1) * c.PageSize,
		"size":    c.PageSize,
		"_source": searchProjection,
	}, nil
}

// BuildCodesFacet returns the distinct-customs-codes aggregation body.
func BuildCodesFacet(scope auth.AccessScope) map[string]any {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"customs_codes": termsAgg(FieldCustomsCode, codesFacetSize),
		},
	}
	if clause := RestrictionClause(scope); clause != nil {
		body["query"] = clause
	}
	return body
}

// BuildCountriesFacet returns the distinct import/export country aggregation
// body.
func BuildCountriesFacet(scope auth.AccessScope) map[string]any {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"import_countries": termsAgg(FieldImporterCountry, countriesFacetSize),
			"export_countries": termsAgg(FieldExporterCountry, countriesFacetSize),
		},
	}
	if clause := RestrictionClause(scope); clause != nil {
		body["query"] = clause
	}
	return body
}

// DeleteCondition selects records for conditional bulk deletion.
type DeleteCondition struct {
	CustomsCode   string `json:"customs_code"`
	ImportCountry string `json:"import_country"`
	ExportCountry string `json:"export_country"`
	Importer      string `json:"importer"`
	Exporter      string `json:"exporter"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

// BuildDeleteQuery builds the delete-by-condition query. An empty condition
// set is a validation error: deleting everything must be asked for some other
// way than by accident.
func BuildDeleteQuery(cond DeleteCondition) (map[string]any, error) {
	var must []map[string]any
	for field, value := range map[string]string{
		FieldCustomsCode:     cond.CustomsCode,
		FieldImporterCountry: cond.ImportCountry,
		FieldExporterCountry: cond.ExportCountry,
		FieldImporter:        cond.Importer,
		FieldExporter:        cond.Exporter,
	} {
		if value != "" {
			must = append(must, map[string]any{
				"term": map[string]any{field: value},
			})
		}
	}
	if cond.StartDate != "" || cond.EndDate != "" {
		dateRange := map[string]any{}
		if cond.StartDate != "" {
			dateRange["gte"] = cond.StartDate
		}
		if cond.EndDate != "" {
			dateRange["lte"] = cond.EndDate
		}
		must = append(must, map[string]any{
			"range": map[string]any{FieldDate: dateRange},
		})
	}

	if len(must) == 0 {
		return nil, fmt.Errorf("%w: delete condition must not be empty", ErrValidation)
	}
	return map[string]any{
		"bool": map[string]any{"must": must},
	}, nil
}

// boolOrMatchAll assembles the final query. An empty bool query evaluates as
// match-none in some store versions, so the no-clause case is special-cased
// to an explicit match_all.
func boolOrMatchAll(must, filter []map[string]any) map[string]any {
	if len(must) == 0 && len(filter) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return map[string]any{"bool": boolQuery}
}

func termsAgg(field string, size int) map[string]any {
	return map[string]any{
		"terms": map[string]any{
			"field": field,
			"size":  size,
			"order": map[string]any{"_key": "asc"},
		},
	}
}
