package tradedata

import (
	"encoding/json"
	"fmt"

	"github.com/opencustoms/tradeflow/internal/store"
)

// SearchPage is one API-shaped page of search results.
type SearchPage struct {
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int64             `json:"total_pages"`
	Records    []CanonicalRecord `json:"data"`
}

// CountryLists holds the distinct import and export country facets.
type CountryLists struct {
	ImportCountries []string `json:"import_countries"`
	ExportCountries []string `json:"export_countries"`
}

// TotalPages computes ceil(total/pageSize) with integer arithmetic.
func TotalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}

// mapSearchPage converts a store response page into the API shape.
func mapSearchPage(res *store.SearchResult, page, pageSize int) (*SearchPage, error) {
	records := make([]CanonicalRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var record CanonicalRecord
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", hit.ID, err)
		}
		records = append(records, record)
	}
	return &SearchPage{
		Total:      res.Total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(res.Total, pageSize),
		Records:    records,
	}, nil
}

// bucketKeys extracts the ordered distinct values of one aggregation.
func bucketKeys(res *store.SearchResult, name string) []string {
	buckets := res.Aggregations[name]
	keys := make([]string, 0, len(buckets))
	for _, b := range buckets {
		keys = append(keys, b.Key)
	}
	return keys
}
