package tradedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/opencustoms/tradeflow/internal/auth"
	"github.com/opencustoms/tradeflow/internal/store"
)

// Store is the document-store surface the service consumes. *store.Client
// implements it; tests substitute fakes.
type Store interface {
	Search(ctx context.Context, index string, body map[string]any) (*store.SearchResult, error)
	Bulk(ctx context.Context, index string, docs []any) ([]store.BulkItem, error)
	Index(ctx context.Context, index string, doc any) (string, error)
	Get(ctx context.Context, index, id string) (json.RawMessage, error)
	Update(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
	DeleteByQuery(ctx context.Context, index string, query map[string]any) (int64, error)
}

const (
	facetCacheExpiration = 15 * time.Minute
	facetCacheCleanup    = 30 * time.Minute
)

// DataService owns the ingestion and query paths over the trade-records index.
type DataService struct {
	store      Store
	index      string
	loader     *Loader
	facetCache *cache.Cache
}

func NewDataService(s Store, index string, chunkSize int) *DataService {
	return &DataService{
		store:      s,
		index:      index,
		loader:     NewLoader(s, index, chunkSize),
		facetCache: cache.New(facetCacheExpiration, facetCacheCleanup),
	}
}

// Search runs a criteria query under the caller's scope and returns one page.
func (s *DataService) Search(ctx context.Context, criteria QueryCriteria, scope auth.AccessScope) (*SearchPage, error) {
	body, err := BuildSearch(criteria, scope)
	if err != nil {
		return nil, err
	}
	res, err := s.store.Search(ctx, s.index, body)
	if err != nil {
		return nil, fmt.Errorf("searching trade records: %w", err)
	}
	return mapSearchPage(res, criteria.Page, criteria.PageSize)
}

// ListCustomsCodes returns the distinct customs codes visible to the scope,
// alphabetically ordered. Results are cached per scope key.
func (s *DataService) ListCustomsCodes(ctx context.Context, scope auth.AccessScope) ([]string, error) {
	cacheKey := "codes|" + scopeCacheKey(scope)
	if cached, found := s.facetCache.Get(cacheKey); found {
		return cached.([]string), nil
	}

	res, err := s.store.Search(ctx, s.index, BuildCodesFacet(scope))
	if err != nil {
		return nil, fmt.Errorf("aggregating customs codes: %w", err)
	}
	codes := bucketKeys(res, "customs_codes")
	s.facetCache.Set(cacheKey, codes, cache.DefaultExpiration)
	return codes, nil
}

// ListCountries returns the distinct import and export countries visible to
// the scope.
func (s *DataService) ListCountries(ctx context.Context, scope auth.AccessScope) (*CountryLists, error) {
	cacheKey := "countries|" + scopeCacheKey(scope)
	if cached, found := s.facetCache.Get(cacheKey); found {
		return cached.(*CountryLists), nil
	}

	res, err := s.store.Search(ctx, s.index, BuildCountriesFacet(scope))
	if err != nil {
		return nil, fmt.Errorf("aggregating countries: %w", err)
	}
	lists := &CountryLists{
		ImportCountries: bucketKeys(res, "import_countries"),
		ExportCountries: bucketKeys(res, "export_countries"),
	}
	s.facetCache.Set(cacheKey, lists, cache.DefaultExpiration)
	return lists, nil
}

// ImportRows cleans raw rows and bulk-loads the result. Data-quality problems
// degrade to nulls or per-document failures; only store connectivity aborts.
func (s *DataService) ImportRows(ctx context.Context, rows []RawRow, columns []string) (*ImportOutcome, error) {
	slog.Info("import started", "rows", len(rows))

	records := CleanRows(rows, columns)
	outcome, err := s.loader.Load(ctx, records)
	if err != nil {
		return nil, err
	}
	outcome.RowsRead = len(rows)
	outcome.RowsCleaned = len(records)

	// Imports change the facet universe; drop all cached lists.
	s.facetCache.Flush()
	return outcome, nil
}

// CreateRecord indexes a single record with creation timestamps.
func (s *DataService) CreateRecord(ctx context.Context, input RecordInput) (string, error) {
	id, err := s.store.Index(ctx, s.index, input.document(time.Now(), true))
	if err != nil {
		return "", fmt.Errorf("creating trade record: %w", err)
	}
	s.facetCache.Flush()
	return id, nil
}

// GetRecord fetches one record by store ID.
func (s *DataService) GetRecord(ctx context.Context, id string) (*CanonicalRecord, error) {
	source, err := s.store.Get(ctx, s.index, id)
	if err != nil {
		return nil, err
	}
	var record CanonicalRecord
	if err := json.Unmarshal(source, &record); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", id, err)
	}
	return &record, nil
}

// UpdateRecord applies a partial update and refreshes the updated_at stamp.
func (s *DataService) UpdateRecord(ctx context.Context, id string, input RecordInput) error {
	if err := s.store.Update(ctx, s.index, id, input.document(time.Now(), false)); err != nil {
		return err
	}
	s.facetCache.Flush()
	return nil
}

// DeleteRecord removes one record by store ID.
func (s *DataService) DeleteRecord(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.index, id); err != nil {
		return err
	}
	s.facetCache.Flush()
	return nil
}

// DeleteByCondition removes every record matching a non-empty condition set
// and returns the deleted count.
func (s *DataService) DeleteByCondition(ctx context.Context, cond DeleteCondition) (int64, error) {
	query, err := BuildDeleteQuery(cond)
	if err != nil {
		return 0, err
	}
	deleted, err := s.store.DeleteByQuery(ctx, s.index, query)
	if err != nil {
		return 0, fmt.Errorf("deleting by condition: %w", err)
	}
	slog.Info("conditional delete completed", "deleted", deleted)
	s.facetCache.Flush()
	return deleted, nil
}

// scopeCacheKey keys cached facets by scope so a restricted user can never be
// served an administrator's list.
func scopeCacheKey(scope auth.AccessScope) string {
	if scope.Admin {
		return "admin"
	}
	return "user|" + scope.Username
}
