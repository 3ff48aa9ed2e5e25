package tradedata

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/opencustoms/tradeflow/internal/auth"
	"github.com/opencustoms/tradeflow/internal/store"
)

// fakeStore is a hand-rolled Store double recording the bodies it receives.
type fakeStore struct {
	searchBodies []map[string]any
	searchResult *store.SearchResult
	searchErr    error

	indexed   []any
	indexedID string

	updated map[string]any
	deleted []string

	deleteQuery   map[string]any
	deletedByCond int64

	getSource json.RawMessage
	getErr    error
}

func (f *fakeStore) Search(ctx context.Context, index string, body map[string]any) (*store.SearchResult, error) {
	f.searchBodies = append(f.searchBodies, body)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.searchResult != nil {
		return f.searchResult, nil
	}
	return &store.SearchResult{}, nil
}

func (f *fakeStore) Bulk(ctx context.Context, index string, docs []any) ([]store.BulkItem, error) {
	items := make([]store.BulkItem, len(docs))
	for i := range items {
		items[i] = store.BulkItem{Status: 201}
	}
	return items, nil
}

func (f *fakeStore) Index(ctx context.Context, index string, doc any) (string, error) {
	f.indexed = append(f.indexed, doc)
	return f.indexedID, nil
}

func (f *fakeStore) Get(ctx context.Context, index, id string) (json.RawMessage, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getSource, nil
}

func (f *fakeStore) Update(ctx context.Context, index, id string, doc any) error {
	if f.updated == nil {
		f.updated = map[string]any{}
	}
	f.updated[id] = doc
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, index, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) DeleteByQuery(ctx context.Context, index string, query map[string]any) (int64, error) {
	f.deleteQuery = query
	return f.deletedByCond, nil
}

func newTestService(f *fakeStore) *DataService {
	return NewDataService(f, "customs_data", DefaultChunkSize)
}

func TestSearchInjectsScopeRestriction(t *testing.T) {
	fake := &fakeStore{searchResult: &store.SearchResult{Total: 0}}
	svc := newTestService(fake)

	scope := auth.AccessScope{Username: "u", AllowedCustomsCodes: []string{"811010"}}
	if _, err := svc.Search(context.Background(), defaultCriteria(), scope); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(fake.searchBodies) != 1 {
		t.Fatalf("search calls = %d, want 1", len(fake.searchBodies))
	}
	boolQuery := fake.searchBodies[0]["query"].(map[string]any)["bool"].(map[string]any)
	if _, ok := boolQuery["filter"]; !ok {
		t.Error("restriction filter missing from dispatched search body")
	}
}

func TestSearchRejectsInvalidCriteria(t *testing.T) {
	fake := &fakeStore{}
	svc := newTestService(fake)

	c := defaultCriteria()
	c.PageSize = 500
	if _, err := svc.Search(context.Background(), c, adminScope()); err == nil {
		t.Fatal("expected validation error")
	}
	if len(fake.searchBodies) != 0 {
		t.Error("store reached despite invalid criteria")
	}
}

func TestListCustomsCodesCaches(t *testing.T) {
	fake := &fakeStore{searchResult: &store.SearchResult{
		Aggregations: map[string][]store.Bucket{
			"customs_codes": {{Key: "811010"}, {Key: "852990"}},
		},
	}}
	svc := newTestService(fake)

	first, err := svc.ListCustomsCodes(context.Background(), adminScope())
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := svc.ListCustomsCodes(context.Background(), adminScope())
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if len(fake.searchBodies) != 1 {
		t.Errorf("store hits = %d, want 1 (second call served from cache)", len(fake.searchBodies))
	}
	if len(first) != 2 || first[0] != "811010" {
		t.Errorf("codes = %v", first)
	}
	if len(second) != len(first) {
		t.Errorf("cached copy diverged: %v vs %v", second, first)
	}
}

func TestFacetCacheIsScopeKeyed(t *testing.T) {
	fake := &fakeStore{searchResult: &store.SearchResult{
		Aggregations: map[string][]store.Bucket{"customs_codes": {{Key: "811010"}}},
	}}
	svc := newTestService(fake)

	if _, err := svc.ListCustomsCodes(context.Background(), adminScope()); err != nil {
		t.Fatalf("admin call failed: %v", err)
	}
	restricted := auth.AccessScope{Username: "u", AllowedCustomsCodes: []string{"811010"}}
	if _, err := svc.ListCustomsCodes(context.Background(), restricted); err != nil {
		t.Fatalf("restricted call failed: %v", err)
	}

	// Different scopes must not share cache entries.
	if len(fake.searchBodies) != 2 {
		t.Errorf("store hits = %d, want 2", len(fake.searchBodies))
	}
}

func TestListCountries(t *testing.T) {
	fake := &fakeStore{searchResult: &store.SearchResult{
		Aggregations: map[string][]store.Bucket{
			"import_countries": {{Key: "Chile"}, {Key: "Peru"}},
			"export_countries": {{Key: "China"}},
		},
	}}
	svc := newTestService(fake)

	lists, err := svc.ListCountries(context.Background(), adminScope())
	if err != nil {
		t.Fatalf("ListCountries failed: %v", err)
	}
	if len(lists.ImportCountries) != 2 || lists.ImportCountries[0] != "Chile" {
		t.Errorf("import countries = %v", lists.ImportCountries)
	}
	if len(lists.ExportCountries) != 1 || lists.ExportCountries[0] != "China" {
		t.Errorf("export countries = %v", lists.ExportCountries)
	}
}

func TestImportRowsFlushesFacetCache(t *testing.T) {
	fake := &fakeStore{searchResult: &store.SearchResult{
		Aggregations: map[string][]store.Bucket{"customs_codes": {{Key: "811010"}}},
	}}
	svc := newTestService(fake)

	if _, err := svc.ListCustomsCodes(context.Background(), adminScope()); err != nil {
		t.Fatalf("priming call failed: %v", err)
	}

	rows := []RawRow{{"customs_code": "8110109900", "date": "2024/01/31"}}
	outcome, err := svc.ImportRows(context.Background(), rows, []string{"customs_code", "date"})
	if err != nil {
		t.Fatalf("ImportRows failed: %v", err)
	}
	if outcome.RowsRead != 1 || outcome.RowsCleaned != 1 || outcome.Succeeded != 1 {
		t.Errorf("outcome = %+v", outcome)
	}

	if _, err := svc.ListCustomsCodes(context.Background(), adminScope()); err != nil {
		t.Fatalf("post-import call failed: %v", err)
	}
	if len(fake.searchBodies) != 2 {
		t.Errorf("store hits = %d, want 2 (cache flushed by import)", len(fake.searchBodies))
	}
}

func TestCreateAndGetRecord(t *testing.T) {
	fake := &fakeStore{
		indexedID: "abc123",
		getSource: json.RawMessage(`{"customs_code":"811010"}`),
	}
	svc := newTestService(fake)

	code := "8110109900"
	id, err := svc.CreateRecord(context.Background(), RecordInput{CustomsCode: &code})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if id != "abc123" {
		t.Errorf("id = %q", id)
	}

	doc := fake.indexed[0].(map[string]any)
	if doc["customs_code"] != "8110109900" {
		t.Errorf("indexed customs_code = %v", doc["customs_code"])
	}
	if _, ok := doc["created_at"]; !ok {
		t.Error("created_at stamp missing")
	}
	if _, ok := doc["updated_at"]; !ok {
		t.Error("updated_at stamp missing")
	}

	record, err := svc.GetRecord(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if record.CustomsCode == nil || *record.CustomsCode != "811010" {
		t.Errorf("record customs_code = %v", record.CustomsCode)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	fake := &fakeStore{getErr: store.ErrNotFound}
	svc := newTestService(fake)

	if _, err := svc.GetRecord(context.Background(), "missing"); err != store.ErrNotFound {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateRecordOmitsCreatedStamp(t *testing.T) {
	fake := &fakeStore{}
	svc := newTestService(fake)

	amount := 99.5
	if err := svc.UpdateRecord(context.Background(), "abc123", RecordInput{AmountUSD: &amount}); err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}

	doc := fake.updated["abc123"].(map[string]any)
	if doc["amount_usd"] != 99.5 {
		t.Errorf("amount_usd = %v", doc["amount_usd"])
	}
	if _, ok := doc["created_at"]; ok {
		t.Error("partial update must not rewrite created_at")
	}
	if _, ok := doc["updated_at"]; !ok {
		t.Error("updated_at stamp missing")
	}
}

func TestDeleteByCondition(t *testing.T) {
	fake := &fakeStore{deletedByCond: 42}
	svc := newTestService(fake)

	deleted, err := svc.DeleteByCondition(context.Background(), DeleteCondition{CustomsCode: "811010"})
	if err != nil {
		t.Fatalf("DeleteByCondition failed: %v", err)
	}
	if deleted != 42 {
		t.Errorf("deleted = %d, want 42", deleted)
	}
	if fake.deleteQuery == nil {
		t.Fatal("delete query not dispatched")
	}

	if _, err := svc.DeleteByCondition(context.Background(), DeleteCondition{}); err == nil {
		t.Fatal("expected validation error for empty condition")
	}
}
