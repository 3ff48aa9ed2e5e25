package tradedata

import (
	"encoding/json"
	"testing"

	"github.com/opencustoms/tradeflow/internal/store"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{101, 20, 6},
		{1000, 100, 10},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestMapSearchPage(t *testing.T) {
	res := &store.SearchResult{
		Total: 101,
		Hits: []store.Hit{
			{ID: "a", Source: json.RawMessage(`{"customs_code":"811010","amount_usd":1234.5}`)},
			{ID: "b", Source: json.RawMessage(`{"customs_code":"852990","date":"2024-01-31"}`)},
		},
	}

	page, err := mapSearchPage(res, 2, 20)
	if err != nil {
		t.Fatalf("mapSearchPage failed: %v", err)
	}
	if page.Total != 101 || page.Page != 2 || page.PageSize != 20 {
		t.Errorf("page header = %+v", page)
	}
	if page.TotalPages != 6 {
		t.Errorf("total_pages = %d, want 6", page.TotalPages)
	}
	if len(page.Records) != 2 {
		t.Fatalf("record count = %d, want 2", len(page.Records))
	}
	if page.Records[0].CustomsCode == nil || *page.Records[0].CustomsCode != "811010" {
		t.Errorf("record 0 customs_code = %v", page.Records[0].CustomsCode)
	}
	if page.Records[0].AmountUSD == nil || *page.Records[0].AmountUSD != 1234.5 {
		t.Errorf("record 0 amount_usd = %v", page.Records[0].AmountUSD)
	}
	if page.Records[1].Date == nil || *page.Records[1].Date != "2024-01-31" {
		t.Errorf("record 1 date = %v", page.Records[1].Date)
	}
}

func TestMapSearchPageMalformedSource(t *testing.T) {
	res := &store.SearchResult{
		Total: 1,
		Hits:  []store.Hit{{ID: "bad", Source: json.RawMessage(`{"amount_usd":"not a number"`)}},
	}
	if _, err := mapSearchPage(res, 1, 20); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBucketKeys(t *testing.T) {
	res := &store.SearchResult{
		Aggregations: map[string][]store.Bucket{
			"customs_codes": {{Key: "811010", DocCount: 3}, {Key: "852990", DocCount: 1}},
		},
	}
	keys := bucketKeys(res, "customs_codes")
	if len(keys) != 2 || keys[0] != "811010" || keys[1] != "852990" {
		t.Errorf("keys = %v", keys)
	}
	if missing := bucketKeys(res, "absent"); len(missing) != 0 {
		t.Errorf("absent agg keys = %v, want empty", missing)
	}
}
