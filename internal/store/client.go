package store

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/opencustoms/tradeflow/internal/config"
)

// Client wraps the Elasticsearch client with the logical operations this
// service needs. One Client is constructed at the composition root and shared
// by all components; it is safe for concurrent use.
type Client struct {
	es *elasticsearch.Client
}

// New builds a Client from configuration and verifies connectivity with a
// ping. A ping failure is returned to the caller, which treats it as fatal
// at startup.
func New(cfg config.ElasticsearchConfig) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.Address()},
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}
	if !cfg.VerifyCerts {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	res, err := es.Ping()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: ping returned %s", ErrUnavailable, res.Status())
	}

	slog.Info("connected to document store", "address", cfg.Address())
	return &Client{es: es}, nil
}

// EnsureIndex creates the index with the given mapping if it does not exist.
// Idempotent; a connectivity error is returned unretried.
func (c *Client) EnsureIndex(ctx context.Context, name string, mapping map[string]any) error {
	res, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		slog.Info("index already exists", "index", name)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: index existence check returned %s", ErrUnavailable, res.Status())
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encoding index mapping: %w", err)
	}

	createRes, err := c.es.Indices.Create(name,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("%w: index creation returned %s", ErrUnavailable, createRes.Status())
	}

	slog.Info("created index", "index", name)
	return nil
}

// Search executes a search body against an index and decodes the page.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (*SearchResult, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: search returned %s", ErrUnavailable, res.Status())
	}

	var decoded struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations map[string]struct {
			Buckets []Bucket `json:"buckets"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	result := &SearchResult{
		Total:        decoded.Hits.Total.Value,
		Hits:         make([]Hit, 0, len(decoded.Hits.Hits)),
		Aggregations: make(map[string][]Bucket, len(decoded.Aggregations)),
	}
	for _, h := range decoded.Hits.Hits {
		result.Hits = append(result.Hits, Hit{ID: h.ID, Source: h.Source})
	}
	for name, agg := range decoded.Aggregations {
		result.Aggregations[name] = agg.Buckets
	}
	return result, nil
}

// Bulk indexes the documents in one batched request and reports the
// per-document outcomes, aligned by position. A connectivity error fails the
// whole call; per-document rejections do not.
func (c *Client) Bulk(ctx context.Context, index string, docs []any) ([]BulkItem, error) {
	var buf bytes.Buffer
	action := []byte(`{"index":{}}` + "\n")
	for _, doc := range docs {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding bulk document: %w", err)
		}
		buf.Write(action)
		buf.Write(encoded)
		buf.WriteByte('\n')
	}

	res, err := c.es.Bulk(bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: bulk returned %s", ErrUnavailable, res.Status())
	}

	var decoded struct {
		Items []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding bulk response: %w", err)
	}

	items := make([]BulkItem, 0, len(decoded.Items))
	for _, entry := range decoded.Items {
		// Each entry holds exactly one op type key ("index" here).
		for _, outcome := range entry {
			item := BulkItem{Status: outcome.Status}
			if outcome.Error != nil {
				item.Failed = true
				item.ErrorType = outcome.Error.Type
				item.ErrorReason = outcome.Error.Reason
			}
			items = append(items, item)
			break
		}
	}
	return items, nil
}

// Index stores a single document and returns its generated ID.
func (c *Client) Index(ctx context.Context, index string, doc any) (string, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}

	res, err := c.es.Index(index, bytes.NewReader(encoded), c.es.Index.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", fmt.Errorf("%w: index returned %s", ErrUnavailable, res.Status())
	}

	var decoded struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding index response: %w", err)
	}
	return decoded.ID, nil
}

// Get fetches a document source by ID. Returns ErrNotFound when absent.
func (c *Client) Get(ctx context.Context, index, id string) (json.RawMessage, error) {
	res, err := c.es.Get(index, id, c.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: get returned %s", ErrUnavailable, res.Status())
	}

	var decoded struct {
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding get response: %w", err)
	}
	if !decoded.Found {
		return nil, ErrNotFound
	}
	return decoded.Source, nil
}

// Update applies a partial document update by ID.
func (c *Client) Update(ctx context.Context, index, id string, doc any) error {
	body, err := json.Marshal(map[string]any{"doc": doc})
	if err != nil {
		return fmt.Errorf("encoding update body: %w", err)
	}

	res, err := c.es.Update(index, id, bytes.NewReader(body), c.es.Update.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.IsError() {
		return fmt.Errorf("%w: update returned %s", ErrUnavailable, res.Status())
	}
	return drain(res)
}

// Delete removes a document by ID.
func (c *Client) Delete(ctx context.Context, index, id string) error {
	res, err := c.es.Delete(index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.IsError() {
		return fmt.Errorf("%w: delete returned %s", ErrUnavailable, res.Status())
	}
	return drain(res)
}

// DeleteByQuery removes all documents matching the query and returns the
// deleted count. Version conflicts are proceeded past, not retried.
func (c *Client) DeleteByQuery(ctx context.Context, index string, query map[string]any) (int64, error) {
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return 0, fmt.Errorf("encoding delete query: %w", err)
	}

	res, err := c.es.DeleteByQuery([]string{index}, bytes.NewReader(body),
		c.es.DeleteByQuery.WithContext(ctx),
		c.es.DeleteByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("%w: delete by query returned %s", ErrUnavailable, res.Status())
	}

	var decoded struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("decoding delete by query response: %w", err)
	}
	return decoded.Deleted, nil
}

func drain(res *esapi.Response) error {
	_, err := io.Copy(io.Discard, res.Body)
	return err
}
