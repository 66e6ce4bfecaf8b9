// internal/app/system/searchindex/searchindex.go
package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// ErrUnavailable means the index could not be reached or answered 5xx.
var ErrUnavailable = errors.New("search index unavailable")

// Config holds connection settings for the search index.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
	// MaxRetries is passed to the client; zero disables retries.
	MaxRetries int
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client wraps an Elasticsearch client bound to one index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *zap.Logger
}

// New builds a Client. No request is made until the first call.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Index == "" {
		return nil, errors.New("searchindex: index name is required")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries == 0,
	})
	if err != nil {
		return nil, fmt.Errorf("searchindex: new client: %w", err)
	}
	return &Client{es: es, index: cfg.Index, log: logger}, nil
}

// Index returns the index name.
func (c *Client) Index() string { return c.index }

// check classifies a response: transport errors and 5xx are ErrUnavailable.
func check(op string, res *esapi.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if !res.IsError() {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	if res.StatusCode >= 500 {
		return fmt.Errorf("%s: %w: status %d: %s", op, ErrUnavailable, res.StatusCode, msg)
	}
	return &StatusError{Op: op, Status: res.StatusCode, Body: string(msg)}
}

// StatusError is a non-5xx error response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

func encode(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return &buf, nil
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}

// EnsureIndex creates the index if it does not exist.
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	defer closeBody(res)
	if err != nil {
		return fmt.Errorf("index exists: %w: %v", ErrUnavailable, err)
	}
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode != http.StatusNotFound:
		return check("index exists", res, nil)
	}

	cres, err := c.es.Indices.Create(c.index, c.es.Indices.Create.WithContext(ctx))
	defer closeBody(cres)
	if err := check("create index", cres, err); err != nil {
		var se *StatusError
		// Another instance created it between the two calls.
		if errors.As(err, &se) && se.Status == http.StatusBadRequest && bytes.Contains([]byte(se.Body), []byte("resource_already_exists_exception")) {
			return nil
		}
		return err
	}
	c.log.Info("search index created", zap.String("index", c.index))
	return nil
}

// PutMapping applies the property mapping to the index.
func (c *Client) PutMapping(ctx context.Context) error {
	body, err := encode(propertyMapping)
	if err != nil {
		return err
	}
	res, err := c.es.Indices.PutMapping([]string{c.index}, body, c.es.Indices.PutMapping.WithContext(ctx))
	defer closeBody(res)
	return check("put mapping", res, err)
}

// Upsert indexes e under e.ID, replacing any previous entry.
func (c *Client) Upsert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New("searchindex: entry has no id")
	}
	if e.Amenities == nil {
		e.Amenities = []string{}
	}
	body, err := encode(e)
	if err != nil {
		return err
	}
	res, err := c.es.Index(c.index, body,
		c.es.Index.WithDocumentID(e.ID),
		c.es.Index.WithContext(ctx),
	)
	defer closeBody(res)
	return check("index document", res, err)
}

// Delete removes the entry for id. A missing entry is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	res, err := c.es.Delete(c.index, id, c.es.Delete.WithContext(ctx))
	defer closeBody(res)
	if err == nil && res.StatusCode == http.StatusNotFound {
		return nil
	}
	return check("delete document", res, err)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs q and returns matching IDs in index order.
func (c *Client) Search(ctx context.Context, q Query, size int) ([]string, error) {
	body, err := encode(BuildQuery(q, size))
	if err != nil {
		return nil, err
	}
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(body),
	)
	defer closeBody(res)
	if err := check("search", res, err); err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	ids := make([]string, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Ping reports whether the cluster answers.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	defer closeBody(res)
	return check("ping", res, err)
}
