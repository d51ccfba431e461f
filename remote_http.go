package vitalsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RemoteClient talks to the remote document store's REST API.
//
// Document routes:
//
//	GET    /v1/{path}                  fetch one document
//	PATCH  /v1/{path}                  set-with-merge (upsert)
//	POST   /v1/{collection}            add with generated ID
//	GET    /v1/{collection}?field=...  range query
type RemoteClient struct {
	baseURL    string
	apiKey     string
	deviceID   string
	httpClient *http.Client
}

var _ RemoteStore = (*RemoteClient)(nil)

// NewRemoteClient creates a remote store client.
// deviceID is optional; if non-empty it is sent as X-Vitalsync-Device-ID for
// observability.
func NewRemoteClient(baseURL, apiKey, deviceID string) *RemoteClient {
	return &RemoteClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient sets a custom http.Client (for testing or custom timeouts).
func (c *RemoteClient) WithHTTPClient(client *http.Client) *RemoteClient {
	c.httpClient = client
	return c
}

func (c *RemoteClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "vitalsync-client/1.0")
	if strings.TrimSpace(c.deviceID) != "" {
		req.Header.Set("X-Vitalsync-Device-ID", c.deviceID)
	}
}

// Get fetches one document. Returns ErrNotFound when absent.
func (c *RemoteClient) Get(ctx context.Context, path string, out any) error {
	body, status, err := c.do(ctx, http.MethodGet, c.docURL(path), nil)
	if err != nil {
		return newSyncError("get", status, err)
	}
	if status == http.StatusNotFound {
		return &SyncError{Operation: "get", StatusCode: status, Err: ErrNotFound}
	}
	if status != http.StatusOK {
		return statusError("get", status, body)
	}
	return decodeStrict("get", body, out)
}

// SetMerge upserts fields into the document at path.
func (c *RemoteClient) SetMerge(ctx context.Context, path string, fields any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return &SyncError{Operation: "set_merge", Err: err}
	}

	body, status, err := c.do(ctx, http.MethodPatch, c.docURL(path)+"?merge=true", payload)
	if err != nil {
		return newSyncError("set_merge", status, err)
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusNoContent {
		return statusError("set_merge", status, body)
	}
	return nil
}

// Add appends a document to a collection and returns its generated ID.
func (c *RemoteClient) Add(ctx context.Context, collection string, fields any) (string, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", &SyncError{Operation: "add", Err: err}
	}

	body, status, err := c.do(ctx, http.MethodPost, c.docURL(collection), payload)
	if err != nil {
		return "", newSyncError("add", status, err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", statusError("add", status, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &SyncError{Operation: "add", Err: err}
	}
	return result.ID, nil
}

// Query fetches the documents of a collection matching q into out. A
// missing collection yields an empty result.
func (c *RemoteClient) Query(ctx context.Context, collection string, q RangeQuery, out any) error {
	params := url.Values{}
	if q.Field != "" {
		params.Set("field", q.Field)
		params.Set("start", q.Start)
		params.Set("end", q.End)
	}
	if q.OrderBy != "" {
		params.Set("orderBy", q.OrderBy)
		if q.Descending {
			params.Set("direction", "desc")
		} else {
			params.Set("direction", "asc")
		}
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	queryURL := c.docURL(collection)
	if encoded := params.Encode(); encoded != "" {
		queryURL += "?" + encoded
	}

	body, status, err := c.do(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return newSyncError("query", status, err)
	}
	if status == http.StatusNotFound {
		// Collection does not exist yet: nothing has been synced.
		return nil
	}
	if status != http.StatusOK {
		return statusError("query", status, body)
	}

	var env documentEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &SyncError{Operation: "query", Err: err}
	}
	return decodeStrictRaw("query", env.Documents, out)
}

type documentEnvelope struct {
	Documents json.RawMessage `json:"documents"`
}

// do issues the request and returns the response body and status. A
// transport error is returned with status 0.
func (c *RemoteClient) do(ctx context.Context, method, rawURL string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", ErrRemoteUnavailable, err)
	}
	return body, resp.StatusCode, nil
}

func (c *RemoteClient) docURL(path string) string {
	return c.baseURL + "/v1/" + path
}

// decodeStrict decodes a document rejecting unknown fields, keeping the
// wire schema explicit instead of passing loose field maps through.
func decodeStrict(op string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &SyncError{Operation: op, Err: fmt.Errorf("malformed document: %w", err)}
	}
	return nil
}

func decodeStrictRaw(op string, raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("[]")
	}
	return decodeStrict(op, raw, out)
}

func newSyncError(op string, status int, err error) *SyncError {
	return &SyncError{Operation: op, StatusCode: status, Err: err}
}

// statusError maps HTTP failures onto the error taxonomy: auth failures are
// permission errors (not retried), everything else is remote unavailability.
func statusError(op string, status int, body []byte) *SyncError {
	msg := ""
	if len(body) > 0 {
		if len(body) > 200 {
			msg = string(body[:200]) + "..."
		} else {
			msg = string(body)
		}
	}

	sentinel := ErrRemoteUnavailable
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		sentinel = ErrPermissionDenied
	}

	return &SyncError{
		Operation:  op,
		StatusCode: status,
		Err:        fmt.Errorf("%w: HTTP %d: %s", sentinel, status, msg),
	}
}
