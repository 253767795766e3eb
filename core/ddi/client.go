package ddi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds how much of a response body is read and retained for
// error reporting.
const maxBodyBytes = 1 << 20

// Client defines the interface for target-store operations.
type Client interface {
	// TestConnection probes the grid endpoint. A nil error means reachable.
	TestConnection(ctx context.Context) error
	// GetNetworkViews lists all network views.
	GetNetworkViews(ctx context.Context) ([]NetworkView, error)
	// GetNetworks lists networks in a view in a single request.
	GetNetworks(ctx context.Context, view string) ([]Network, error)
	// ListNetworksBatched lists networks in a view, following the store's
	// paging token until the store stops returning one.
	ListNetworksBatched(ctx context.Context, view string) ([]Network, error)
	// GetNetworkBySubnet returns the network at the given subnet, or nil if
	// the view holds no such record.
	GetNetworkBySubnet(ctx context.Context, subnet, view string) (*Network, error)
	// CreateNetwork creates a network and returns its assigned reference.
	CreateNetwork(ctx context.Context, subnet, view, comment string, extattrs map[string]AttrValue) (string, error)
	// UpdateNetwork updates the comment and/or extensible attributes of an
	// existing network identified by its reference.
	UpdateNetwork(ctx context.Context, ref, comment string, extattrs map[string]AttrValue) error
	// CreateNetworksBatch creates candidates in fixed-size concurrent batches
	// with a pause between batches. Individual failures do not fail siblings.
	CreateNetworksBatch(ctx context.Context, candidates []NetworkCandidate, view string) (*BatchResult, error)
	// GetExtensibleAttributes lists all extensible attribute definitions.
	GetExtensibleAttributes(ctx context.Context) ([]AttributeDef, error)
	// CreateExtensibleAttribute creates a new attribute definition.
	CreateExtensibleAttribute(ctx context.Context, name, attrType, comment string) (string, error)
	// SearchNetworksByAttribute finds networks whose extensible attribute
	// matches the given value.
	SearchNetworksByAttribute(ctx context.Context, name, value, view string) ([]Network, error)
	// Close releases pooled connections. The client must not be used after.
	Close()
}

// wapiClient is the HTTP implementation of Client.
type wapiClient struct {
	cfg     Config
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new target-store client from the configuration.
// The connection pool is established lazily on first use; Close must be
// called to release it on every exit path.
func NewClient(cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	connectTimeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	totalTimeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	// Custom transport with strict timeouts and bounded pooling
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxConns,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: totalTimeout,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
	}

	base := fmt.Sprintf("%s/wapi/v%s/", strings.TrimRight(cfg.Host, "/"), cfg.WAPIVersion)

	return &wapiClient{
		cfg:     cfg,
		baseURL: base,
		http: &http.Client{
			Transport: transport,
			Timeout:   totalTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RatePerSecond),
	}, nil
}

// withDefaults fills zero values so a partially populated Config (common in
// tests) behaves like the documented defaults.
func (c Config) withDefaults() Config {
	if c.WAPIVersion == "" {
		c.WAPIVersion = "2.13.1"
	}
	if c.NetworkView == "" {
		c.NetworkView = "default"
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 10
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 100
	}
	if c.MaxConnsPerHost <= 0 {
		c.MaxConnsPerHost = 30
	}
	if c.ConnectTimeoutSeconds <= 0 {
		c.ConnectTimeoutSeconds = 10
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelayMillis <= 0 {
		c.RetryDelayMillis = 1000
	}
	if c.PageSize <= 0 {
		c.PageSize = 1000
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.BatchPauseMillis <= 0 {
		c.BatchPauseMillis = 500
	}
	return c
}

func (c *wapiClient) Close() {
	c.http.CloseIdleConnections()
}

// wapiResponse is a classified successful response.
type wapiResponse struct {
	StatusCode int
	Body       []byte
	// Location carries the reference assigned on 201 responses.
	Location string
}

// call performs one rate-limited request with retries.
//
// Classification: 200 and 201 succeed; 401 fails immediately with
// ErrAuthentication; any other status or transport failure is retried up to
// cfg.MaxAttempts total attempts with a linearly increasing delay, then
// surfaced as a TransientError carrying the last status and body.
func (c *wapiClient) call(ctx context.Context, method, endpoint string, query url.Values, payload any) (*wapiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ddi: encode request body: %w", err)
		}
	}

	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	baseDelay := time.Duration(c.cfg.RetryDelayMillis) * time.Millisecond
	var last *TransientError

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			last = &TransientError{Attempts: attempt, Err: err}
		} else {
			data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()

			switch {
			case readErr != nil:
				last = &TransientError{Attempts: attempt, Err: readErr}
			case resp.StatusCode == http.StatusOK:
				return &wapiResponse{StatusCode: resp.StatusCode, Body: data}, nil
			case resp.StatusCode == http.StatusCreated:
				return &wapiResponse{
					StatusCode: resp.StatusCode,
					Body:       data,
					Location:   resp.Header.Get("Location"),
				}, nil
			case resp.StatusCode == http.StatusUnauthorized:
				return nil, fmt.Errorf("%w: %s %s", ErrAuthentication, method, endpoint)
			default:
				last = &TransientError{
					Attempts:   attempt,
					StatusCode: resp.StatusCode,
					Body:       string(data),
				}
			}
		}

		if attempt < c.cfg.MaxAttempts {
			if err := sleepCtx(ctx, baseDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, last
}

func (c *wapiClient) TestConnection(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodGet, "grid", nil, nil)
	return err
}

func (c *wapiClient) GetNetworkViews(ctx context.Context) ([]NetworkView, error) {
	q := url.Values{}
	q.Set("_return_fields", "name,comment")

	resp, err := c.call(ctx, http.MethodGet, "networkview", q, nil)
	if err != nil {
		return nil, err
	}

	var views []NetworkView
	if err := json.Unmarshal(resp.Body, &views); err != nil {
		return nil, fmt.Errorf("ddi: decode network views: %w", err)
	}
	return views, nil
}

func (c *wapiClient) GetNetworks(ctx context.Context, view string) ([]Network, error) {
	q := c.networkQuery(view)

	resp, err := c.call(ctx, http.MethodGet, "network", q, nil)
	if err != nil {
		return nil, err
	}

	var networks []Network
	if err := json.Unmarshal(resp.Body, &networks); err != nil {
		return nil, fmt.Errorf("ddi: decode networks: %w", err)
	}
	return networks, nil
}

// ListNetworksBatched accumulates pages until the store stops returning a
// next-page token. Precondition: the store eventually stops returning one;
// a store that pages forever violates its own protocol.
func (c *wapiClient) ListNetworksBatched(ctx context.Context, view string) ([]Network, error) {
	var all []Network
	pageID := ""

	for {
		q := c.networkQuery(view)
		if pageID != "" {
			q.Set("_page_id", pageID)
		}

		resp, err := c.call(ctx, http.MethodGet, "network", q, nil)
		if err != nil {
			return nil, err
		}

		body := bytes.TrimSpace(resp.Body)
		if len(body) > 0 && body[0] == '{' {
			// Paged object shape
			var page pageResponse
			if err := json.Unmarshal(body, &page); err != nil {
				return nil, fmt.Errorf("ddi: decode network page: %w", err)
			}
			all = append(all, page.Result...)
			if page.NextPageID == "" {
				return all, nil
			}
			pageID = page.NextPageID
			continue
		}

		// Plain array shape: single page
		var list []Network
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("ddi: decode networks: %w", err)
		}
		return append(all, list...), nil
	}
}

func (c *wapiClient) GetNetworkBySubnet(ctx context.Context, subnet, view string) (*Network, error) {
	q := c.networkQuery(view)
	q.Del("_max_results")
	q.Set("network", subnet)

	resp, err := c.call(ctx, http.MethodGet, "network", q, nil)
	if err != nil {
		return nil, err
	}

	var networks []Network
	if err := json.Unmarshal(resp.Body, &networks); err != nil {
		return nil, fmt.Errorf("ddi: decode networks: %w", err)
	}
	if len(networks) == 0 {
		return nil, nil
	}
	return &networks[0], nil
}

func (c *wapiClient) CreateNetwork(ctx context.Context, subnet, view, comment string, extattrs map[string]AttrValue) (string, error) {
	payload := Network{
		Network:     subnet,
		NetworkView: c.viewOrDefault(view),
		Comment:     comment,
	}
	if len(extattrs) > 0 {
		payload.ExtAttrs = extattrs
	}

	resp, err := c.call(ctx, http.MethodPost, "network", nil, payload)
	if err != nil {
		return "", err
	}
	return refFromResponse(resp), nil
}

func (c *wapiClient) UpdateNetwork(ctx context.Context, ref, comment string, extattrs map[string]AttrValue) error {
	payload := map[string]any{}
	if comment != "" {
		payload["comment"] = comment
	}
	if extattrs != nil {
		payload["extattrs"] = extattrs
	}

	// Refs may arrive URL-prefixed; the store wants the bare tail.
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}

	_, err := c.call(ctx, http.MethodPut, "network/"+ref, nil, payload)
	return err
}

func (c *wapiClient) CreateNetworksBatch(ctx context.Context, candidates []NetworkCandidate, view string) (*BatchResult, error) {
	result := &BatchResult{Errors: []string{}}
	batchSize := c.cfg.BatchSize
	pause := time.Duration(c.cfg.BatchPauseMillis) * time.Millisecond

	for start := 0; start < len(candidates); start += batchSize {
		end := min(start+batchSize, len(candidates))
		batch := candidates[start:end]

		// Fan out the whole batch, fan back in before the next one.
		// Each item's failure is captured in its own slot so one failing
		// create cannot fail its siblings.
		errs := make([]error, len(batch))
		var g errgroup.Group
		for i, cand := range batch {
			g.Go(func() error {
				_, err := c.CreateNetwork(ctx, cand.Subnet, view, cand.Comment, cand.ExtAttrs)
				errs[i] = err
				return nil
			})
		}
		_ = g.Wait()

		for i, err := range errs {
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("failed to create network %s: %v", batch[i].Subnet, err))
			} else {
				result.Created++
			}
		}

		// Pause between batches to protect the store from burst load
		if end < len(candidates) {
			if err := sleepCtx(ctx, pause); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func (c *wapiClient) GetExtensibleAttributes(ctx context.Context) ([]AttributeDef, error) {
	q := url.Values{}
	q.Set("_return_fields", "name,type,comment")

	resp, err := c.call(ctx, http.MethodGet, "extensibleattributedef", q, nil)
	if err != nil {
		return nil, err
	}

	var defs []AttributeDef
	if err := json.Unmarshal(resp.Body, &defs); err != nil {
		return nil, fmt.Errorf("ddi: decode attribute definitions: %w", err)
	}
	return defs, nil
}

func (c *wapiClient) CreateExtensibleAttribute(ctx context.Context, name, attrType, comment string) (string, error) {
	if attrType == "" {
		attrType = AttrTypeString
	}
	payload := AttributeDef{
		Name:    name,
		Type:    attrType,
		Comment: comment,
	}

	resp, err := c.call(ctx, http.MethodPost, "extensibleattributedef", nil, payload)
	if err != nil {
		return "", err
	}
	return refFromResponse(resp), nil
}

func (c *wapiClient) SearchNetworksByAttribute(ctx context.Context, name, value, view string) ([]Network, error) {
	q := c.networkQuery(view)
	q.Set("*"+name, value)

	resp, err := c.call(ctx, http.MethodGet, "network", q, nil)
	if err != nil {
		return nil, err
	}

	var networks []Network
	if err := json.Unmarshal(resp.Body, &networks); err != nil {
		return nil, fmt.Errorf("ddi: decode networks: %w", err)
	}
	return networks, nil
}

// networkQuery builds the standard query for network listings.
func (c *wapiClient) networkQuery(view string) url.Values {
	q := url.Values{}
	q.Set("network_view", c.viewOrDefault(view))
	q.Set("_return_fields", "network,comment,extattrs")
	q.Set("_max_results", strconv.Itoa(c.cfg.PageSize))
	return q
}

func (c *wapiClient) viewOrDefault(view string) string {
	if view == "" {
		return c.cfg.NetworkView
	}
	return view
}

// refFromResponse extracts the assigned reference from a create response.
// The store reports it either in the Location header or as the body itself
// (a bare JSON string, or an object with a _ref field).
func refFromResponse(resp *wapiResponse) string {
	if resp.Location != "" {
		return resp.Location
	}

	var ref string
	if err := json.Unmarshal(resp.Body, &ref); err == nil && ref != "" {
		return ref
	}

	var obj struct {
		Ref string `json:"_ref"`
	}
	if err := json.Unmarshal(resp.Body, &obj); err == nil {
		return obj.Ref
	}
	return ""
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
