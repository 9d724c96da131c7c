package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/observability"
)

// Default configuration values. Transport retries are off by default:
// a failed call surfaces immediately so the pagination layer can fall
// back instead of masking the failure.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 0
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0

	defaultRPCEndpoint      = "https://mainnet.helius-rpc.com/"
	defaultEnhancedEndpoint = "https://api.helius.xyz/v0"
)

// HTTPClient implements Client using HTTP JSON-RPC 2.0 for RPC methods
// and plain HTTPS for Enhanced API endpoints.
type HTTPClient struct {
	apiKey      string
	rpcEndpoint string
	enhancedURL string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum transport-level retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithRPCEndpoint overrides the RPC endpoint (used in tests).
func WithRPCEndpoint(endpoint string) ClientOption {
	return func(c *HTTPClient) {
		c.rpcEndpoint = endpoint
	}
}

// WithEnhancedEndpoint overrides the Enhanced API base URL (used in tests).
func WithEnhancedEndpoint(endpoint string) ClientOption {
	return func(c *HTTPClient) {
		c.enhancedURL = endpoint
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Helius API client.
func NewHTTPClient(apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		apiKey:      apiKey,
		rpcEndpoint: defaultRPCEndpoint,
		enhancedURL: defaultEnhancedEndpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// rpcURL returns the RPC endpoint with the api key attached.
func (c *HTTPClient) rpcURL() string {
	if c.apiKey == "" {
		return c.rpcEndpoint
	}
	sep := "?"
	if u, err := url.Parse(c.rpcEndpoint); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return c.rpcEndpoint + sep + "api-key=" + url.QueryEscape(c.apiKey)
}

// call performs a JSON-RPC call with optional transport-level retries.
func (c *HTTPClient) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	start := time.Now()
	defer func() {
		observability.RecordRPCLatency(method, time.Since(start).Seconds())
	}()

	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL(), bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no attempts made")
	}
	return fmt.Errorf("call %s failed: %w", method, lastErr)
}

// enhancedGet performs a GET against the Enhanced API. The metric label
// is the endpoint kind, never the raw path: paths embed addresses.
func (c *HTTPClient) enhancedGet(ctx context.Context, metric, path string, query url.Values, result interface{}) error {
	start := time.Now()
	defer func() {
		observability.RecordRPCLatency(metric, time.Since(start).Seconds())
	}()

	if query == nil {
		query = url.Values{}
	}
	query.Set("api-key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.enhancedURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// tokenMetadataEntry is one item of the Enhanced token-metadata response.
type tokenMetadataEntry struct {
	OnChainMetadata *struct {
		Metadata *struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"metadata"`
	} `json:"onChainMetadata"`
	LegacyMetadata *struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"legacyMetadata"`
}

// dasAssetResult is the getAsset response shape.
type dasAssetResult struct {
	Content *struct {
		JSONURI  string `json:"json_uri"`
		Metadata *struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"metadata"`
	} `json:"content"`
}

// GetTokenMetadata resolves token metadata. The primary token-metadata
// endpoint is tried first; on failure or empty result the broader DAS
// getAsset lookup is used and normalized into the same record. Both
// failing is non-fatal and costs nothing.
func (c *HTTPClient) GetTokenMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, int, error) {
	query := url.Values{}
	query.Set("mintAccounts", mint)

	var entries []tokenMetadataEntry
	if err := c.enhancedGet(ctx, "tokenMetadata", "/token-metadata", query, &entries); err == nil && len(entries) > 0 {
		if meta := metadataFromEntry(mint, &entries[0]); meta != nil {
			return meta, CostMetadataLookup, nil
		}
	}

	// Freshly minted tokens often have no entry on the primary endpoint;
	// the DAS lookup covers those.
	params := map[string]interface{}{
		"id": mint,
		"displayOptions": map[string]interface{}{
			"showUnverifiedCollections": true,
			"showCollectionMetadata":    true,
		},
	}
	var asset dasAssetResult
	if err := c.call(ctx, "getAsset", params, &asset); err != nil {
		return nil, 0, nil
	}
	if asset.Content == nil {
		return nil, 0, nil
	}

	meta := &domain.TokenMetadata{
		Mint:      mint,
		Name:      "Unknown",
		Symbol:    "UNK",
		FetchedAt: time.Now().UnixMilli(),
	}
	if asset.Content.Metadata != nil && asset.Content.Metadata.Name != "" {
		meta.Name = asset.Content.Metadata.Name
	} else if asset.Content.JSONURI != "" {
		meta.Name = asset.Content.JSONURI
	}
	if asset.Content.Metadata != nil && asset.Content.Metadata.Symbol != "" {
		meta.Symbol = asset.Content.Metadata.Symbol
	}
	return meta, CostMetadataLookup, nil
}

// metadataFromEntry normalizes a token-metadata entry, nil if empty.
func metadataFromEntry(mint string, e *tokenMetadataEntry) *domain.TokenMetadata {
	meta := &domain.TokenMetadata{
		Mint:      mint,
		FetchedAt: time.Now().UnixMilli(),
	}
	if e.OnChainMetadata != nil && e.OnChainMetadata.Metadata != nil {
		meta.Name = e.OnChainMetadata.Metadata.Name
		meta.Symbol = e.OnChainMetadata.Metadata.Symbol
	}
	if meta.Name == "" && e.LegacyMetadata != nil {
		meta.Name = e.LegacyMetadata.Name
		meta.Symbol = e.LegacyMetadata.Symbol
	}
	if meta.Name == "" {
		return nil
	}
	if meta.Symbol == "" {
		meta.Symbol = "UNK"
	}
	return meta
}

// GetSignatures retrieves up to limit signatures for an address, newest
// first. Costs one credit per call regardless of batch size.
func (c *HTTPClient) GetSignatures(ctx context.Context, address string, limit int, before string) ([]SignatureInfo, int, error) {
	config := map[string]interface{}{}
	if limit > 0 {
		config["limit"] = limit
	}
	if before != "" {
		config["before"] = before
	}

	params := []interface{}{address, config}

	var result []SignatureInfo
	if err := c.call(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, 0, err
	}

	return result, CostSignatureBatch, nil
}

// GetTransaction retrieves full transaction detail by signature.
// Returns nil if the transaction is not found. Costs one credit.
func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (*RawTransaction, int, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "jsonParsed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var result RawTransaction
	if err := c.call(ctx, "getTransaction", params, &result); err != nil {
		return nil, 0, err
	}

	if result.Meta == nil && result.Transaction == nil && result.BlockTime == nil {
		// Transaction not found; the call was still made and charged.
		return nil, CostTransactionDetail, nil
	}

	result.Signature = signature
	return &result, CostTransactionDetail, nil
}

// transactionsForAddressResult is the getTransactionsForAddress response.
type transactionsForAddressResult struct {
	Data            []RawTransaction `json:"data"`
	PaginationToken string           `json:"paginationToken"`
}

// GetTransactionsAscending retrieves full-detail transactions oldest
// first. Costs 100 credits per call regardless of batch size.
func (c *HTTPClient) GetTransactionsAscending(ctx context.Context, address string, limit int, sinceTime int64, pageToken string) ([]RawTransaction, string, int, error) {
	if limit <= 0 || limit > AscendingBatchSize {
		limit = AscendingBatchSize
	}

	config := map[string]interface{}{
		"transactionDetails": "full",
		"limit":              limit,
		"sortOrder":          "asc",
	}
	if sinceTime > 0 {
		config["filters"] = map[string]interface{}{
			"blockTime": map[string]interface{}{"gte": sinceTime},
		}
	}
	if pageToken != "" {
		config["paginationToken"] = pageToken
	}

	params := []interface{}{address, config}

	var result transactionsForAddressResult
	if err := c.call(ctx, "getTransactionsForAddress", params, &result); err != nil {
		return nil, "", 0, err
	}

	return result.Data, result.PaginationToken, CostAscendingBatch, nil
}

// balancesResult is the Enhanced balances response.
type balancesResult struct {
	NativeBalance uint64 `json:"nativeBalance"`
}

// GetNativeBalance retrieves the native balance of a wallet in lamports.
func (c *HTTPClient) GetNativeBalance(ctx context.Context, wallet string) (uint64, int, error) {
	var result balancesResult
	if err := c.enhancedGet(ctx, "balances", "/addresses/"+wallet+"/balances", nil, &result); err != nil {
		return 0, 0, err
	}
	return result.NativeBalance, CostBalanceLookup, nil
}
