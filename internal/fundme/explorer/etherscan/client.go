package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/logger"
)

const (
	DefaultAPIURL = "https://api.etherscan.io/v2/api"

	statusOK          = "1"
	codeFormat        = "solidity-standard-json-input"
	resultPending     = "pending in queue"
	resultPass        = "pass - verified"
	resultRateLimited = "max rate limit reached"
)

var ErrMissingAPIKey = errors.New("etherscan API key is not configured")

type (
	// response is the envelope every Etherscan endpoint answers with.
	response struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}

	Option func(*Client)

	// Client talks to the Etherscan v2 multichain API.
	Client struct {
		apiURL       string
		apiKey       string
		httpClient   *http.Client
		pollInterval time.Duration
		timeout      time.Duration
		logger       *slog.Logger
	}
)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) { c.pollInterval = interval }
}

// WithTimeout bounds a whole submit-and-poll cycle.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

func NewClient(apiURL, apiKey string, opts ...Option) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	c := &Client{
		apiURL:       apiURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 5 * time.Second,
		logger:       logger.Named("etherscan"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// VerifySource submits the standard-JSON input and polls until Etherscan
// reports a final status. Errors carry Etherscan's own wording so callers can
// classify them.
func (c *Client) VerifySource(ctx context.Context, req domain.VerificationRequest) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	guid, err := c.submit(ctx, req)
	if err != nil {
		return err
	}

	c.logger.With("guid", guid).With("address", req.Address.Hex()).Info("verification submitted")

	return c.waitForResult(ctx, req.ChainID, guid)
}

func (c *Client) submit(ctx context.Context, req domain.VerificationRequest) (string, error) {
	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("contractaddress", req.Address.Hex())
	form.Set("sourceCode", req.SourceCode)
	form.Set("codeformat", codeFormat)
	form.Set("contractname", req.ContractName)
	form.Set("compilerversion", req.CompilerVersion)
	// Etherscan's parameter name is misspelled.
	form.Set("constructorArguements", req.ConstructorArgs)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(req.ChainID, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build verification request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, result, err := c.do(httpReq)
	if err != nil {
		return "", err
	}
	if resp.Status != statusOK {
		return "", fmt.Errorf("etherscan rejected verification: %s: %s", resp.Message, result)
	}

	return result, nil
}

func (c *Client) waitForResult(ctx context.Context, chainID uint64, guid string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("module", "contract")
	query.Set("action", "checkverifystatus")
	query.Set("guid", guid)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for verification %s: %w", guid, ctx.Err())
		case <-ticker.C:
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(chainID, query), nil)
		if err != nil {
			return fmt.Errorf("failed to build status request: %w", err)
		}

		resp, result, err := c.do(httpReq)
		if err != nil {
			return err
		}

		normalized := strings.ToLower(strings.TrimSpace(result))
		switch {
		case strings.HasPrefix(normalized, resultPending), strings.Contains(normalized, resultRateLimited):
			c.logger.With("guid", guid).With("result", result).Debug("verification pending")
			continue
		case resp.Status == statusOK && strings.HasPrefix(normalized, resultPass):
			return nil
		default:
			return fmt.Errorf("etherscan verification failed: %s", result)
		}
	}
}

func (c *Client) do(req *http.Request) (response, string, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return response{}, "", fmt.Errorf("etherscan request aborted: %w", ctxErr)
		}
		return response{}, "", fmt.Errorf("etherscan request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{}, "", fmt.Errorf("failed to read etherscan response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return response{}, "", fmt.Errorf("etherscan returned HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return response{}, "", fmt.Errorf("failed to decode etherscan response: %w", err)
	}

	var result string
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		result = string(resp.Result)
	}

	return resp, result, nil
}

func (c *Client) endpoint(chainID uint64, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("chainid", strconv.FormatUint(chainID, 10))

	separator := "?"
	if strings.Contains(c.apiURL, "?") {
		separator = "&"
	}
	return c.apiURL + separator + query.Encode()
}
