// Package cloud is a thin client for the ClickHouse Cloud control-plane API.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultBaseURL is the public control-plane endpoint.
	DefaultBaseURL = "https://api.clickhouse.cloud/v1"

	userAgent = "chv/1.0"

	keyEnv    = "CLICKHOUSE_CLOUD_API_KEY"
	secretEnv = "CLICKHOUSE_CLOUD_API_SECRET"
)

// ErrMissingCredentials reports that no API key pair could be found.
var ErrMissingCredentials = errors.New("cloud API credentials required")

// APIError is an error response from the control plane.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cloud API: %s", e.Message)
	}
	return fmt.Sprintf("cloud API: status %d", e.StatusCode)
}

// Client calls the ClickHouse Cloud API with Basic auth.
type Client struct {
	baseURL string
	key     string
	secret  string
	client  *http.Client
}

// NewClient builds a Client. Explicit key/secret win; empty values fall back
// to CLICKHOUSE_CLOUD_API_KEY / CLICKHOUSE_CLOUD_API_SECRET, then to
// project-local saved credentials.
func NewClient(key, secret string) (*Client, error) {
	if key == "" {
		key = os.Getenv(keyEnv)
	}
	if secret == "" {
		secret = os.Getenv(secretEnv)
	}
	if key == "" || secret == "" {
		if creds, ok := LoadCredentials(""); ok {
			if key == "" {
				key = creds.APIKey
			}
			if secret == "" {
				secret = creds.APISecret
			}
		}
	}
	if key == "" || secret == "" {
		return nil, fmt.Errorf("%w: set %s and %s, pass --api-key/--api-secret, or run cloud login", ErrMissingCredentials, keyEnv, secretEnv)
	}
	return &Client{
		baseURL: DefaultBaseURL,
		key:     key,
		secret:  secret,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetBaseURL overrides the API endpoint.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud API request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read cloud API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope apiResponse[json.RawMessage]
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		} else {
			apiErr.Message = string(bytes.TrimSpace(raw))
		}
		return nil, apiErr
	}
	return raw, nil
}

func decodeResult[T any](raw []byte) (T, error) {
	var envelope apiResponse[T]
	var zero T
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return zero, fmt.Errorf("decode cloud API response: %w", err)
	}
	if envelope.Result == nil {
		return zero, errors.New("cloud API: empty result")
	}
	return *envelope.Result, nil
}

// ListOrganizations returns the organizations visible to the key.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	raw, err := c.do(ctx, http.MethodGet, "/organizations", nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[[]Organization](raw)
}

// DefaultOrganizationID returns the first organization for the key.
func (c *Client) DefaultOrganizationID(ctx context.Context) (string, error) {
	orgs, err := c.ListOrganizations(ctx)
	if err != nil {
		return "", err
	}
	if len(orgs) == 0 {
		return "", errors.New("cloud API: no organization found for this key")
	}
	return orgs[0].ID, nil
}

// ListServices returns the services in an organization.
func (c *Client) ListServices(ctx context.Context, orgID string) ([]Service, error) {
	raw, err := c.do(ctx, http.MethodGet, "/organizations/"+orgID+"/services", nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[[]Service](raw)
}

// GetService returns one service.
func (c *Client) GetService(ctx context.Context, orgID, serviceID string) (Service, error) {
	raw, err := c.do(ctx, http.MethodGet, "/organizations/"+orgID+"/services/"+serviceID, nil)
	if err != nil {
		return Service{}, err
	}
	return decodeResult[Service](raw)
}

// CreateService provisions a new service and returns it with the generated
// password. The password is shown once by the API and never again.
func (c *Client) CreateService(ctx context.Context, orgID string, req CreateServiceRequest) (CreateServiceResponse, error) {
	raw, err := c.do(ctx, http.MethodPost, "/organizations/"+orgID+"/services", req)
	if err != nil {
		return CreateServiceResponse{}, err
	}
	return decodeResult[CreateServiceResponse](raw)
}

// DeleteService removes a service.
func (c *Client) DeleteService(ctx context.Context, orgID, serviceID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/organizations/"+orgID+"/services/"+serviceID, nil)
	return err
}

// ChangeServiceState starts or stops a service. command is "start" or "stop".
func (c *Client) ChangeServiceState(ctx context.Context, orgID, serviceID, command string) (Service, error) {
	raw, err := c.do(ctx, http.MethodPatch, "/organizations/"+orgID+"/services/"+serviceID+"/state", stateChangeRequest{Command: command})
	if err != nil {
		return Service{}, err
	}
	return decodeResult[Service](raw)
}

// ListBackups returns the backups for a service.
func (c *Client) ListBackups(ctx context.Context, orgID, serviceID string) ([]Backup, error) {
	raw, err := c.do(ctx, http.MethodGet, "/organizations/"+orgID+"/services/"+serviceID+"/backups", nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[[]Backup](raw)
}

// GetBackup returns one backup.
func (c *Client) GetBackup(ctx context.Context, orgID, serviceID, backupID string) (Backup, error) {
	raw, err := c.do(ctx, http.MethodGet, "/organizations/"+orgID+"/services/"+serviceID+"/backups/"+backupID, nil)
	if err != nil {
		return Backup{}, err
	}
	return decodeResult[Backup](raw)
}
