package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodtracking/backend/internal/model"
)

const defaultTimeout = 15 * time.Second

// StatusError is returned when the bridge answers with an unexpected status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("health store %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client talks to a REST bridge in front of the platform health store.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a new Client. A nil httpClient gets a default with a
// fifteen second timeout.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpClient,
	}
}

func (c *Client) recordURL(id string) string {
	return c.baseURL + "/records/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, target string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.New().String())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health store %s: %w", op, err)
	}
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Ping checks that the bridge is reachable and has permission to write.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, "status", http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError("status", resp)
	}
	var status struct {
		Available bool `json:"available"`
		CanWrite  bool `json:"can_write"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode status: %w", err)
	}
	if !status.Available {
		return errors.New("health store not available on this device")
	}
	if !status.CanWrite {
		return errors.New("nutrition write permission not granted")
	}
	return nil
}

// Exists reports whether a record id is still known to the store.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	resp, err := c.do(ctx, "exists", http.MethodGet, c.recordURL(id), nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError("exists", resp)
	}
}

// Create writes a new record and returns the id the store assigned.
func (c *Client) Create(ctx context.Context, entry model.FoodEntry) (string, error) {
	record := RecordFromEntry(entry)
	record.ID = ""
	resp, err := c.do(ctx, "create", http.MethodPost, c.baseURL+"/records", record)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError("create", resp)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("health store create: no record id returned")
	}
	log.Printf("[HealthClient] Created record %s for %q", created.ID, entry.Name)
	return created.ID, nil
}

// Update replaces the record's contents with the entry's current values.
func (c *Client) Update(ctx context.Context, id string, entry model.FoodEntry) error {
	record := RecordFromEntry(entry)
	record.ID = id
	resp, err := c.do(ctx, "update", http.MethodPut, c.recordURL(id), record)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("update", resp)
	}
	return nil
}

// Delete removes a record. A record that is already gone is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.do(ctx, "delete", http.MethodDelete, c.recordURL(id), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return statusError("delete", resp)
	}
}
