package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/harvesthub/internal/client/models"
	"github.com/dmitrijs2005/harvesthub/internal/logging"
)

// IdempotencyHeader carries the client-chosen key of a claim.
const IdempotencyHeader = "Idempotency-Key"

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewHTTPClient talks to the API rooted at baseURL (e.g. "http://localhost:5000").
// timeout bounds each request; zero means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "api"),
	}
}

// envelope holds every field the endpoints may answer with.
type envelope struct {
	Message string          `json:"message"`
	User    *models.User    `json:"user"`
	Token   string          `json:"token"`
	Food    json.RawMessage `json:"food"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/login", body)
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	return c.authenticate(ctx, "/register", req)
}

// authenticate posts credentials and requires a token in the answer; a 2xx
// reply without one is reported as an APIError.
func (c *HTTPClient) authenticate(ctx context.Context, path string, payload any) (AuthResult, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, path, "", payload, nil)
	if err != nil {
		return AuthResult{}, err
	}

	var env envelope
	if err := decode(raw.body, &env); err != nil {
		return AuthResult{}, err
	}
	if env.Token == "" {
		return AuthResult{}, &APIError{Status: raw.status, Message: env.Message}
	}

	res := AuthResult{Token: env.Token}
	if env.User != nil {
		res.User = *env.User
	}
	return res, nil
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (models.User, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, "/profile", token, nil, nil)
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := decode(raw.body, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// ListFood returns the listings. A body that is valid JSON but has no
// "food" array (an array body, a string, a missing or non-array field)
// yields an empty result rather than an error. Items that are not listing
// objects are skipped. Only a body that is not JSON at all is ErrNetwork.
func (c *HTTPClient) ListFood(ctx context.Context, token string) ([]models.FoodListing, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, "/food", token, nil, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw.body) {
		return nil, decode(raw.body, &envelope{})
	}

	var env envelope
	if err := json.Unmarshal(raw.body, &env); err != nil {
		c.log.Debug(ctx, "listing payload is not an object", "error", err)
		return []models.FoodListing{}, nil
	}

	food := bytes.TrimSpace(env.Food)
	if len(food) == 0 || food[0] != '[' {
		c.log.Debug(ctx, "listing payload has no food array")
		return []models.FoodListing{}, nil
	}

	var items []json.RawMessage
	if err := decode(food, &items); err != nil {
		return nil, err
	}

	listings := make([]models.FoodListing, 0, len(items))
	for i, item := range items {
		l, err := decodeListing(item)
		if err != nil {
			c.log.Warn(ctx, "skipping malformed listing", "index", i, "error", err)
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// decodeListing reads one listing. The id may be a JSON number or a
// string holding a positive integer.
func decodeListing(b []byte) (models.FoodListing, error) {
	var w struct {
		models.FoodListing
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return models.FoodListing{}, err
	}

	id := strings.Trim(string(bytes.TrimSpace(w.ID)), `"`)
	n, err := models.ParseID(id)
	if err != nil {
		return models.FoodListing{}, fmt.Errorf("listing id %s: %w", w.ID, err)
	}
	l := w.FoodListing
	l.ID = n
	return l, nil
}

// PostFood uploads the form as multipart/form-data. The photo part is
// omitted when form.PhotoPath is empty.
func (c *HTTPClient) PostFood(ctx context.Context, token string, form models.FoodForm) (PostResult, error) {
	body, contentType, err := encodeFoodForm(form)
	if err != nil {
		return PostResult{}, err
	}

	raw, err := c.do(ctx, http.MethodPost, "/food", token, body, contentType, nil)
	if err != nil {
		return PostResult{}, err
	}

	var res PostResult
	var env envelope
	if err := decode(raw.body, &env); err != nil {
		return PostResult{}, err
	}
	res.Message = env.Message

	var listing models.FoodListing
	if err := json.Unmarshal(raw.body, &listing); err == nil && listing.ID != 0 {
		res.Listing = &listing
	}
	return res, nil
}

// ClaimFood asks the server to match the listing to the current user.
// Retries of the same claim must reuse idempotencyKey.
func (c *HTTPClient) ClaimFood(ctx context.Context, token string, foodID int64, idempotencyKey string) (string, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyHeader] = idempotencyKey
	}
	raw, err := c.doJSON(ctx, http.MethodPost, "/match", token, map[string]int64{"food_id": foodID}, headers)
	if err != nil {
		return "", err
	}
	var env envelope
	if err := decode(raw.body, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

type response struct {
	status int
	body   []byte
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, payload any, headers map[string]string) (*response, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, body, contentType, headers)
}

// do sends the request and sorts the outcome into ErrNetwork, *APIError or
// a 2xx response.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, headers map[string]string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %v", ErrNetwork, method, path, err)
	}

	c.log.Debug(ctx, "request done",
		"method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if err := json.Unmarshal(b, &env); err != nil {
			env.Message = ""
		}
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return &response{status: resp.StatusCode, body: b}, nil
}

// decode treats a body that is not the expected JSON as a transport failure:
// the caller got no usable answer.
func decode(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}

func encodeFoodForm(form models.FoodForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if form.PhotoPath != "" {
		f, err := os.Open(form.PhotoPath)
		if err != nil {
			return nil, "", fmt.Errorf("open photo: %w", err)
		}
		defer f.Close()

		part, err := mw.CreateFormFile("photo", filepath.Base(form.PhotoPath))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", fmt.Errorf("read photo: %w", err)
		}
	}

	fields := []struct{ name, value string }{
		{"description", form.Description},
		{"location", form.Location},
		{"quantity", form.Quantity},
		{"shelf_life", form.ShelfLife},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

var _ Client = (*HTTPClient)(nil)
