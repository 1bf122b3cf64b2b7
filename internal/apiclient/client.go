// Package apiclient is the HTTP client of the contribution API used by the
// terminal tool. Responses are mapped back onto the domain error taxonomy.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dcatracker/internal/domain"
)

// ErrNoToken is returned before any request when no access token is configured.
var ErrNoToken = errors.New("no access token configured (set DCA_TOKEN)")

// APIError is a non-2xx answer. It unwraps to the matching domain error.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return domain.ErrUpstreamFailure
	}
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type contributionWire struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	Coin               string          `json:"coin"`
	CoinPrice          decimal.Decimal `json:"coinPrice"`
	ContributionAmount decimal.Decimal `json:"contributionAmount"`
	CoinQuantity       decimal.Decimal `json:"coinQuantity"`
	Date               time.Time       `json:"date"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func (w contributionWire) toDomain() domain.Contribution {
	return domain.Contribution{
		ID:        w.ID,
		UserID:    w.UserID,
		Coin:      domain.Coin(w.Coin),
		CoinPrice: w.CoinPrice,
		Amount:    w.ContributionAmount,
		Quantity:  w.CoinQuantity,
		Date:      w.Date,
		CreatedAt: w.CreatedAt,
	}
}

type createWire struct {
	Coin               string           `json:"coin"`
	CoinPrice          *decimal.Decimal `json:"coinPrice,omitempty"`
	ContributionAmount *decimal.Decimal `json:"contributionAmount,omitempty"`
	CoinQuantity       *decimal.Decimal `json:"coinQuantity,omitempty"`
	Date               string           `json:"date,omitempty"`
}

// List returns the caller's contributions, newest first.
func (c *Client) List(ctx context.Context) ([]domain.Contribution, error) {
	var out struct {
		Contributions []contributionWire `json:"contributions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/contributions", nil, &out); err != nil {
		return nil, err
	}
	items := make([]domain.Contribution, 0, len(out.Contributions))
	for _, w := range out.Contributions {
		items = append(items, w.toDomain())
	}
	return items, nil
}

// Create records a contribution and returns it as stored.
func (c *Client) Create(ctx context.Context, in domain.NewContribution) (*domain.Contribution, error) {
	body := createWire{
		Coin:               in.Coin,
		CoinPrice:          in.CoinPrice,
		ContributionAmount: in.Amount,
		CoinQuantity:       in.Quantity,
	}
	if in.Date != nil {
		body.Date = in.Date.UTC().Format(time.RFC3339)
	}
	var out struct {
		Contribution contributionWire `json:"contribution"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/contributions", body, &out); err != nil {
		return nil, err
	}
	created := out.Contribution.toDomain()
	return &created, nil
}

// Delete removes a contribution and returns the server's confirmation.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/contributions", map[string]string{"id": id}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Profile returns the caller with every contribution.
func (c *Client) Profile(ctx context.Context) (*domain.Profile, error) {
	var out struct {
		User struct {
			ID            string             `json:"id"`
			Email         string             `json:"email"`
			Name          string             `json:"name"`
			Avatar        *string            `json:"avatar"`
			CreatedAt     time.Time          `json:"createdAt"`
			Contributions []contributionWire `json:"contributions"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &out); err != nil {
		return nil, err
	}
	p := &domain.Profile{User: domain.User{
		ID:        out.User.ID,
		Email:     out.User.Email,
		Name:      out.User.Name,
		Avatar:    out.User.Avatar,
		CreatedAt: out.User.CreatedAt,
	}}
	for _, w := range out.User.Contributions {
		p.Contributions = append(p.Contributions, w.toDomain())
	}
	return p, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.token == "" {
		return ErrNoToken
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamFailure, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e) == nil {
			apiErr.Message, apiErr.Code = e.Error, e.Code
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrUpstreamFailure, path, err)
	}
	return nil
}
