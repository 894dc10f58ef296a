// Package upstream is the HTTP client for the third-party numbers and stock service.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/irfndi/statspulse-go/internal/config"
	"github.com/irfndi/statspulse-go/internal/credential"
	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 512

// Client performs authenticated GET requests against the upstream service.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	creds      *credential.Store
	logger     *logrus.Logger
	tracer     trace.Tracer
}

// NewClient creates a client. The configured timeout bounds every request; callers
// may impose a shorter one through the context.
func NewClient(cfg config.UpstreamConfig, creds *credential.Store, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		BaseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		creds:   creds,
		logger:  logger,
		tracer:  otel.Tracer("statspulse/upstream"),
	}
}

type numbersPayload struct {
	Numbers *[]float64 `json:"numbers"`
}

// GetNumbers fetches the number series for kind.
func (c *Client) GetNumbers(ctx context.Context, kind models.NumberKind) ([]float64, error) {
	var payload numbersPayload
	if err := c.Get(ctx, kind.Path(), &payload); err != nil {
		return nil, err
	}
	if payload.Numbers == nil {
		return nil, fmt.Errorf("%w: missing numbers field", ErrInvalidPayload)
	}
	return *payload.Numbers, nil
}

type stocksPayload struct {
	Stocks *map[string]string `json:"stocks"`
}

// GetStocks fetches the catalog of company names to tickers.
func (c *Client) GetStocks(ctx context.Context) (map[string]string, error) {
	var payload stocksPayload
	if err := c.Get(ctx, "/stocks", &payload); err != nil {
		return nil, err
	}
	if payload.Stocks == nil {
		return nil, fmt.Errorf("%w: missing stocks field", ErrInvalidPayload)
	}
	return *payload.Stocks, nil
}

// pricePayload mirrors models.PriceSample with both fields required.
type pricePayload struct {
	Price         *float64   `json:"price"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt"`
}

func (p *pricePayload) sample(where string) (models.PriceSample, error) {
	switch {
	case p == nil:
		return models.PriceSample{}, fmt.Errorf("%w: missing %s", ErrInvalidPayload, where)
	case p.Price == nil:
		return models.PriceSample{}, fmt.Errorf("%w: %s has no price", ErrInvalidPayload, where)
	case p.LastUpdatedAt == nil:
		return models.PriceSample{}, fmt.Errorf("%w: %s has no lastUpdatedAt", ErrInvalidPayload, where)
	}
	return models.PriceSample{Price: *p.Price, LastUpdatedAt: *p.LastUpdatedAt}, nil
}

type stockPayload struct {
	Stock *pricePayload `json:"stock"`
}

// GetStock fetches the latest price of ticker.
func (c *Client) GetStock(ctx context.Context, ticker string) (models.PriceSample, error) {
	var payload stockPayload
	if err := c.Get(ctx, "/stocks/"+url.PathEscape(ticker), &payload); err != nil {
		return models.PriceSample{}, err
	}
	return payload.Stock.sample("stock field")
}

// GetPriceHistory fetches the price samples of ticker over the trailing minutes, in
// upstream order.
func (c *Client) GetPriceHistory(ctx context.Context, ticker string, minutes int) ([]models.PriceSample, error) {
	path := "/stocks/" + url.PathEscape(ticker) + "?minutes=" + strconv.Itoa(minutes)

	var payload []*pricePayload
	if err := c.Get(ctx, path, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: expected a price history array", ErrInvalidPayload)
	}

	history := make([]models.PriceSample, len(payload))
	for i, p := range payload {
		sample, err := p.sample("sample " + strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		history[i] = sample
	}
	return history, nil
}

// Get requests path and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) (err error) {
	ctx, span := c.tracer.Start(ctx, "upstream GET",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.path", path)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	auth, err := c.creds.Authorization()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "StatsPulse-Go/1.0")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return fmt.Errorf("%w: %s", ErrTimeout, path)
		}
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WithError(cerr).Debug("Error closing response body")
		}
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.WithFields(logrus.Fields{
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Upstream request completed")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return fmt.Errorf("%w: %s", ErrTimeout, path)
		}
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
