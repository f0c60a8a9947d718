package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

const (
	// DefaultBaseURL is the public Google Books API.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	unknown = "Unknown"

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 1 << 20
)

var tracer = otel.Tracer("validator-lookup")

// GoogleBooks queries the Google Books volumes endpoint.
type GoogleBooks struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGoogleBooks creates a client. Empty baseURL means DefaultBaseURL and a
// zero timeout means ten seconds.
func NewGoogleBooks(baseURL, apiKey string, timeout time.Duration) *GoogleBooks {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &GoogleBooks{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup returns the first volume matching isbn. Missing fields read
// "Unknown" and authors are joined with ", ".
func (g *GoogleBooks) Lookup(ctx context.Context, isbn string) (*domain.BookRecord, error) {
	ctx, span := tracer.Start(ctx, "googlebooks.lookup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("isbn", isbn)),
	)
	defer span.End()

	book, err := g.fetch(ctx, isbn)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Bool("found", book != nil))
	return book, err
}

func (g *GoogleBooks) fetch(ctx context.Context, isbn string) (*domain.BookRecord, error) {
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Category: CategoryBadData, ISBN: isbn, Underlying: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		category := CategoryOutage
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			category = CategoryTimeout
		}
		return nil, &Error{Category: category, ISBN: isbn, Underlying: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Category: CategoryRateLimited, ISBN: isbn, Underlying: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, &Error{Category: CategoryOutage, ISBN: isbn, Underlying: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{Category: CategoryBadData, ISBN: isbn, Underlying: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var body volumesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, &Error{Category: CategoryBadData, ISBN: isbn, Underlying: err}
	}
	if len(body.Items) == 0 {
		return nil, ErrNotFound
	}

	info := body.Items[0].VolumeInfo
	authors := unknown
	if len(info.Authors) > 0 {
		authors = strings.Join(info.Authors, ", ")
	}
	return &domain.BookRecord{
		ISBN:          isbn,
		Title:         orUnknown(info.Title),
		Authors:       authors,
		Publisher:     orUnknown(info.Publisher),
		PublishedDate: orUnknown(info.PublishedDate),
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
