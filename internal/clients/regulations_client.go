package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/openregulations/docketflow/internal/models"
)

const (
	REGULATIONS_API_BASE = "https://api.regulations.gov/v4"
	RATE_LIMIT_DELAY     = 400 * time.Millisecond
	PAGE_SIZE            = 250
	MAX_PAGES            = 20
	MAX_RETRIES          = 5
	INITIAL_BACKOFF      = 1 * time.Second
	MAX_BACKOFF          = 32 * time.Second
)

var (
	regulationsInstance *RegulationsClient
	regulationsOnce     sync.Once
)

// RegulationsClient talks to the Regulations.gov v4 API. It spaces requests
// to stay under the public rate limit and backs off on 429/5xx responses.
type RegulationsClient struct {
	Client  *http.Client
	APIKey  string
	BaseURL string

	mu          sync.Mutex
	lastRequest time.Time
}

func GetRegulationsClient() *RegulationsClient {
	regulationsOnce.Do(func() {
		regulationsInstance = &RegulationsClient{
			Client:  &http.Client{Timeout: 30 * time.Second},
			APIKey:  os.Getenv("REGULATIONS_API_KEY"),
			BaseURL: REGULATIONS_API_BASE,
		}
	})
	return regulationsInstance
}

func (r *RegulationsClient) throttle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elapsed := time.Since(r.lastRequest); elapsed < RATE_LIMIT_DELAY {
		time.Sleep(RATE_LIMIT_DELAY - elapsed)
	}
	r.lastRequest = time.Now()
}

// get performs one API request with backoff on rate-limit and server errors.
func (r *RegulationsClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if r.APIKey == "" {
		slog.Error("[RegulationsClient] API key is missing")
		return errors.New("[RegulationsClient] API key is missing")
	}

	endpoint := r.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	backoff := INITIAL_BACKOFF
	var lastErr error

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		r.throttle()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Api-Key", r.APIKey)

		res, err := r.Client.Do(req)
		if err != nil {
			slog.Warn("[RegulationsClient] Request failed",
				slog.String("path", path),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}

		switch res.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(res.Body)
			res.Body.Close()
			if err != nil {
				slog.Error("[RegulationsClient] Failed to read response body", slog.String("error", err.Error()))
				return err
			}
			if err := json.Unmarshal(body, out); err != nil {
				slog.Error("[RegulationsClient] Failed to parse JSON response", slog.String("error", err.Error()))
				return err
			}
			return nil
		case http.StatusNotFound:
			res.Body.Close()
			return fmt.Errorf("[RegulationsClient] Not found: %s", path)
		case http.StatusUnauthorized, http.StatusForbidden:
			res.Body.Close()
			slog.Error("[RegulationsClient] Invalid API key, check credentials")
			return errors.New("[RegulationsClient] Invalid API key, check credentials")
		case http.StatusTooManyRequests:
			io.Copy(io.Discard, res.Body)
			res.Body.Close()
			slog.Warn("[RegulationsClient] Rate limit exceeded, retrying...",
				slog.Duration("backoff", backoff), slog.Int("attempt", attempt))
			lastErr = errors.New("[RegulationsClient] rate limited")
			time.Sleep(backoff)
			backoff *= 2
			if backoff > MAX_BACKOFF {
				backoff = MAX_BACKOFF
			}
		default:
			io.Copy(io.Discard, res.Body)
			res.Body.Close()
			if res.StatusCode >= 500 {
				slog.Warn("[RegulationsClient] Server error",
					slog.Int("status_code", res.StatusCode),
					slog.Duration("backoff", backoff), slog.Int("attempt", attempt))
				lastErr = fmt.Errorf("[RegulationsClient] server error: %d", res.StatusCode)
				time.Sleep(backoff)
				backoff *= 2
				if backoff > MAX_BACKOFF {
					backoff = MAX_BACKOFF
				}
				continue
			}
			return fmt.Errorf("[RegulationsClient] unexpected status code: %d", res.StatusCode)
		}
	}

	slog.Error("[RegulationsClient] Failed after max retries", slog.String("path", path))
	return lastErr
}

func (r *RegulationsClient) FetchDocketInfo(ctx context.Context, docketID string) (models.DocketInfo, error) {
	var resp models.RegulationsDetailResponse
	if err := r.get(ctx, "/dockets/"+docketID, nil, &resp); err != nil {
		return models.DocketInfo{}, err
	}

	attrs := resp.Data.Attributes
	return models.DocketInfo{
		ID:             docketID,
		Title:          attrs.Title,
		Agency:         attrs.AgencyID,
		DocumentType:   attrs.DocumentType,
		CommentEndDate: clipDate(attrs.CommentEndDate),
	}, nil
}

// FetchComments pages through the comment index for a docket and enriches
// each entry with its full text. Enrichment is the expensive part: one
// detail request per comment, throttled by the shared rate limiter.
func (r *RegulationsClient) FetchComments(ctx context.Context, docketID string, limit int) ([]models.Comment, error) {
	ids, err := r.fetchCommentIDs(ctx, docketID, limit)
	if err != nil {
		return nil, err
	}

	slog.Info("[RegulationsClient] Enriching comments",
		slog.String("docket_id", docketID),
		slog.Int("count", len(ids)))

	comments := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return comments, ctx.Err()
		default:
		}

		var detail models.RegulationsDetailResponse
		if err := r.get(ctx, "/comments/"+id, nil, &detail); err != nil {
			slog.Warn("[RegulationsClient] Failed to fetch comment detail, skipping",
				slog.String("comment_id", id),
				slog.String("error", err.Error()))
			continue
		}

		attrs := detail.Data.Attributes
		author := strings.TrimSpace(attrs.FirstName + " " + attrs.LastName)
		if author == "" {
			author = "Anonymous"
		}

		comments = append(comments, models.Comment{
			ID:           detail.Data.ID,
			DocketID:     docketID,
			Text:         attrs.Comment,
			Author:       author,
			Organization: attrs.Organization,
			State:        attrs.StateProvinceRegion,
			Date:         clipDate(attrs.PostedDate),
		})
	}

	return comments, nil
}

// SearchDockets returns dockets matching a search term, most recently
// modified first. An empty term lists whatever the API considers current.
func (r *RegulationsClient) SearchDockets(ctx context.Context, searchTerm string, maxResults int) ([]models.DocketInfo, error) {
	var dockets []models.DocketInfo

	for page := 1; page <= MAX_PAGES && len(dockets) < maxResults; page++ {
		query := url.Values{}
		if searchTerm != "" {
			query.Set("filter[searchTerm]", searchTerm)
		}
		query.Set("sort", "-lastModifiedDate")
		query.Set("page[size]", strconv.Itoa(PAGE_SIZE))
		query.Set("page[number]", strconv.Itoa(page))

		var resp models.RegulationsListResponse
		if err := r.get(ctx, "/dockets", query, &resp); err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 {
			break
		}

		for _, item := range resp.Data {
			dockets = append(dockets, models.DocketInfo{
				ID:     item.ID,
				Title:  item.Attributes.Title,
				Agency: item.Attributes.AgencyID,
			})
		}
		if !resp.Meta.HasNextPage {
			break
		}
	}

	if len(dockets) > maxResults {
		dockets = dockets[:maxResults]
	}
	return dockets, nil
}

func (r *RegulationsClient) fetchCommentIDs(ctx context.Context, docketID string, limit int) ([]string, error) {
	var ids []string

	for page := 1; page <= MAX_PAGES && len(ids) < limit; page++ {
		query := url.Values{}
		query.Set("filter[docketId]", docketID)
		query.Set("page[size]", strconv.Itoa(PAGE_SIZE))
		query.Set("page[number]", strconv.Itoa(page))

		var resp models.RegulationsListResponse
		if err := r.get(ctx, "/comments", query, &resp); err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 {
			break
		}

		for _, item := range resp.Data {
			ids = append(ids, item.ID)
		}
		if !resp.Meta.HasNextPage {
			break
		}
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// clipDate keeps the date portion of an ISO timestamp.
func clipDate(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
