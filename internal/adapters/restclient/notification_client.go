package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/metrics"
	"github.com/curalink/telehealth/session-gateway/internal/config"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// NotificationClient talks to the backend's notification REST surface.
// The unread-count call is circuit-broken: it feeds a badge that
// degrades to a cached value, so hammering a struggling backend for it
// is never worth it.
type NotificationClient struct {
	baseURL string
	http    *http.Client
	countCB *gobreaker.CircuitBreaker
}

var _ ports.NotificationAPI = (*NotificationClient)(nil)

func NewNotificationClient(baseURL string) *NotificationClient {
	return &NotificationClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		countCB: config.NewCircuitBreaker("Notification-API"),
	}
}

type pageResponse struct {
	Notifications []domain.WireNotification `json:"notifications"`
}

type countResponse struct {
	Count int `json:"count"`
}

func (c *NotificationClient) FetchPage(ctx context.Context, token string, page, limit int) ([]domain.WireNotification, error) {
	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	var out pageResponse
	if err := c.getJSON(ctx, token, "/notification?"+q.Encode(), &out); err != nil {
		metrics.NotificationFetchFailure("page")
		return nil, err
	}
	return out.Notifications, nil
}

func (c *NotificationClient) FetchUnreadCount(ctx context.Context, token string) (int, error) {
	result, err := c.countCB.Execute(func() (interface{}, error) {
		var out countResponse
		if err := c.getJSON(ctx, token, "/notification/unread-count", &out); err != nil {
			return 0, err
		}
		return out.Count, nil
	})
	if err != nil {
		metrics.NotificationFetchFailure("unread_count")
		return 0, err
	}
	return result.(int), nil
}

func (c *NotificationClient) MarkRead(ctx context.Context, token, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/notification/"+url.PathEscape(id)+"/read", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.NotificationFetchFailure("mark_read")
		return err
	}
	defer resp.Body.Close()

	return c.checkStatus(resp)
}

func (c *NotificationClient) getJSON(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *NotificationClient) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ports.ErrAuthRejected
	case resp.StatusCode >= 400:
		return fmt.Errorf("notification backend: unexpected status %d", resp.StatusCode)
	}
	return nil
}
