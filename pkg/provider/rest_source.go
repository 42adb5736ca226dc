package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RestSource fetches events from a connector gateway over HTTP. One
// instance per service name; the gateway multiplexes the actual upstream
// (email, calendar, billing) behind a uniform JSON shape.
type RestSource struct {
	ServiceName string
	BaseURL     string
	client      *http.Client
}

func NewRestSource(serviceName string, baseURL string) EventSource {
	return &RestSource{
		ServiceName: serviceName,
		BaseURL:     baseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RestSource) Name() string {
	return s.ServiceName
}

type restEventsResponse struct {
	Events []ExternalEvent `json:"events"`
}

func (s *RestSource) FetchEvents(ctx context.Context, userId uuid.UUID, preferences map[string]string) ([]ExternalEvent, error) {
	endpoint := fmt.Sprintf("%s/services/%s/events?user_id=%s", s.BaseURL, s.ServiceName, userId.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range preferences {
		req.Header.Set("X-Pref-"+key, value)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events from %s: %w", s.ServiceName, err)
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("connector %s returned %d: %s", s.ServiceName, res.StatusCode, string(bodyBytes))
	}

	var parsed restEventsResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("decode events from %s: %w", s.ServiceName, err)
	}

	return parsed.Events, nil
}
