package trackerdelivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/pkg/errors"
)

const defaultBaseURL = "https://apis.tracker.delivery"

// Client talks to the tracker.delivery REST API (GET /carriers/{carrier}/tracks/{number}).
type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

type idText struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type respProgress struct {
	Time     string  `json:"time"`
	Status   *idText `json:"status,omitempty"`
	Location *struct {
		Name string `json:"name"`
	} `json:"location,omitempty"`
	Description string `json:"description"`
}

type respBody struct {
	State      *idText        `json:"state"`
	Progresses []respProgress `json:"progresses"`
	Carrier    *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Tel  string `json:"tel"`
	} `json:"carrier,omitempty"`
}

func (c *Client) Track(ctx context.Context, carrierID, trackingNumber string) (carrier.Snapshot, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "parse base url")
	}
	// Segments may contain '/', so RawPath carries the escaped form.
	base, rawBase := strings.TrimSuffix(u.Path, "/"), strings.TrimSuffix(u.EscapedPath(), "/")
	u.Path = base + "/carriers/" + carrierID + "/tracks/" + trackingNumber
	u.RawPath = rawBase + "/carriers/" + url.PathEscape(carrierID) + "/tracks/" + url.PathEscape(trackingNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return carrier.Snapshot{}, fmt.Errorf("tracker rate limit (429)")
	}
	if resp.StatusCode/100 != 2 {
		return carrier.Snapshot{}, fmt.Errorf("tracker http %d", resp.StatusCode)
	}

	var rb respBody
	if err := json.NewDecoder(resp.Body).Decode(&rb); err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "decode")
	}
	if rb.State == nil || rb.State.ID == "" {
		return carrier.Snapshot{}, errors.New("tracker response has no state")
	}

	snap := carrier.Snapshot{
		StateID:   rb.State.ID,
		StateText: rb.State.Text,
	}
	if rb.Carrier != nil {
		snap.CarrierName = rb.Carrier.Name
	}
	for _, p := range rb.Progresses {
		ev := carrier.ProgressEvent{
			Time:        p.Time,
			Description: p.Description,
		}
		if p.Status != nil {
			ev.StatusID = p.Status.ID
			ev.StatusText = p.Status.Text
		}
		if p.Location != nil {
			ev.Location = p.Location.Name
		}
		snap.Events = append(snap.Events, ev)
	}
	return snap, nil
}
