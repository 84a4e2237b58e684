package track24http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/integrations/carrier"
	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/pkg/errors"
)

// Client talks to the Track24 aggregator. Track24 detects the carrier from the tracking
// number and reports free-text operations, so the state is derived from the last one.
type Client struct {
	baseURL string
	apiKey  string
	domain  string
	loc     *time.Location
	httpc   *http.Client
}

func New(baseURL, apiKey, domain string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.track24.ru"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// Track24 timestamps carry no offset and are Moscow time.
	loc := time.FixedZone("MSK", 3*60*60)
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		domain:  domain,
		loc:     loc,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

type track24Resp struct {
	Status string `json:"status"`
	Data   struct {
		DeliveredService string `json:"deliveredService"`
		Events           []struct {
			OperationDateTime        string `json:"operationDateTime"`
			OperationAttribute       string `json:"operationAttribute"`
			OperationType            string `json:"operationType"`
			OperationPlaceName       string `json:"operationPlaceName"`
			OperationPlacePostalCode string `json:"operationPlacePostalCode"`
			Source                   string `json:"source"`
		} `json:"events"`
	} `json:"data"`
}

func (c *Client) Track(ctx context.Context, carrierID, trackingNumber string) (carrier.Snapshot, error) {
	_ = carrierID

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath("tracking.json.php")

	q := u.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("domain", c.domain)
	q.Set("code", trackingNumber)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return carrier.Snapshot{}, fmt.Errorf("track24 http %d", resp.StatusCode)
	}

	var r track24Resp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return carrier.Snapshot{}, errors.Wrap(err, "decode")
	}
	if r.Status != "ok" {
		return carrier.Snapshot{}, fmt.Errorf("track24 status=%s", r.Status)
	}
	if len(r.Data.Events) == 0 {
		return carrier.Snapshot{}, errors.New("track24 response has no events")
	}

	snap := carrier.Snapshot{CarrierName: r.Data.DeliveredService}
	for _, e := range r.Data.Events {
		ev := carrier.ProgressEvent{
			Time:        e.OperationDateTime,
			StatusID:    classify(e.OperationAttribute),
			StatusText:  e.OperationAttribute,
			Location:    e.OperationPlaceName,
			Description: e.OperationType,
		}
		// Example: "02.07.2014 19:16:00"
		if t, err := time.ParseInLocation("02.01.2006 15:04:05", e.OperationDateTime, c.loc); err == nil {
			ev.Time = t.Format(time.RFC3339)
		}
		snap.Events = append(snap.Events, ev)
	}

	last := snap.Events[len(snap.Events)-1]
	snap.StateID = last.StatusID
	snap.StateText = last.StatusText
	return snap, nil
}

// classify maps a free-text operation to the normalized state vocabulary.
func classify(attr string) string {
	low := strings.ToLower(attr)
	switch {
	case containsAny(low, "неудачн", "возврат", "return", "failed"):
		return models.StateException
	case containsAny(low, "вруч", "delivered"):
		return models.StateDelivered
	case containsAny(low, "курьер", "out for delivery"):
		return models.StateOutForDelivery
	case containsAny(low, "прием", "приём", "accepted"):
		return models.StateAtPickup
	default:
		return models.StateInTransit
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
