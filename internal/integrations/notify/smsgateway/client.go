package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/integrations/notify"
	"github.com/pkg/errors"
)

// ErrRejected marks a message the gateway will never accept: bad recipient, bad
// credentials or a non-accepted status code. Resending it does not help.
var ErrRejected = errors.New("sms rejected")

// Client sends SMS through an HTTP gateway: POST {base}/messages/v4/send with a JSON body
// {"message":{"to","from","text"}} and HTTP basic credentials.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	from      string
	httpc     *http.Client
}

func New(baseURL, apiKey, apiSecret, from string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.coolsms.co.kr"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		from:      from,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendMessage struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

type sendReq struct {
	Message sendMessage `json:"message"`
}

type sendResp struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	MessageID     string `json:"messageId"`
}

func (c *Client) Send(ctx context.Context, msg notify.Message) error {
	return c.SendText(ctx, msg.Contact, msg.Body)
}

func (c *Client) SendText(ctx context.Context, contact, body string) error {
	if contact == "" {
		return errors.Wrap(ErrRejected, "empty contact")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath("messages", "v4", "send")

	payload, err := json.Marshal(sendReq{Message: sendMessage{To: contact, From: c.from, Text: body}})
	if err != nil {
		return errors.Wrap(err, "marshal sms")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("sms gateway http %d: %s", resp.StatusCode, bytes.TrimSpace(b))
		if permanentHTTPStatus(resp.StatusCode) {
			return errors.Wrap(ErrRejected, err.Error())
		}
		return err
	}

	var r sendResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return errors.Wrap(err, "decode")
	}
	// "2000" is the gateway's "accepted" code; anything else is a rejected message.
	if r.StatusCode != "" && r.StatusCode != "2000" {
		return errors.Wrapf(ErrRejected, "sms gateway status %s %s", r.StatusCode, r.StatusMessage)
	}
	return nil
}

// 4xx means the request itself is wrong, except timeouts and throttling.
func permanentHTTPStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return false
	}
	return code/100 == 4
}
