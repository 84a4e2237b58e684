package track24http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/stretchr/testify/require"
)

func TestClient_Track_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tracking.json.php", r.URL.Path)
		require.Equal(t, "demo", r.URL.Query().Get("apiKey"))
		require.Equal(t, "d", r.URL.Query().Get("domain"))
		require.Equal(t, "CODE", r.URL.Query().Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": "ok",
  "data": {
    "deliveredService": "Почта России",
    "events": [
      {"operationDateTime":"01.01.2025 00:00:00","operationAttribute":"Accepted","operationType":"ACCEPTED","operationPlaceName":"Moscow","source":"emulator"},
      {"operationDateTime":"01.01.2025 00:10:00","operationAttribute":"Delivered","operationType":"DELIVERED","operationPlaceName":"Moscow","source":"emulator"}
    ]
  }
}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "demo", "d", time.Second)
	snap, err := c.Track(context.Background(), "ignored", "CODE")
	require.NoError(t, err)
	require.Equal(t, models.StateDelivered, snap.StateID)
	require.Equal(t, "Delivered", snap.StateText)
	require.Equal(t, "Почта России", snap.CarrierName)
	require.Len(t, snap.Events, 2)
	require.Equal(t, models.StateAtPickup, snap.Events[0].StatusID)
	require.Equal(t, "2025-01-01T00:10:00+03:00", snap.Events[1].Time)
}

func TestClient_Track_Errors(t *testing.T) {
	cases := map[string]struct {
		code int
		body string
	}{
		"http":      {code: http.StatusBadGateway, body: `{}`},
		"status":    {code: http.StatusOK, body: `{"status":"error"}`},
		"no events": {code: http.StatusOK, body: `{"status":"ok","data":{"events":[]}}`},
		"malformed": {code: http.StatusOK, body: `{"status":`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "k", "d", time.Second).Track(context.Background(), "", "CODE")
			require.Error(t, err)
		})
	}
}

func TestClassify(t *testing.T) {
	require.Equal(t, models.StateDelivered, classify("Delivered"))
	require.Equal(t, models.StateDelivered, classify("Вручение адресату"))
	require.Equal(t, models.StateOutForDelivery, classify("Передано курьеру"))
	require.Equal(t, models.StateAtPickup, classify("Приём"))
	require.Equal(t, models.StateException, classify("Неудачная попытка вручения"))
	require.Equal(t, models.StateInTransit, classify("Прибыло в сортировочный центр"))
}
