package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lox/asosingest/internal/metrics"
	"github.com/lox/asosingest/internal/slot"
)

const DefaultAPIURL = "http://apis.data.go.kr/1360000/AsosHourlyInfoService/getWthrDataList"

// ASOSClient fetches hourly ASOS observations, one station per request.
type ASOSClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewASOSClient(apiKey, baseURL string, client *http.Client, logger *slog.Logger) *ASOSClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ASOSClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// Response mirrors the data.go.kr envelope.
type Response struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			DataType   string `json:"dataType"`
			Items      Items  `json:"items"`
			PageNo     int    `json:"pageNo"`
			NumOfRows  int    `json:"numOfRows"`
			TotalCount int    `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// Item is one hourly observation record. Every value is string encoded.
type Item map[string]string

type Items struct {
	Item []Item `json:"item"`
}

// UnmarshalJSON accepts the empty string the service sends in place of the
// items object when there is nothing to return.
func (i *Items) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		*i = Items{}
		return nil
	}
	type plain Items
	return json.Unmarshal(b, (*plain)(i))
}

func requestParams(apiKey string, stationID int, s slot.Slot) url.Values {
	v := url.Values{}
	v.Set("serviceKey", apiKey)
	v.Set("stnIds", strconv.Itoa(stationID))
	v.Set("startDt", s.Date)
	v.Set("endDt", s.Date)
	v.Set("startHh", s.Hour)
	v.Set("endHh", s.Hour)
	v.Set("pageNo", "1")
	v.Set("numOfRows", "30")
	v.Set("dataType", "JSON")
	v.Set("dataCd", "ASOS")
	v.Set("dateCd", "HR")
	return v
}

// Fetch requests one station's observation for the slot. It returns the
// decoded response and the raw body. Non-2xx statuses are a *StatusError;
// the embedded result code is not checked here.
func (c *ASOSClient) Fetch(ctx context.Context, stationID int, s slot.Slot) (*Response, []byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse api url: %w", err)
	}
	u.RawQuery = requestParams(c.apiKey, stationID, s).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	station := strconv.Itoa(stationID)
	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ASOSAPILatency.WithLabelValues(station).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ASOSAPICallsTotal.WithLabelValues(station, "error").Inc()
		return nil, nil, fmt.Errorf("station %d: fetch: %w", stationID, err)
	}
	defer resp.Body.Close()

	metrics.ASOSAPICallsTotal.WithLabelValues(station, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("station %d: read body: %w", stationID, err)
	}
	c.logger.Debug("asos response", "station", stationID, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, body, &StatusError{StationID: stationID, StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	var data Response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, body, fmt.Errorf("station %d: unmarshal: %w (body: %s)", stationID, err, truncate(string(body), 256))
	}
	return &data, body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
