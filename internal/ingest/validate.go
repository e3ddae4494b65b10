package ingest

import "fmt"

const ResultCodeOK = "00"

// CheckResultCode fails on any embedded result code other than "00".
func CheckResultCode(stationID int, resp *Response) error {
	h := resp.Response.Header
	if h.ResultCode != ResultCodeOK {
		return &ResultCodeError{StationID: stationID, Code: h.ResultCode, Message: h.ResultMsg}
	}
	return nil
}

// FirstObservation returns the single hourly record of a successful response.
func FirstObservation(stationID int, resp *Response) (Item, error) {
	items := resp.Response.Body.Items.Item
	if len(items) == 0 {
		return nil, fmt.Errorf("station %d: %w", stationID, ErrNoObservation)
	}
	return items[0], nil
}
