package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Result stores the decoded outcome of one request against the management
// API. Search endpoints return a list and direct element fetches return an
// object; JSON holds the raw message either way so the caller decides the
// target type.
type Result struct {
	// Code is the HTTP status code.
	Code int

	// Href is the Location header, set on creates.
	Href string

	// Etag is the ETag header from a GET, used for optimistic concurrency
	// on subsequent updates.
	Etag string

	// JSON is the response body. When the server wraps the payload in a
	// top-level "result" key the wrapper is stripped.
	JSON json.RawMessage

	// Msg is the plain-text body for non-JSON responses, typically the
	// server's error detail.
	Msg string
}

// Decode unmarshals the result body into v.
func (r *Result) Decode(v interface{}) error {
	return json.Unmarshal(r.JSON, v)
}

// newResult unpacks an HTTP response into a Result. The body is fully
// consumed so the connection can be reused.
func newResult(resp *http.Response) *Result {
	r := &Result{
		Code: resp.StatusCode,
		Href: resp.Header.Get("Location"),
		Etag: strings.Trim(resp.Header.Get("ETag"), `"`),
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return r
	}

	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var wrapper struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Result != nil {
			r.JSON = wrapper.Result
		} else {
			r.JSON = body
		}
		// Error payloads carry a "message" detail alongside the status.
		var detail struct {
			Message string   `json:"message"`
			Details []string `json:"details"`
		}
		if err := json.Unmarshal(body, &detail); err == nil {
			if detail.Message != "" {
				r.Msg = detail.Message
			} else if len(detail.Details) > 0 {
				r.Msg = strings.Join(detail.Details, "; ")
			}
		}
		return r
	}

	r.Msg = strings.TrimSpace(string(body))
	return r
}
