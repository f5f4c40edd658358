package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// apiError is the error body every endpoint answers with
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// call sends a request to the API and returns the raw response body.
// payload, when non-nil, is sent as JSON. Non-2xx responses become errors.
func call(method, path string, query url.Values, payload interface{}) ([]byte, error) {
	target := strings.TrimSuffix(apiURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp apiError
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return body, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return body, fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	return body, nil
}

// callInto is call followed by decoding the body into out
func callInto(method, path string, query url.Values, payload, out interface{}) ([]byte, error) {
	body, err := call(method, path, query, payload)
	if err != nil {
		return body, err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return body, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return body, nil
}

// printJSON writes body indented when --output=json
func printJSON(body []byte) bool {
	if output != "json" {
		return false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(buf.String())
	}
	return true
}
