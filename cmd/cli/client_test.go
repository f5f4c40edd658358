package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	prev := apiURL
	apiURL = srv.URL + "/"
	t.Cleanup(func() { apiURL = prev })
}

func TestCallSendsJSONAndQuery(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/chats/delete-all", r.URL.Path)
		assert.Equal(t, "DELETE_ALL_CHATS", r.URL.Query().Get("confirm"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"deleted":3}`))
	})

	var out struct {
		Deleted int64 `json:"deleted"`
	}
	_, err := callInto(http.MethodDelete, "/api/chats/delete-all", url.Values{"confirm": {"DELETE_ALL_CHATS"}}, nil, &out)
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.Deleted)
}

func TestCallEncodesPayload(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hi", body["text"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := call(http.MethodPost, "/api/chats", nil, map[string]string{"text": "hi"})
	assert.NoError(t, err)
}

func TestCallSurfacesAPIErrorMessage(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden","message":"Bulk chat deletion is disabled."}`))
	})

	_, err := call(http.MethodDelete, "/api/chats/delete-all", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bulk chat deletion is disabled.")
	assert.Contains(t, err.Error(), "403")
}

func TestCallWithoutErrorBody(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := call(http.MethodGet, "/health", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "API error: status 502", err.Error())
}
