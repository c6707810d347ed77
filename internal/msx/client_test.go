package msx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityInfo_CallsEndpointWithBrowserHeaders(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ClosePrice": 0.466}`))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "ar", logrus.New())
	v, err := c.SecurityInfo(context.Background(), "OQEP")
	require.NoError(t, err)

	assert.Equal(t, SecurityInfoPath, got.URL.Path)
	assert.Equal(t, "OQEP", got.URL.Query().Get("symbol"))
	assert.Equal(t, "ar", got.URL.Query().Get("lang"))
	assert.Contains(t, got.Header.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, server.URL+"/", got.Header.Get("Referer"))

	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("0.466"), obj["ClosePrice"])
}

func TestSearch_SendsTerm(t *testing.T) {
	var path, term string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, term = r.URL.Path, r.URL.Query().Get("term")
		w.Write([]byte(`[{"Close": "0.100"}]`))
	}))
	defer server.Close()

	v, err := NewClient(server.URL, "ar", logrus.New()).Search(context.Background(), "OQPI")
	require.NoError(t, err)
	assert.Equal(t, SearchPath, path)
	assert.Equal(t, "OQPI", term)
	assert.Len(t, v, 1)
}

func TestEquityPage_LowercasesSymbol(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	body, err := NewClient(server.URL, "ar", logrus.New()).EquityPage(context.Background(), "OQEP")
	require.NoError(t, err)
	assert.Equal(t, "/market-data/equities/oqep", path)
	assert.Equal(t, "<html>ok</html>", body)
}

func TestGet_NonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, "ar", logrus.New())
	_, err := c.SecurityInfo(context.Background(), "OQEP")
	assert.Error(t, err)
	_, err = c.MarketBoard(context.Background())
	assert.Error(t, err)
}

func TestSecurityInfo_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "ar", logrus.New()).SecurityInfo(context.Background(), "OQEP")
	assert.Error(t, err)
}
