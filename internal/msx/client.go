// Package msx talks to the public website of the Muscat Stock Exchange. None
// of these surfaces is a documented API, so callers get raw decoded JSON or
// raw HTML and decide what to make of it.
package msx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	SecurityInfoPath = "/Api/GetSecurityInfo"
	SearchPath       = "/Api/GetSearchData"
	EquitiesPath     = "/market-data/equities"

	maxBody = 4 << 20
)

// The exchange serves a stripped page to unknown agents.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "ar,en-US;q=0.9,en;q=0.8",
}

type Client struct {
	baseURL string
	lang    string
	http    *http.Client
	log     *logrus.Logger
}

// NewClient builds a client for baseURL (e.g. https://www.msx.om). Timeouts
// are left to the caller's context.
func NewClient(baseURL, lang string, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		http:    &http.Client{},
		log:     log,
	}
}

// SecurityInfo returns the decoded JSON document for symbol. Numbers are
// kept as json.Number so prices keep their exact decimal text.
func (c *Client) SecurityInfo(ctx context.Context, symbol string) (any, error) {
	q := url.Values{"symbol": {symbol}, "lang": {c.lang}}
	body, err := c.get(ctx, SecurityInfoPath, q)
	if err != nil {
		return nil, err
	}
	return decode(body)
}

// Search returns the decoded result of a free-text lookup.
func (c *Client) Search(ctx context.Context, term string) (any, error) {
	q := url.Values{"term": {term}, "lang": {c.lang}}
	body, err := c.get(ctx, SearchPath, q)
	if err != nil {
		return nil, err
	}
	return decode(body)
}

// EquityPage returns the HTML of the per-symbol page.
func (c *Client) EquityPage(ctx context.Context, symbol string) (string, error) {
	body, err := c.get(ctx, EquitiesPath+"/"+url.PathEscape(strings.ToLower(symbol)), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// MarketBoard returns the HTML of the equities board listing every security.
func (c *Client) MarketBoard(ctx context.Context) (string, error) {
	body, err := c.get(ctx, EquitiesPath, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	addr := c.baseURL + path
	if len(q) > 0 {
		addr += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Referer", c.baseURL+"/")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.log.Debugf("GET %s %s", path, resp.Status)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cannot http GET %s: %s", path, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

func decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}
