package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Upstream is the market-data surface the network strategies read from.
// *msx.Client implements it.
type Upstream interface {
	SecurityInfo(ctx context.Context, symbol string) (any, error)
	Search(ctx context.Context, term string) (any, error)
	EquityPage(ctx context.Context, symbol string) (string, error)
	MarketBoard(ctx context.Context) (string, error)
}

// Strategy is one way of finding a price. Price reports absence instead of
// an error; the resolver moves on to the next strategy.
type Strategy struct {
	Name    string
	Timeout time.Duration
	Price   func(ctx context.Context, ticker string) (decimal.Decimal, bool)
}

type StageTimeouts struct {
	SecurityInfo time.Duration
	Search       time.Duration
	Page         time.Duration
}

var DefaultTimeouts = StageTimeouts{
	SecurityInfo: 8 * time.Second,
	Search:       8 * time.Second,
	Page:         12 * time.Second,
}

// Field names drift between deployments of the exchange site, so several
// spellings are probed in order.
var (
	securityInfoFields = []string{"$.ClosePrice", "$.LastTradePrice", "$.close", "$.last", "$.price"}
	searchFields       = []string{"$[0].ClosePrice", "$[0].LastTrade", "$[0].Close", "$[0].Price"}
)

var pagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)data-field="[^"]*close[^"]*"[^>]*>\s*([0-9][0-9,.]*)`),
	regexp.MustCompile(`(?i)class="[^"]*close[-_]?price[^"]*"[^>]*>\s*([0-9][0-9,.]*)`),
	regexp.MustCompile(`(?i)"ClosePrice"\s*:\s*"?([0-9.]+)`),
	regexp.MustCompile(`(?i)"LastTradePrice"\s*:\s*"?([0-9.]+)`),
	regexp.MustCompile(`(?i)(?:سعر الإغلاق|close price)\s*:?\s*(?:<[^>]*>\s*)*([0-9][0-9,.]*)`),
}

// DefaultStrategies builds the cascade: structured endpoint, search
// endpoint, equity page, optionally the market board, then the manual
// override.
func DefaultStrategies(up Upstream, overrides OverrideProvider, t StageTimeouts, marketBoard bool, log *logrus.Logger) []Strategy {
	res := []Strategy{
		SecurityInfoStrategy(up, t.SecurityInfo, log),
		SearchStrategy(up, t.Search, log),
		PageStrategy(up, t.Page, log),
	}
	if marketBoard {
		res = append(res, MarketBoardStrategy(up, t.Page, log))
	}
	return append(res, OverrideStrategy(overrides, log))
}

func SecurityInfoStrategy(up Upstream, timeout time.Duration, log *logrus.Logger) Strategy {
	return Strategy{
		Name:    "security-info",
		Timeout: timeout,
		Price: func(ctx context.Context, ticker string) (decimal.Decimal, bool) {
			doc, err := up.SecurityInfo(ctx, ticker)
			if err != nil {
				log.Debugf("security info for %s: %v", ticker, err)
				return decimal.Zero, false
			}
			if _, ok := doc.(map[string]any); !ok {
				log.Debugf("security info for %s: not a json object", ticker)
				return decimal.Zero, false
			}
			return probe(doc, securityInfoFields)
		},
	}
}

func SearchStrategy(up Upstream, timeout time.Duration, log *logrus.Logger) Strategy {
	return Strategy{
		Name:    "search",
		Timeout: timeout,
		Price: func(ctx context.Context, ticker string) (decimal.Decimal, bool) {
			doc, err := up.Search(ctx, ticker)
			if err != nil {
				log.Debugf("search for %s: %v", ticker, err)
				return decimal.Zero, false
			}
			items, ok := doc.([]any)
			if !ok || len(items) == 0 {
				log.Debugf("search for %s: no results", ticker)
				return decimal.Zero, false
			}
			if _, ok := items[0].(map[string]any); !ok {
				return decimal.Zero, false
			}
			return probe(doc, searchFields)
		},
	}
}

func PageStrategy(up Upstream, timeout time.Duration, log *logrus.Logger) Strategy {
	return Strategy{
		Name:    "equity-page",
		Timeout: timeout,
		Price: func(ctx context.Context, ticker string) (decimal.Decimal, bool) {
			page, err := up.EquityPage(ctx, ticker)
			if err != nil {
				log.Debugf("equity page for %s: %v", ticker, err)
				return decimal.Zero, false
			}
			return extractFromPage(page)
		},
	}
}

// MarketBoardStrategy scans the equities board for the row naming ticker and
// takes the first plausible price among its price columns.
func MarketBoardStrategy(up Upstream, timeout time.Duration, log *logrus.Logger) Strategy {
	return Strategy{
		Name:    "market-board",
		Timeout: timeout,
		Price: func(ctx context.Context, ticker string) (decimal.Decimal, bool) {
			page, err := up.MarketBoard(ctx)
			if err != nil {
				log.Debugf("market board: %v", err)
				return decimal.Zero, false
			}
			doc, err := html.Parse(strings.NewReader(page))
			if err != nil {
				log.Debugf("market board: %v", err)
				return decimal.Zero, false
			}
			return scanBoard(doc, strings.ToUpper(ticker))
		},
	}
}

func OverrideStrategy(p OverrideProvider, log *logrus.Logger) Strategy {
	return Strategy{
		Name: "manual-override",
		Price: func(_ context.Context, ticker string) (decimal.Decimal, bool) {
			if p == nil {
				return decimal.Zero, false
			}
			key := OverrideKey(ticker)
			raw, ok := p.Lookup(key)
			if !ok {
				return decimal.Zero, false
			}
			v, ok := ParsePrice(raw)
			if !ok {
				log.Warnf("ignoring %s=%q: not a positive number", key, raw)
			}
			return v, ok
		},
	}
}

// probe returns the first candidate path holding a usable price. A present
// but unparsable value does not stop the search.
func probe(doc any, paths []string) (decimal.Decimal, bool) {
	for _, path := range paths {
		v, err := jsonpath.Get(path, doc)
		if err != nil || v == nil {
			continue
		}
		if p, ok := priceValue(v); ok {
			return p, true
		}
	}
	return decimal.Zero, false
}

// priceValue accepts the shapes the exchange has been seen to return: plain
// numbers and numbers sent as formatted strings.
func priceValue(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(x.String()); err == nil {
			return d, d.IsPositive()
		}
		return ParsePrice(x.String())
	case string:
		return ParsePrice(x)
	case float64:
		return ParsePrice(strconv.FormatFloat(x, 'f', -1, 64))
	}
	return decimal.Zero, false
}

func extractFromPage(page string) (decimal.Decimal, bool) {
	for _, re := range pagePatterns {
		m := re.FindStringSubmatch(page)
		if m == nil {
			continue
		}
		if p, ok := ParsePrice(m[1]); ok && plausible(p) {
			return p, true
		}
	}
	return decimal.Zero, false
}

func scanBoard(doc *html.Node, ticker string) (decimal.Decimal, bool) {
	for _, row := range findAll(doc, "tr") {
		cells := findAll(row, "td")
		if len(cells) < 4 || !strings.Contains(strings.ToUpper(textOf(row)), ticker) {
			continue
		}
		// number, symbol, name, then the price columns
		for _, cell := range cells[2:min(6, len(cells))] {
			if p, ok := ParsePrice(strings.TrimSpace(textOf(cell))); ok && plausible(p) {
				return p, true
			}
		}
	}
	return decimal.Zero, false
}

func findAll(n *html.Node, tag string) []*html.Node {
	var res []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			res = append(res, n)
			if tag == "tr" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return res
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
