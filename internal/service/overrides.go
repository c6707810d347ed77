package service

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// OverrideProvider looks up operator-supplied configuration values.
type OverrideProvider interface {
	Lookup(key string) (string, bool)
}

// OverrideKey is the configuration key holding a manual price for ticker.
func OverrideKey(ticker string) string {
	return strings.ToUpper(ticker) + "_PRICE"
}

// EnvOverrides reads the process environment.
type EnvOverrides struct{}

func (EnvOverrides) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapOverrides is a fixed set of values, as read from an overrides file.
type MapOverrides map[string]string

func (m MapOverrides) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ChainOverrides consults each provider in order and returns the first hit.
type ChainOverrides []OverrideProvider

func (c ChainOverrides) Lookup(key string) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if v, ok := p.Lookup(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// LoadOverridesFile reads KEY=value lines (the .env format) from path. Keys
// are upper-cased so "oqep_price=0.47" also matches.
func LoadOverridesFile(path string) (MapOverrides, error) {
	raw, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	res := make(MapOverrides, len(raw))
	for k, v := range raw {
		res[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return res, nil
}
