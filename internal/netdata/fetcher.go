package netdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unlock-blocks/solmine/internal/model"
)

// ErrUpstream is returned when an upstream API answers with a non-200
// status or an unusable payload.
var ErrUpstream = errors.New("netdata: upstream API error")

// maxBodySize caps upstream response bodies; all four payloads are tiny.
const maxBodySize = 1 << 20

// Endpoints are the upstream API base URLs. Overridable for testing.
type Endpoints struct {
	CoinGeckoBase   string
	FrankfurterBase string
	MempoolBase     string
}

// DefaultEndpoints returns the production API hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		CoinGeckoBase:   "https://api.coingecko.com",
		FrankfurterBase: "https://api.frankfurter.app",
		MempoolBase:     "https://mempool.space",
	}
}

// Config holds fetcher settings.
type Config struct {
	Endpoints Endpoints
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Endpoints: DefaultEndpoints(),
		Timeout:   10 * time.Second,
		UserAgent: "solmine/1.0",
	}
}

// HTTPSource fetches a snapshot from the public CoinGecko, frankfurter and
// mempool.space APIs. One Fetch call is one refresh: four GETs composed
// into a single immutable snapshot.
type HTTPSource struct {
	cfg    Config
	client *http.Client
}

// NewHTTPSource creates a fetcher with the given config.
func NewHTTPSource(cfg Config) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HTTPSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch retrieves all network metrics and returns a fully populated
// snapshot, or an error if any upstream call fails.
func (s *HTTPSource) Fetch(ctx context.Context) (*model.NetworkSnapshot, error) {
	price, err := s.fetchBTCPriceEUR(ctx)
	if err != nil {
		return nil, err
	}
	rate, err := s.fetchEURUSDRate(ctx)
	if err != nil {
		return nil, err
	}
	hashrate, err := s.fetchNetworkHashrateTHS(ctx)
	if err != nil {
		return nil, err
	}
	fee, err := s.fetchAvgFeePerBlockBTC(ctx)
	if err != nil {
		return nil, err
	}

	return &model.NetworkSnapshot{
		ID:                 uuid.New().String(),
		BTCPriceEUR:        price,
		EURUSDRate:         rate,
		NetworkHashrateTHS: hashrate,
		AvgFeePerBlockBTC:  fee,
		FetchedAt:          time.Now().UTC(),
	}, nil
}

// fetchBTCPriceEUR queries CoinGecko's simple-price endpoint.
func (s *HTTPSource) fetchBTCPriceEUR(ctx context.Context) (decimal.Decimal, error) {
	var body struct {
		Bitcoin struct {
			EUR float64 `json:"eur"`
		} `json:"bitcoin"`
	}
	url := s.cfg.Endpoints.CoinGeckoBase + "/api/v3/simple/price?ids=bitcoin&vs_currencies=eur"
	if err := s.getJSON(ctx, url, &body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("BTC price: %w", err)
	}
	if body.Bitcoin.EUR <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive BTC price", ErrUpstream)
	}
	return decimal.NewFromFloat(body.Bitcoin.EUR), nil
}

// fetchEURUSDRate queries frankfurter for the EUR→USD rate.
func (s *HTTPSource) fetchEURUSDRate(ctx context.Context) (decimal.Decimal, error) {
	var body struct {
		Rates struct {
			USD float64 `json:"USD"`
		} `json:"rates"`
	}
	url := s.cfg.Endpoints.FrankfurterBase + "/latest?from=EUR&to=USD"
	if err := s.getJSON(ctx, url, &body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("EUR/USD rate: %w", err)
	}
	if body.Rates.USD <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive EUR/USD rate", ErrUpstream)
	}
	return decimal.NewFromFloat(body.Rates.USD), nil
}

// fetchNetworkHashrateTHS queries mempool.space for the 3-day average
// network hashrate. The API reports H/s; the snapshot stores TH/s.
func (s *HTTPSource) fetchNetworkHashrateTHS(ctx context.Context) (float64, error) {
	var body struct {
		CurrentHashrate float64 `json:"currentHashrate"`
	}
	url := s.cfg.Endpoints.MempoolBase + "/api/v1/mining/hashrate/3d"
	if err := s.getJSON(ctx, url, &body); err != nil {
		return 0, fmt.Errorf("network hashrate: %w", err)
	}
	if body.CurrentHashrate <= 0 {
		return 0, fmt.Errorf("%w: non-positive network hashrate", ErrUpstream)
	}
	return body.CurrentHashrate / 1e12, nil
}

// fetchAvgFeePerBlockBTC queries mempool.space's 24h block fee statistics
// and averages the blocks with non-zero fees. The API reports satoshis;
// the snapshot stores BTC.
func (s *HTTPSource) fetchAvgFeePerBlockBTC(ctx context.Context) (decimal.Decimal, error) {
	var body []struct {
		AvgFees float64 `json:"avgFees"`
	}
	url := s.cfg.Endpoints.MempoolBase + "/api/v1/mining/blocks/fees/24h"
	if err := s.getJSON(ctx, url, &body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("block fees: %w", err)
	}

	var totalSats float64
	var blocks int
	for _, b := range body {
		if b.AvgFees > 0 {
			totalSats += b.AvgFees
			blocks++
		}
	}
	if blocks == 0 {
		// A fee-less window is unusual but not an error.
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromFloat(totalSats / float64(blocks) / 1e8), nil
}

// getJSON performs one GET and decodes the JSON response.
func (s *HTTPSource) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUpstream, url, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrUpstream, url, err)
	}
	return nil
}
