package netdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeUpstreams serves all four API endpoints from one test server.
func fakeUpstreams(t *testing.T, mux *http.ServeMux) Config {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return Config{
		Endpoints: Endpoints{
			CoinGeckoBase:   srv.URL,
			FrankfurterBase: srv.URL,
			MempoolBase:     srv.URL,
		},
		Timeout:   2 * time.Second,
		UserAgent: "solmine/test",
	}
}

func healthyMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/simple/price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"eur":60000}}`))
	})
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"USD":1.08}}`))
	})
	mux.HandleFunc("/api/v1/mining/hashrate/3d", func(w http.ResponseWriter, r *http.Request) {
		// 892.5 EH/s in H/s.
		w.Write([]byte(`{"currentHashrate":8.925e20}`))
	})
	mux.HandleFunc("/api/v1/mining/blocks/fees/24h", func(w http.ResponseWriter, r *http.Request) {
		// Average of the non-zero entries: 5,000,000 sats = 0.05 BTC.
		w.Write([]byte(`[{"avgFees":4000000},{"avgFees":6000000},{"avgFees":0}]`))
	})
	return mux
}

func TestFetch_FullSnapshot(t *testing.T) {
	src := NewHTTPSource(fakeUpstreams(t, healthyMux()))
	snap, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !snap.BTCPriceEUR.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("expected BTC price 60000, got %s", snap.BTCPriceEUR)
	}
	if !snap.EURUSDRate.Equal(decimal.NewFromFloat(1.08)) {
		t.Errorf("expected EUR/USD 1.08, got %s", snap.EURUSDRate)
	}
	if got := snap.NetworkHashrateTHS; got < 8.925e8-1 || got > 8.925e8+1 {
		t.Errorf("expected ~8.925e8 TH/s, got %v", got)
	}
	if !snap.AvgFeePerBlockBTC.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("expected 0.05 BTC avg fees, got %s", snap.AvgFeePerBlockBTC)
	}
	if snap.ID == "" {
		t.Error("expected a snapshot ID")
	}
	if snap.FetchedAt.IsZero() {
		t.Error("expected a fetch timestamp")
	}
}

func TestFetch_FeelessWindowIsNotAnError(t *testing.T) {
	src := NewHTTPSource(fakeUpstreams(t, feelessMux()))
	snap, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.AvgFeePerBlockBTC.IsZero() {
		t.Errorf("expected zero avg fees, got %s", snap.AvgFeePerBlockBTC)
	}
}

func feelessMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/simple/price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"eur":60000}}`))
	})
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"USD":1.08}}`))
	})
	mux.HandleFunc("/api/v1/mining/hashrate/3d", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currentHashrate":8.925e20}`))
	})
	mux.HandleFunc("/api/v1/mining/blocks/fees/24h", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"avgFees":0},{"avgFees":0}]`))
	})
	return mux
}

func TestFetch_UpstreamFailure(t *testing.T) {
	mux := healthyMux()
	cfg := fakeUpstreams(t, mux)
	// Point the price fetch at a server that always errors.
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(bad.Close)
	cfg.Endpoints.CoinGeckoBase = bad.URL

	src := NewHTTPSource(cfg)
	if _, err := src.Fetch(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestFetch_NonPositiveMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/simple/price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"eur":0}}`))
	})
	src := NewHTTPSource(fakeUpstreams(t, mux))
	if _, err := src.Fetch(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream for a zero price, got %v", err)
	}
}

func TestFetch_MalformedJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/simple/price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})
	src := NewHTTPSource(fakeUpstreams(t, mux))
	if _, err := src.Fetch(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream for malformed JSON, got %v", err)
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	src := NewHTTPSource(fakeUpstreams(t, healthyMux()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Fetch(ctx); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestStaticSource_ReturnsCopy(t *testing.T) {
	src := &StaticSource{}
	src.Snapshot.ID = "fixed"
	a, _ := src.Fetch(context.Background())
	b, _ := src.Fetch(context.Background())
	if a == b {
		t.Error("each fetch should return an independent copy")
	}
	if a.ID != "fixed" || b.ID != "fixed" {
		t.Errorf("expected the configured snapshot back, got %q and %q", a.ID, b.ID)
	}
}
