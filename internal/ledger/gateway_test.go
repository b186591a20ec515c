package ledger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ouvidoriachain/denuncia-backend/internal/config"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGateway(&config.Config{
		AnchorRPCURL:   server.URL,
		AnchorAPIKey:   "gw-key",
		AnchorContract: "0xabc",
		AnchorTimeout:  5 * time.Second,
	})
}

func TestGatewayRegister(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reports" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer gw-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Hash     string `json:"hash"`
			Category string `json:"categoria"`
			Contract string `json:"contract"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Hash != "abc123" || req.Category != "VIOLENCIA" || req.Contract != "0xabc" {
			t.Errorf("request payload = %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]string{"tx_hash": "0xdeadbeef"})
	})

	txHash, err := gw.Register("abc123", "VIOLENCIA")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if txHash != "0xdeadbeef" {
		t.Errorf("tx hash = %q, want 0xdeadbeef", txHash)
	}
}

func TestGatewayReads(t *testing.T) {
	entries := []Entry{
		{Index: 0, Hash: "h0", Timestamp: 1700000000, Category: "TRAFICO"},
		{Index: 1, Hash: "h1", Timestamp: 1700000100, Category: "AMBIENTAL"},
	}
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reports/total":
			json.NewEncoder(w).Encode(map[string]int{"total": len(entries)})
		case "/reports/1":
			json.NewEncoder(w).Encode(entries[1])
		case "/reports":
			json.NewEncoder(w).Encode(entries)
		case "/balance":
			json.NewEncoder(w).Encode(map[string]string{"balance": "1.25"})
		case "/estimate":
			json.NewEncoder(w).Encode(map[string]string{"estimated_cost": "0.0021"})
		default:
			http.NotFound(w, r)
		}
	})

	total, err := gw.Total()
	if err != nil || total != 2 {
		t.Errorf("Total = %d, %v; want 2, nil", total, err)
	}

	entry, err := gw.Entry(1)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if entry.Hash != "h1" || entry.Category != "AMBIENTAL" {
		t.Errorf("entry = %+v", entry)
	}

	all, err := gw.All()
	if err != nil || len(all) != 2 {
		t.Fatalf("All = %d entries, %v; want 2, nil", len(all), err)
	}

	balance, err := gw.Balance()
	if err != nil || balance != "1.25" {
		t.Errorf("Balance = %q, %v", balance, err)
	}

	cost, err := gw.EstimateCost()
	if err != nil || cost != "0.0021" {
		t.Errorf("EstimateCost = %q, %v", cost, err)
	}
}

func TestGatewayErrorStatus(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	if _, err := gw.Total(); err == nil {
		t.Error("Total succeeded against a failing gateway")
	}
	if _, err := gw.Register("h", "c"); err == nil {
		t.Error("Register succeeded against a failing gateway")
	}
}

func TestDisabledAnchorer(t *testing.T) {
	var a Anchorer = Disabled{}

	// Register degrades to local-only storage.
	txHash, err := a.Register("h", "c")
	if err != nil || txHash != "" {
		t.Errorf("Register = %q, %v; want empty, nil", txHash, err)
	}

	if _, err := a.Total(); err != ErrDisabled {
		t.Errorf("Total err = %v, want ErrDisabled", err)
	}
	if _, err := a.All(); err != ErrDisabled {
		t.Errorf("All err = %v, want ErrDisabled", err)
	}
	if _, err := a.Balance(); err != ErrDisabled {
		t.Errorf("Balance err = %v, want ErrDisabled", err)
	}
}
