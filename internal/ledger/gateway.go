package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ouvidoriachain/denuncia-backend/internal/config"
)

// Gateway talks to the anchoring gateway service, which owns the actual
// chain transactions (signing, nonces, gas). This side only submits hashes
// and reads entries back.
type Gateway struct {
	baseURL  string
	apiKey   string
	contract string
	client   *http.Client
}

func NewGateway(cfg *config.Config) *Gateway {
	timeout := cfg.AnchorTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL:  cfg.AnchorRPCURL,
		apiKey:   cfg.AnchorAPIKey,
		contract: cfg.AnchorContract,
		client:   &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	Hash     string `json:"hash"`
	Category string `json:"categoria"`
	Contract string `json:"contract,omitempty"`
}

type registerResponse struct {
	TxHash string `json:"tx_hash"`
}

func (g *Gateway) Register(hash, category string) (string, error) {
	payload, err := json.Marshal(registerRequest{Hash: hash, Category: category, Contract: g.contract})
	if err != nil {
		return "", err
	}

	var resp registerResponse
	if err := g.do(http.MethodPost, "/reports", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to anchor report: %w", err)
	}
	return resp.TxHash, nil
}

func (g *Gateway) Total() (int, error) {
	var resp struct {
		Total int `json:"total"`
	}
	if err := g.do(http.MethodGet, "/reports/total", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

func (g *Gateway) Entry(index int) (*Entry, error) {
	var entry Entry
	if err := g.do(http.MethodGet, fmt.Sprintf("/reports/%d", index), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (g *Gateway) All() ([]Entry, error) {
	var entries []Entry
	if err := g.do(http.MethodGet, "/reports", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (g *Gateway) Balance() (string, error) {
	var resp struct {
		Balance string `json:"balance"`
	}
	if err := g.do(http.MethodGet, "/balance", nil, &resp); err != nil {
		return "", err
	}
	return resp.Balance, nil
}

func (g *Gateway) EstimateCost() (string, error) {
	var resp struct {
		EstimatedCost string `json:"estimated_cost"`
	}
	if err := g.do(http.MethodGet, "/estimate", nil, &resp); err != nil {
		return "", err
	}
	return resp.EstimatedCost, nil
}

func (g *Gateway) do(method, path string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, g.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("anchor gateway error: status %d", resp.StatusCode)
	}

	return json.Unmarshal(respBody, out)
}
