package hedera

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mirror is the read-only query boundary used for NFT serial-number
// auto-selection: which serials of a token an account currently holds.
type Mirror interface {
	OwnedSerials(ctx context.Context, token, account EntityID) ([]int64, error)
}

// MirrorClient queries a ledger mirror node over its public REST API.
type MirrorClient struct {
	baseURL string
	hc      *http.Client
}

// NewMirrorClient constructs a mirror client for the given base URL.
func NewMirrorClient(baseURL string) *MirrorClient {
	return &MirrorClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

type mirrorNft struct {
	SerialNumber int64 `json:"serial_number"`
}

type mirrorNftPage struct {
	Nfts []mirrorNft `json:"nfts"`
}

// OwnedSerials returns the serial numbers of the token held by the account.
func (m *MirrorClient) OwnedSerials(ctx context.Context, token, account EntityID) ([]int64, error) {
	url := fmt.Sprintf("%s/api/v1/tokens/%s/nfts?account.id=%s", m.baseURL, token, account)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mirror query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror query: unexpected status %d", resp.StatusCode)
	}
	var page mirrorNftPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("mirror query: decode: %w", err)
	}
	serials := make([]int64, 0, len(page.Nfts))
	for _, nft := range page.Nfts {
		serials = append(serials, nft.SerialNumber)
	}
	return serials, nil
}
