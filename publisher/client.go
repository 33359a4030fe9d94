// SPDX-License-Identifier: MIT

// Package publisher pulls the current airdrop merkle root from the
// off-ledger root publisher.
package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"provernet-core/types"
)

// RootAnnouncement is the publisher's response: a versioned root.
// Versions increase monotonically with each republication.
type RootAnnouncement struct {
	Root    string `json:"root"`
	Version uint64 `json:"version"`
}

// Client is a helper for pulling the published root from one endpoint.
type Client struct {
	baseURL string
	client  *http.Client

	lastVersion uint64
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// FetchRoot queries /airdrop/root on the publisher.
func (c *Client) FetchRoot() (types.Hash, uint64, error) {
	if c.baseURL == "" {
		return types.Hash{}, 0, ErrNoPublisher
	}

	url := c.baseURL + "/airdrop/root"
	resp, err := c.client.Get(url)
	if err != nil {
		return types.Hash{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return types.Hash{}, 0, ErrNoPublisher
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.Hash{}, 0, fmt.Errorf("publisher error: %s", string(body))
	}

	var ann RootAnnouncement
	if err := json.NewDecoder(resp.Body).Decode(&ann); err != nil {
		return types.Hash{}, 0, err
	}

	root, err := types.ParseHash(ann.Root)
	if err != nil {
		return types.Hash{}, 0, fmt.Errorf("publisher sent malformed root: %w", err)
	}
	return root, ann.Version, nil
}

// FetchNewRoot returns the published root only when its version is
// newer than the last one this client saw.
func (c *Client) FetchNewRoot() (types.Hash, bool, error) {
	root, version, err := c.FetchRoot()
	if err != nil {
		return types.Hash{}, false, err
	}
	if version <= c.lastVersion {
		return types.Hash{}, false, nil
	}
	c.lastVersion = version
	return root, true, nil
}

// ErrNoPublisher marks a client without an endpoint, or a publisher
// that has not announced a root yet.
var ErrNoPublisher = errors.New("no published root available")
