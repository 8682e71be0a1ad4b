// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lcd is a client for the REST (LCD) interface of a cosmos-sdk chain.
package lcd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bitsongofficial/realign/bn"
	"github.com/bitsongofficial/realign/cache"
	"github.com/bitsongofficial/realign/faults"
	"github.com/bitsongofficial/realign/log"
	"github.com/bitsongofficial/realign/status"
)

var logger = log.WithContext("pkg", "lcd")

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

const (
	DefaultPageLimit = 100
	DefaultMaxPages  = 1000
	defaultCacheSize = 64
	maxBodySize      = 32 << 20
)

// Client talks to one LCD endpoint.
type Client struct {
	url        string
	c          *http.Client
	pageLimit  int
	maxPages   int
	validators *cache.LRU[string, []Validator]
	history    *cache.LRU[int64, *HistoricalInfo]
}

// New creates a Client for the LCD at url.
func New(url string) *Client {
	return NewWithHTTP(url, &http.Client{Timeout: 30 * time.Second})
}

func NewWithHTTP(url string, c *http.Client) *Client {
	validators, _ := cache.NewLRU[string, []Validator](defaultCacheSize)
	history, _ := cache.NewLRU[int64, *HistoricalInfo](defaultCacheSize)
	return &Client{
		url:        strings.TrimRight(url, "/"),
		c:          c,
		pageLimit:  DefaultPageLimit,
		maxPages:   DefaultMaxPages,
		validators: validators,
		history:    history,
	}
}

// WithPageLimit sets the page size requested from paginated endpoints.
func (c *Client) WithPageLimit(limit int) *Client {
	if limit > 0 {
		c.pageLimit = limit
	}
	return c
}

// WithMaxPages bounds the pages fetched when listing validators.
func (c *Client) WithMaxPages(n int) *Client {
	if n > 0 {
		c.maxPages = n
	}
	return c
}

func (c *Client) pageQuery(pageKey string) url.Values {
	q := url.Values{}
	q.Set("pagination.limit", strconv.Itoa(c.pageLimit))
	if pageKey != "" {
		q.Set("pagination.key", pageKey)
	}
	return q
}

// Delegations returns one page of the delegations of delegator.
func (c *Client) Delegations(ctx context.Context, delegator, pageKey string) (*DelegationsPage, error) {
	var page DelegationsPage
	if err := c.get(ctx, "delegations", "/cosmos/staking/v1beta1/delegations/"+url.PathEscape(delegator), c.pageQuery(pageKey), &page); err != nil {
		return nil, errors.Wrapf(err, "unable to retrieve delegations of %s", delegator)
	}
	return &page, nil
}

// ValidatorsPage returns one page of validators, optionally filtered by bond status.
func (c *Client) ValidatorsPage(ctx context.Context, kind status.Kind, pageKey string) (*ValidatorsPage, error) {
	q := c.pageQuery(pageKey)
	if kind != "" {
		q.Set("status", string(kind))
	}
	var page ValidatorsPage
	if err := c.get(ctx, "validators", "/cosmos/staking/v1beta1/validators", q, &page); err != nil {
		return nil, errors.Wrap(err, "unable to retrieve validators")
	}
	return &page, nil
}

// Validators returns every validator with the given bond status, all when kind is empty.
// Results are cached per status.
func (c *Client) Validators(ctx context.Context, kind status.Kind) ([]Validator, error) {
	return c.validators.GetOrLoad(string(kind), func(string) ([]Validator, error) {
		var (
			all  []Validator
			next string
		)
		for n := 1; ; n++ {
			if n > c.maxPages {
				return nil, errors.Wrapf(faults.ErrIncompletePage, "validators: continuation key %q left after %d pages", next, c.maxPages)
			}
			page, err := c.ValidatorsPage(ctx, kind, next)
			if err != nil {
				return nil, err
			}
			all = append(all, page.Validators...)
			if page.Pagination == nil || page.Pagination.NextKey == "" {
				break
			}
			if page.Pagination.NextKey == next {
				return nil, errors.Wrapf(faults.ErrIncompletePage, "validators: continuation key %q repeated", next)
			}
			next = page.Pagination.NextKey
		}
		logger.Debug("validators loaded", "status", kind, "count", len(all))
		return all, nil
	})
}

// HistoricalInfo returns the validator set recorded at height.
// ErrNotFound is returned when the node has pruned it.
func (c *Client) HistoricalInfo(ctx context.Context, height int64) (*HistoricalInfo, error) {
	return c.history.GetOrLoad(height, func(height int64) (*HistoricalInfo, error) {
		var res historicalInfoResponse
		if err := c.get(ctx, "historical_info", "/cosmos/staking/v1beta1/historical_info/"+strconv.FormatInt(height, 10), nil, &res); err != nil {
			return nil, errors.Wrapf(err, "unable to retrieve historical info at %d", height)
		}
		if res.Hist == nil {
			return nil, errors.Wrapf(ErrNotFound, "historical info at %d", height)
		}
		return res.Hist, nil
	})
}

// LatestHeight returns the height of the latest block.
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	var res latestBlockResponse
	if err := c.get(ctx, "latest_block", "/cosmos/base/tendermint/v1beta1/blocks/latest", nil, &res); err != nil {
		return 0, errors.Wrap(err, "unable to retrieve latest block")
	}
	height, err := strconv.ParseInt(res.Block.Header.Height, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "unable to parse latest height")
	}
	return height, nil
}

// Balance returns the liquid balance of address in denom.
func (c *Client) Balance(ctx context.Context, address, denom string) (bn.Amount, error) {
	q := url.Values{}
	q.Set("denom", denom)
	var res balanceResponse
	if err := c.get(ctx, "balance", "/cosmos/bank/v1beta1/balances/"+url.PathEscape(address)+"/by_denom", q, &res); err != nil {
		return bn.Zero(), errors.Wrapf(err, "unable to retrieve balance of %s", address)
	}
	if res.Balance == nil {
		return bn.Zero(), nil
	}
	return res.Balance.Amount, nil
}

// Rewards returns the outstanding rewards of delegator per validator.
func (c *Client) Rewards(ctx context.Context, delegator string) (*RewardsResponse, error) {
	var res RewardsResponse
	if err := c.get(ctx, "rewards", "/cosmos/distribution/v1beta1/delegators/"+url.PathEscape(delegator)+"/rewards", nil, &res); err != nil {
		return nil, errors.Wrapf(err, "unable to retrieve rewards of %s", delegator)
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, v any) error {
	u := c.url + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	body, err := c.httpGET(ctx, endpoint, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "unable to unmarshal response")
	}
	return nil
}

func (c *Client) httpGET(ctx context.Context, endpoint, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.c.Do(req)
	if err != nil {
		metricRequests().AddWithLabel(1, map[string]string{"endpoint": endpoint, "status": "error"})
		return nil, errors.Wrap(err, "error performing request")
	}
	defer resp.Body.Close()
	metricRequests().AddWithLabel(1, map[string]string{"endpoint": endpoint, "status": strconv.Itoa(resp.StatusCode)})
	metricRequestDuration().Observe(time.Since(start).Milliseconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}
	logger.Trace("lcd request", "endpoint", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, errors.Wrap(ErrNotFound, describe(body))
	default:
		return nil, errors.Wrapf(ErrNot200Status, "status code %d - %s", resp.StatusCode, describe(body))
	}
}

// describe extracts the message of an LCD error body.
func describe(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return fmt.Sprintf("code %d: %s", e.Code, e.Message)
	}
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// ResetCache drops cached validator sets. Historical info never changes and is kept.
func (c *Client) ResetCache() {
	hit, miss := c.validators.Stats()
	logger.Debug("validator cache reset", "entries", c.validators.Len(), "hit", hit, "miss", miss)
	c.validators.Purge()
}
