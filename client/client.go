// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides an HTTP client to interact with a stakepool node.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/api/admin/loglevel"
	"github.com/vechain/stakepool/api/assets"
	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/common"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// StatusError is returned when the node responds with a status other than 200.
// A 400 carries the reason an operation reverted.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error - Status Code %d - %s", e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNot200Status:
		return true
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// Client talks to the REST api of a node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimRight(url, "/"),
		c:   c,
	}
}

// Pool retrieves the pool aggregate.
func (c *Client) Pool() (*pool.Summary, error) {
	var res pool.Summary
	if err := c.get("/pool", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve pool - %w", err)
	}
	return &res, nil
}

// TotalStaked retrieves the sum of every stake.
func (c *Client) TotalStaked() (*uint256.Int, error) {
	var res pool.TotalStaked
	if err := c.get("/pool/total-staked", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve total staked - %w", err)
	}
	return res.Supply, nil
}

// Dust retrieves the reward units the pool holds but owes to nobody.
func (c *Client) Dust() (*uint256.Int, error) {
	var res pool.Dust
	if err := c.get("/pool/dust", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve dust - %w", err)
	}
	return res.Dust, nil
}

func (c *Client) Stakers() ([]*pool.Staker, error) {
	var res []*pool.Staker
	if err := c.get("/pool/stakers", &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve stakers - %w", err)
	}
	return res, nil
}

func (c *Client) Staker(addr common.Address) (*pool.Staker, error) {
	var res pool.Staker
	if err := c.get("/pool/stakers/"+addr.String(), &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve staker - %w", err)
	}
	return &res, nil
}

func (c *Client) Initialize(stakeAsset, rewardAsset common.Address) error {
	var res pool.Result
	if err := c.post("/pool/initialize", &pool.InitializeRequest{StakeAsset: &stakeAsset, RewardAsset: &rewardAsset}, &res); err != nil {
		return fmt.Errorf("unable to initialize - %w", err)
	}
	return nil
}

func (c *Client) Stake(staker common.Address, amount *uint256.Int) error {
	var res pool.Result
	if err := c.post("/pool/stake", &pool.StakeRequest{Staker: &staker, Amount: amount}, &res); err != nil {
		return fmt.Errorf("unable to stake - %w", err)
	}
	return nil
}

// UnstakeAndClaim withdraws the whole stake of staker and its rewards.
func (c *Client) UnstakeAndClaim(staker common.Address) (*pool.UnstakeResult, error) {
	var res pool.UnstakeResult
	if err := c.post("/pool/unstake", &pool.UnstakeRequest{Staker: &staker}, &res); err != nil {
		return nil, fmt.Errorf("unable to unstake - %w", err)
	}
	return &res, nil
}

func (c *Client) DepositReward(depositor common.Address, amount *uint256.Int) error {
	var res pool.Result
	if err := c.post("/pool/rewards", &pool.DepositRequest{Depositor: &depositor, Amount: amount}, &res); err != nil {
		return fmt.Errorf("unable to deposit reward - %w", err)
	}
	return nil
}

func (c *Client) TotalSupply(asset common.Address) (*uint256.Int, error) {
	var res assets.Supply
	if err := c.get("/assets/"+asset.String(), &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve total supply - %w", err)
	}
	return res.TotalSupply, nil
}

func (c *Client) Balance(asset, account common.Address) (*uint256.Int, error) {
	var res assets.Balance
	if err := c.get("/assets/"+asset.String()+"/balances/"+account.String(), &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}
	return res.Balance, nil
}

func (c *Client) Allowance(asset, owner, spender common.Address) (*uint256.Int, error) {
	var res assets.Allowance
	if err := c.get("/assets/"+asset.String()+"/allowances/"+owner.String()+"/"+spender.String(), &res); err != nil {
		return nil, fmt.Errorf("unable to retrieve allowance - %w", err)
	}
	return res.Remaining, nil
}

func (c *Client) Approve(asset, owner, spender common.Address, amount *uint256.Int) error {
	var res assets.Result
	req := &assets.ApproveRequest{Owner: &owner, Spender: &spender, Amount: amount}
	if err := c.post("/assets/"+asset.String()+"/approve", req, &res); err != nil {
		return fmt.Errorf("unable to approve - %w", err)
	}
	return nil
}

func (c *Client) Transfer(asset, from, to common.Address, amount *uint256.Int) error {
	var res assets.Result
	req := &assets.TransferRequest{From: &from, To: &to, Amount: amount}
	if err := c.post("/assets/"+asset.String()+"/transfer", req, &res); err != nil {
		return fmt.Errorf("unable to transfer - %w", err)
	}
	return nil
}

// Mint creates amount of asset for to. Only nodes running a faucet accept it.
func (c *Client) Mint(asset, to common.Address, amount *uint256.Int) error {
	var res assets.Result
	if err := c.post("/assets/"+asset.String()+"/mint", &assets.MintRequest{To: &to, Amount: amount}, &res); err != nil {
		return fmt.Errorf("unable to mint - %w", err)
	}
	return nil
}

func (c *Client) LogLevel() (string, error) {
	var res loglevel.Response
	if err := c.get("/admin/loglevel", &res); err != nil {
		return "", fmt.Errorf("unable to retrieve log level - %w", err)
	}
	return res.CurrentLevel, nil
}

func (c *Client) SetLogLevel(level string) (string, error) {
	var res loglevel.Response
	if err := c.post("/admin/loglevel", &loglevel.Request{Level: level}, &res); err != nil {
		return "", fmt.Errorf("unable to set log level - %w", err)
	}
	return res.CurrentLevel, nil
}

func (c *Client) get(path string, out any) error {
	body, err := c.httpRequest(http.MethodGet, c.url+path, nil)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) post(path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to marshal payload - %w", err)
	}
	body, err := c.httpRequest(http.MethodPost, c.url+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unable to unmarshal response - %w", err)
	}
	return nil
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}
