package zerotier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/echoreply/ifconf/src/internal/errors"
	"github.com/echoreply/ifconf/src/internal/log"
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the local zerotier-one service API.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	token      string
}

// NewClient returns a client for the service at baseURL authenticating with
// token. An empty baseURL selects the local default; a nil httpClient uses
// a client with a short timeout.
func NewClient(baseURL, token string, httpClient HTTPClient) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// ReadAuthToken reads the service token file. A missing file yields an
// empty token, which the service rejects with a clear error.
func ReadAuthToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("ZeroTier auth token %s not found", path)
			return "", nil
		}
		return "", errors.NewZeroTierError("failed to read auth token", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// errNotFound is returned by do for 404 responses.
var errNotFound = fmt.Errorf("not found")

func (c *Client) do(method, endpoint string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	if c.token != "" {
		req.Header.Set("X-ZT1-Auth", c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("unauthorized for %s, check the auth token", endpoint)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, endpoint)
	}
	return data, nil
}

// fetchAndDeserialize is a generic helper to call the API and decode JSON.
func fetchAndDeserialize[T any](c *Client, method, endpoint string, body any) (T, error) {
	var result T
	data, err := c.do(method, endpoint, body)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result, nil
}

func wrap(op string, err error) error {
	return errors.NewZeroTierError(op, err)
}

// Status returns the node status.
func (c *Client) Status() (*Status, error) {
	status, err := fetchAndDeserialize[Status](c, http.MethodGet, "/status", nil)
	if err != nil {
		return nil, wrap("failed to get node status", err)
	}
	return &status, nil
}

// Networks returns all joined networks.
func (c *Client) Networks() ([]Network, error) {
	networks, err := fetchAndDeserialize[[]Network](c, http.MethodGet, "/network", nil)
	if err != nil {
		return nil, wrap("failed to list networks", err)
	}
	return networks, nil
}

// Network returns a joined network, or nil when the node is not a member.
func (c *Client) Network(id string) (*Network, error) {
	network, err := fetchAndDeserialize[Network](c, http.MethodGet, "/network/"+url.PathEscape(id), nil)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("failed to get network "+id, err)
	}
	return &network, nil
}

// Join joins a network.
func (c *Client) Join(id string) (*Network, error) {
	log.Infof("Joining ZeroTier network %s", id)
	network, err := fetchAndDeserialize[Network](c, http.MethodPost, "/network/"+url.PathEscape(id), struct{}{})
	if err != nil {
		return nil, wrap("failed to join network "+id, err)
	}
	return &network, nil
}

// Leave leaves a network. Leaving a network that is not joined succeeds.
func (c *Client) Leave(id string) error {
	log.Infof("Leaving ZeroTier network %s", id)
	if _, err := c.do(http.MethodDelete, "/network/"+url.PathEscape(id), nil); err != nil && err != errNotFound {
		return wrap("failed to leave network "+id, err)
	}
	return nil
}

// SetNetworkFlags updates the local settings of a joined network.
func (c *Client) SetNetworkFlags(id string, flags NetworkFlags) error {
	log.Debugf("Setting ZeroTier network %s flags %+v", id, flags)
	if _, err := c.do(http.MethodPost, "/network/"+url.PathEscape(id), flags); err != nil {
		return wrap("failed to configure network "+id, err)
	}
	return nil
}

// Peers returns all known peers.
func (c *Client) Peers() ([]Peer, error) {
	peers, err := fetchAndDeserialize[[]Peer](c, http.MethodGet, "/peer", nil)
	if err != nil {
		return nil, wrap("failed to list peers", err)
	}
	return peers, nil
}

// Peer returns one peer, or nil when it is unknown.
func (c *Client) Peer(address string) (*Peer, error) {
	peer, err := fetchAndDeserialize[Peer](c, http.MethodGet, "/peer/"+url.PathEscape(address), nil)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("failed to get peer "+address, err)
	}
	return &peer, nil
}

// Moons returns all orbited moons.
func (c *Client) Moons() ([]Moon, error) {
	moons, err := fetchAndDeserialize[[]Moon](c, http.MethodGet, "/moon", nil)
	if err != nil {
		return nil, wrap("failed to list moons", err)
	}
	return moons, nil
}

// Moon returns one moon, or nil when it is not orbited.
func (c *Client) Moon(id string) (*Moon, error) {
	moon, err := fetchAndDeserialize[Moon](c, http.MethodGet, "/moon/"+url.PathEscape(id), nil)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("failed to get moon "+id, err)
	}
	return &moon, nil
}

// RealInterface returns the OS interface name of a joined network, or ""
// when the network is not joined or has no device yet.
func (c *Client) RealInterface(id string) (string, error) {
	network, err := c.Network(id)
	if err != nil || network == nil {
		return "", err
	}
	return network.PortDeviceName, nil
}
