package hue

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"hue-ambient/config"
	"hue-ambient/debug"
)

// DiscoveryEndpoint is the public bridge discovery service
const DiscoveryEndpoint = "https://discovery.meethue.com"

// CommonHosts are probed when the discovery service is unreachable
var CommonHosts = []string{
	"192.168.1.1", "192.168.0.1",
	"192.168.1.2", "192.168.0.2",
	"10.0.0.1", "10.0.0.2",
}

// Discovery finds a bridge on the local network
type Discovery struct {
	Client     *http.Client
	Endpoint   string
	Candidates []string
	ProbeWait  time.Duration
}

// NewDiscovery returns a discovery using the public service and CommonHosts
func NewDiscovery() *Discovery {
	return &Discovery{
		Client:     &http.Client{Timeout: DefaultTimeout},
		Endpoint:   DiscoveryEndpoint,
		Candidates: CommonHosts,
		ProbeWait:  time.Second,
	}
}

// Discover finds a bridge with the default discovery
func Discover(ctx context.Context) (string, error) {
	return NewDiscovery().Find(ctx)
}

// Find asks the discovery service first, then probes each candidate host for
// a bridge config. It returns the first bridge address found.
func (d *Discovery) Find(ctx context.Context) (string, error) {
	if d.Endpoint != "" {
		if host, err := d.fromService(ctx); err == nil && host != "" {
			debug.Log("hue", "found bridge via discovery service: %s", host)
			return host, nil
		} else if err != nil {
			debug.Log("hue", "discovery service failed: %v", err)
		}
	}

	for _, host := range d.Candidates {
		if err := ctx.Err(); err != nil {
			return "", fault.Wrap(err, fmsg.With("discovery cancelled"))
		}
		if d.probe(ctx, host) {
			debug.Log("hue", "found bridge at %s", host)
			return host, nil
		}
	}
	return "", fault.New("no bridge found",
		fmsg.WithDesc("no bridge found", "Could not find a Hue bridge on the network"),
		ftag.With(ftag.NotFound))
}

func (d *Discovery) fromService(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var bridges []struct {
		ID      string `json:"id"`
		Address string `json:"internalipaddress"`
		Port    int    `json:"port"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bridges); err != nil {
		return "", err
	}
	if len(bridges) == 0 {
		return "", nil
	}
	return bridges[0].Address, nil
}

func (d *Discovery) probe(ctx context.Context, host string) bool {
	ctx, cancel := context.WithTimeout(ctx, d.ProbeWait)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+host+"/api/config", nil)
	if err != nil {
		return false
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(body)), "bridgeid")
}

// DeviceType identifies this application to the bridge
func DeviceType() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "host"
	}
	return "hue-ambient#" + host
}

// Register creates an API user. Until the bridge's link button is pressed
// the error is tagged ftag.Unauthenticated.
func (b *Bridge) Register(ctx context.Context, deviceType string) (string, error) {
	body, err := b.do(ctx, http.MethodPost, "/api", map[string]string{"devicetype": deviceType})
	if err != nil {
		return "", err
	}
	if err := apiError(body); err != nil {
		return "", err
	}

	var results []apiResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fault.Wrap(err, fmsg.With("decode register response"), ftag.With(ftag.Internal))
	}
	for _, r := range results {
		if u, ok := r.Success["username"].(string); ok && u != "" {
			b.username = u
			return u, nil
		}
	}
	return "", fault.New("bridge returned no username", ftag.With(ftag.Internal))
}

// Connect timing for first-time setup
var (
	LinkTimeout = 30 * time.Second
	LinkRetry   = time.Second
)

// AutoConnect returns a bridge client using the saved address and username
// when they still work. Otherwise it discovers a bridge, calls waiting once,
// and keeps registering until the link button is pressed or LinkTimeout
// passes. New credentials are saved to cfg. A nil d uses NewDiscovery.
func AutoConnect(ctx context.Context, cfg *config.Config, d *Discovery, waiting func(host string)) (*Bridge, error) {
	host := cfg.Bridge.IP
	if host == "" {
		if d == nil {
			d = NewDiscovery()
		}
		found, err := d.Find(ctx)
		if err != nil {
			return nil, err
		}
		host = found
	}

	if cfg.Bridge.Username != "" {
		b := NewBridge(host, cfg.Bridge.Username)
		_, err := b.fetch(ctx)
		if err == nil {
			debug.Log("hue", "connected to %s with saved user", host)
			return b, nil
		}
		if ftag.Get(err) != ftag.Unauthenticated {
			return nil, err
		}
		debug.Log("hue", "saved user rejected, registering again")
	}

	if waiting != nil {
		waiting(host)
	}

	b := NewBridge(host, "")
	deadline := time.Now().Add(LinkTimeout)
	for {
		username, err := b.Register(ctx, DeviceType())
		if err == nil {
			cfg.SetBridge(host, username)
			if err := cfg.Save(); err != nil {
				debug.Log("hue", "could not save credentials: %v", err)
			}
			return b, nil
		}
		if ftag.Get(err) != ftag.Unauthenticated {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fault.Wrap(err,
				fmsg.WithDesc("link button timeout", "The link button on the bridge was not pressed"),
				ftag.With(ftag.Unauthenticated))
		}

		select {
		case <-ctx.Done():
			return nil, fault.Wrap(ctx.Err(), fmsg.With("registration cancelled"))
		case <-time.After(LinkRetry):
		}
	}
}
