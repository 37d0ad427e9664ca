package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"hue-ambient/debug"
)

// Collector is a source of lamp and sensor states
type Collector interface {
	// Poll reads lamps and sensors from the same snapshot
	Poll(ctx context.Context) ([]LampState, []SensorState, error)
	Lights(ctx context.Context) ([]LampState, error)
	Sensors(ctx context.Context) ([]SensorState, error)
	// Source describes where the data comes from, e.g. a bridge address
	Source() string
}

// Bridge error types, see the Hue API error codes
const (
	errUnauthorized      = 1
	errLinkButtonNotHeld = 101
)

// DefaultTimeout bounds a single bridge request
const DefaultTimeout = 5 * time.Second

// Bridge reads state from a Hue bridge over its local REST API
type Bridge struct {
	host     string
	username string
	client   *http.Client
}

// NewBridge creates a client for the bridge at host (ip or ip:port)
func NewBridge(host, username string) *Bridge {
	return &Bridge{
		host:     host,
		username: username,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// WithClient replaces the HTTP client
func (b *Bridge) WithClient(c *http.Client) *Bridge {
	b.client = c
	return b
}

// Host returns the bridge address
func (b *Bridge) Host() string { return b.host }

// Username returns the registered API user
func (b *Bridge) Username() string { return b.username }

// Source implements Collector
func (b *Bridge) Source() string { return b.host }

func (b *Bridge) url(path string) string {
	return fmt.Sprintf("http://%s%s", b.host, path)
}

// Poll fetches the full bridge state in one request
func (b *Bridge) Poll(ctx context.Context) ([]LampState, []SensorState, error) {
	state, err := b.fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	return state.lamps(), state.sensors(), nil
}

// Lights fetches the lamp states
func (b *Bridge) Lights(ctx context.Context) ([]LampState, error) {
	state, err := b.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return state.lamps(), nil
}

// Sensors fetches the sensor states
func (b *Bridge) Sensors(ctx context.Context) ([]SensorState, error) {
	state, err := b.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return state.sensors(), nil
}

func (b *Bridge) fetch(ctx context.Context) (apiState, error) {
	var state apiState
	body, err := b.do(ctx, http.MethodGet, "/api/"+b.username, nil)
	if err != nil {
		return state, err
	}
	if err := apiError(body); err != nil {
		return state, err
	}
	if err := json.Unmarshal(body, &state); err != nil {
		return state, fault.Wrap(err, fmsg.With("decode bridge state"), ftag.With(ftag.Internal))
	}
	debug.Log("hue", "polled %s: %d lights, %d sensors", b.host, len(state.Lights), len(state.Sensors))
	return state, nil
}

func (b *Bridge) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("encode request"), ftag.With(ftag.Internal))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.url(path), body)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("build request"), ftag.With(ftag.Internal))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("bridge request", "Could not reach the Hue bridge at "+b.host),
			ftag.With(ftag.Internal))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("read bridge response"), ftag.With(ftag.Internal))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fmt.Sprintf("bridge returned %s", resp.Status), ftag.With(ftag.Internal))
	}
	return data, nil
}

type apiResult struct {
	Success map[string]any `json:"success"`
	Error   *struct {
		Type        int    `json:"type"`
		Address     string `json:"address"`
		Description string `json:"description"`
	} `json:"error"`
}

// apiError reports the first error in a bridge response. The bridge answers
// errors with 200 and a JSON array, while state is a JSON object.
func apiError(body []byte) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil
	}
	var results []apiResult
	if err := json.Unmarshal(body, &results); err != nil {
		return fault.Wrap(err, fmsg.With("decode bridge response"), ftag.With(ftag.Internal))
	}
	for _, r := range results {
		if r.Error == nil {
			continue
		}
		kind := ftag.Internal
		switch r.Error.Type {
		case errUnauthorized, errLinkButtonNotHeld:
			kind = ftag.Unauthenticated
		}
		return fault.New("bridge error: "+r.Error.Description, ftag.With(kind))
	}
	return nil
}
