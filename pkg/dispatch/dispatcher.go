// Package dispatch is the single network boundary of the telemetry
// pipeline. Every outgoing report goes through a Dispatcher, which performs
// exactly one signed HTTP attempt and hands a classified result back to the
// caller. Retry is the caller's next scheduled tick, never this package.
package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/pbkdf2"
)

// Kind classifies a dispatch failure.
type Kind int

const (
	// KindNetwork covers transport failures: DNS, refused connections, timeouts.
	KindNetwork Kind = iota
	// KindServer covers non-2xx responses.
	KindServer
	// KindMalformed covers responses that could not be decoded.
	KindMalformed
)

// String returns the taxonomy name of the failure kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindServer:
		return "server_error"
	case KindMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is a classified dispatch failure. Status is set for server errors.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindServer {
		return fmt.Sprintf("dispatch %s: status %d", e.Kind, e.Status)
	}
	return fmt.Sprintf("dispatch %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client is the interface the pipeline services dispatch through.
type Client interface {
	// Post sends body as JSON to baseURL+path in a single attempt. When out
	// is non-nil the response body is decoded into it; otherwise only the
	// status code is consumed. Failures come back as *Error.
	Post(ctx context.Context, path string, body any, out any) error
}

// Dispatcher performs signed HTTP POSTs against the ingestion service.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	deviceID   string
	signingKey []byte
	logger     zerolog.Logger
}

const (
	keyIterations = 4096
	keyLength     = 32
)

// NewDispatcher creates a dispatcher for the given service base URL. The
// signing key is derived from the shared service key, salted with the device
// id so a leaked per-device key cannot impersonate the fleet.
func NewDispatcher(baseURL string, timeout time.Duration, deviceID string, serviceKey []byte, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		deviceID:   deviceID,
		signingKey: pbkdf2.Key(serviceKey, []byte(deviceID), keyIterations, keyLength, sha256.New),
		logger:     logger,
	}
}

// Post implements Client.
func (d *Dispatcher) Post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindMalformed, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-Id", d.deviceID)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Signature", d.sign(timestamp, payload))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{Kind: KindServer, Status: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindMalformed, Err: err}
		}
	}

	d.logger.Debug().Str("path", path).Msg("Dispatch succeeded")
	return nil
}

// sign computes the hex HMAC-SHA256 of timestamp||body under the derived key.
func (d *Dispatcher) sign(timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, d.signingKey)
	mac.Write([]byte(timestamp))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
