package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

// webClient runs one call through the hosted web client. It opens the join
// URL in the system browser and listens on a loopback endpoint for the
// engagement-started callback. The callback path carries a per-call nonce so
// a stray request from an earlier call cannot be mistaken for this one.
type webClient struct {
	desc    *Descriptor
	logger  zerolog.Logger
	port    int
	openURL func(string) error

	nonce   string
	joinURL string
	server  *http.Server

	mu      sync.Mutex
	handler func(engagementID string)
	fired   bool
}

// NewWebClient returns the default ClientFactory. port selects the loopback
// callback listener port; zero picks an ephemeral one.
func NewWebClient(port int) ClientFactory {
	return func(desc *Descriptor, logger zerolog.Logger) Client {
		return &webClient{
			desc:    desc,
			logger:  logger.With().Str("component", "web-client").Logger(),
			port:    port,
			openURL: browser.OpenURL,
			nonce:   uuid.New().String(),
		}
	}
}

// Init starts the callback listener and builds the join URL.
func (c *webClient) Init(ctx context.Context, entryID, displayName string) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", c.port))
	if err != nil {
		return fmt.Errorf("launcher: failed to start callback listener: %w", err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/engagement/{nonce}", c.handleEngagement).Methods(http.MethodPost)

	c.server = &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := c.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			c.logger.Error().Err(err).Msg("Callback listener stopped")
		}
	}()

	callback := fmt.Sprintf("http://%s/engagement/%s", ln.Addr().String(), c.nonce)
	q := url.Values{}
	q.Set("entryId", entryID)
	q.Set("name", displayName)
	q.Set("callback", callback)
	c.joinURL = c.desc.EntryBaseURL + "?" + q.Encode()

	c.logger.Debug().Str("callback", callback).Msg("Callback listener started")
	return nil
}

// StartVideo opens the join URL in the system browser.
func (c *webClient) StartVideo(ctx context.Context) error {
	if c.joinURL == "" {
		return fmt.Errorf("launcher: client not initialized")
	}
	if err := c.openURL(c.joinURL); err != nil {
		return fmt.Errorf("launcher: failed to open video client: %w", err)
	}
	return nil
}

// OnEngagementStarted registers the lifecycle handler. The handler fires at
// most once.
func (c *webClient) OnEngagementStarted(handler func(engagementID string)) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Close shuts down the callback listener.
func (c *webClient) Close() error {
	if c.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}

func (c *webClient) handleEngagement(w http.ResponseWriter, r *http.Request) {
	if mux.Vars(r)["nonce"] != c.nonce {
		http.Error(w, "unknown callback", http.StatusNotFound)
		return
	}

	var body struct {
		EngagementID string `json:"engagementId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	handler := c.handler
	fired := c.fired
	c.fired = true
	c.mu.Unlock()

	if handler != nil && !fired {
		handler(body.EngagementID)
	}
	w.WriteHeader(http.StatusNoContent)
}
