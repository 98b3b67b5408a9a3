package launcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/911interpreters/portal/internal/api"
	"github.com/rs/zerolog"
)

func descriptorServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entry_base_url": "https://video.example.com/join", "version": "2.1.0"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_ConcurrentCallersShareOneAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := descriptorServer(t, &hits)

	loader := NewLoader(srv.URL, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			desc, err := loader.Load(context.Background())
			if err != nil {
				t.Errorf("Load failed: %v", err)
				return
			}
			if desc.EntryBaseURL != "https://video.example.com/join" {
				t.Errorf("EntryBaseURL = %q", desc.EntryBaseURL)
			}
		}()
	}
	wg.Wait()

	if got := hits.Load(); got != 1 {
		t.Errorf("Descriptor fetched %d times, want 1", got)
	}
	if !loader.Ready() {
		t.Error("Loader not ready after successful load")
	}
}

func TestLoader_FailureIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL, zerolog.Nop())

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Load succeeded against failing server")
	}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Second Load succeeded, want cached failure")
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("Descriptor fetched %d times, want 1", got)
	}
	if loader.Ready() {
		t.Error("Loader reports ready after failed load")
	}
}

type fakeClient struct {
	handler func(string)
	inited  bool
	started bool
	closed  bool
}

func (c *fakeClient) OnEngagementStarted(h func(string)) { c.handler = h }
func (c *fakeClient) Init(ctx context.Context, entryID, displayName string) error {
	c.inited = true
	return nil
}
func (c *fakeClient) StartVideo(ctx context.Context) error { c.started = true; return nil }
func (c *fakeClient) Close() error                         { c.closed = true; return nil }

type fakeReporter struct {
	mu   sync.Mutex
	data []api.FlowData
	err  error
}

func (r *fakeReporter) StoreVideoFlowData(ctx context.Context, data api.FlowData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, data)
	return r.err
}

func readyLoader(t *testing.T) *Loader {
	t.Helper()
	var hits atomic.Int32
	loader := NewLoader(descriptorServer(t, &hits).URL, zerolog.Nop())
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return loader
}

func TestLauncher_RefusesBeforeReady(t *testing.T) {
	loader := NewLoader("http://127.0.0.1:0/never-fetched", zerolog.Nop())
	l := New(loader, NewWebClient(0), &fakeReporter{}, zerolog.Nop())

	err := l.StartCall(context.Background(), "entry-1", "Spanish", "Dispatcher 7", ChannelVideo)
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("StartCall before load = %v, want ErrNotReady", err)
	}
}

func TestLauncher_FreshClientPerCall(t *testing.T) {
	var made []*fakeClient
	factory := func(desc *Descriptor, logger zerolog.Logger) Client {
		c := &fakeClient{}
		made = append(made, c)
		return c
	}

	l := New(readyLoader(t), factory, &fakeReporter{}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := l.StartCall(context.Background(), "entry-1", "Spanish", "Dispatcher 7", ChannelVideo); err != nil {
			t.Fatalf("StartCall failed: %v", err)
		}
	}

	if len(made) != 2 {
		t.Fatalf("Factory invoked %d times, want one client per call", len(made))
	}
	if made[0] == made[1] {
		t.Error("Client instance reused across calls")
	}
	for i, c := range made {
		if !c.inited || !c.started {
			t.Errorf("Client %d not fully started: %+v", i, c)
		}
	}
}

func TestLauncher_EngagementEventReportsFlowData(t *testing.T) {
	var client *fakeClient
	factory := func(desc *Descriptor, logger zerolog.Logger) Client {
		client = &fakeClient{}
		return client
	}
	reporter := &fakeReporter{}

	l := New(readyLoader(t), factory, reporter, zerolog.Nop())
	if err := l.StartCall(context.Background(), "entry-9", "Farsi_Video", "Dispatcher 7", ChannelVideo); err != nil {
		t.Fatalf("StartCall failed: %v", err)
	}

	client.handler("eng-123")

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if len(reporter.data) != 1 {
		t.Fatalf("Reported %d flow records, want 1", len(reporter.data))
	}
	got := reporter.data[0]
	if got.EngagementID != "eng-123" || got.Language != "Farsi_Video" || got.LanguageDB != "Farsi" || got.CallType != "video" {
		t.Errorf("Flow data = %+v", got)
	}
}

func TestLauncher_ReportFailureDoesNotFailCall(t *testing.T) {
	var client *fakeClient
	factory := func(desc *Descriptor, logger zerolog.Logger) Client {
		client = &fakeClient{}
		return client
	}
	reporter := &fakeReporter{err: errors.New("backend down")}

	l := New(readyLoader(t), factory, reporter, zerolog.Nop())
	if err := l.StartCall(context.Background(), "entry-9", "Arabic", "Dispatcher 7", ChannelAudio); err != nil {
		t.Fatalf("StartCall failed: %v", err)
	}

	// The handler swallows the reporter error.
	client.handler("eng-456")
}

func TestWebClient_CallbackDeliversEngagementOnce(t *testing.T) {
	desc := &Descriptor{EntryBaseURL: "https://video.example.com/join"}
	c := NewWebClient(0)(desc, zerolog.Nop()).(*webClient)
	c.openURL = func(string) error { return nil }
	defer c.Close()

	got := make(chan string, 2)
	c.OnEngagementStarted(func(id string) { got <- id })

	if err := c.Init(context.Background(), "entry-1", "Dispatcher 7"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := c.StartVideo(context.Background()); err != nil {
		t.Fatalf("StartVideo failed: %v", err)
	}

	join, err := url.Parse(c.joinURL)
	if err != nil {
		t.Fatalf("Join URL unparseable: %v", err)
	}
	callback := join.Query().Get("callback")
	if callback == "" {
		t.Fatal("Join URL has no callback parameter")
	}

	post := func() *http.Response {
		resp, err := http.Post(callback, "application/json", bytes.NewBufferString(`{"engagementId": "eng-1"}`))
		if err != nil {
			t.Fatalf("Callback POST failed: %v", err)
		}
		resp.Body.Close()
		return resp
	}

	if resp := post(); resp.StatusCode != http.StatusNoContent {
		t.Errorf("Callback status = %d, want 204", resp.StatusCode)
	}

	select {
	case id := <-got:
		if id != "eng-1" {
			t.Errorf("Engagement ID = %q, want eng-1", id)
		}
	case <-time.After(time.Second):
		t.Fatal("Engagement handler never fired")
	}

	// A duplicate delivery must not fire the handler again.
	post()
	select {
	case id := <-got:
		t.Errorf("Handler fired twice, second ID %q", id)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebClient_RejectsWrongNonce(t *testing.T) {
	desc := &Descriptor{EntryBaseURL: "https://video.example.com/join"}
	c := NewWebClient(0)(desc, zerolog.Nop()).(*webClient)
	c.openURL = func(string) error { return nil }
	defer c.Close()

	fired := make(chan struct{}, 1)
	c.OnEngagementStarted(func(string) { fired <- struct{}{} })

	if err := c.Init(context.Background(), "entry-1", "Dispatcher 7"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	join, _ := url.Parse(c.joinURL)
	callback, _ := url.Parse(join.Query().Get("callback"))
	callback.Path = "/engagement/wrong-nonce"

	resp, err := http.Post(callback.String(), "application/json", bytes.NewBufferString(`{"engagementId": "eng-1"}`))
	if err != nil {
		t.Fatalf("Callback POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Wrong-nonce status = %d, want 404", resp.StatusCode)
	}

	select {
	case <-fired:
		t.Error("Handler fired for wrong nonce")
	case <-time.After(100 * time.Millisecond):
	}
}
