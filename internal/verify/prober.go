package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Prober issues one HTTP reachability check. A nil return means the
// target answered with a 2xx status.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// HTTPProber probes over real HTTP with a per-attempt deadline.
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPProber creates an HTTPProber whose individual probes time
// out after the given duration.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{client: &http.Client{}, timeout: timeout}
}

// Probe issues a GET and reports non-2xx statuses and transport
// failures as errors.
func (p *HTTPProber) Probe(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return nil
}

// FakeProber implements Prober with scripted outcomes for testing.
type FakeProber struct {
	responses map[string][]error
	calls     []string
}

// NewFakeProber creates an empty FakeProber. Probing an unscripted
// URL succeeds.
func NewFakeProber() *FakeProber {
	return &FakeProber{responses: make(map[string][]error)}
}

// Stub scripts the outcomes for a URL, one per call in order. The
// last outcome repeats once the script is exhausted.
func (p *FakeProber) Stub(url string, outcomes ...error) {
	p.responses[url] = outcomes
}

// Probe returns the next scripted outcome for the URL.
func (p *FakeProber) Probe(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.calls = append(p.calls, url)
	script := p.responses[url]
	if len(script) == 0 {
		return nil
	}
	next := script[0]
	if len(script) > 1 {
		p.responses[url] = script[1:]
	}
	return next
}

// Calls returns every probed URL in call order.
func (p *FakeProber) Calls() []string {
	return p.calls
}
