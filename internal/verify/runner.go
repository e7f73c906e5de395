// Package verify evaluates a kit's verification criteria after its
// files have been committed to the working tree.
//
// Key concepts:
//   - Criterion: one check parsed from a manifest bullet. `file:`
//     checks path existence, `http:` probes a URL for a 2xx answer,
//     and anything else is advisory for a human.
//   - residual check: every kit implicitly fails verification if a
//     file it wrote still contains an unresolved {{TOKEN}}.
//   - Runner: evaluates checks against a tree view, retrying HTTP
//     probes with bounded exponential backoff on an injectable clock
//     so tests run without real waits.
//
// Failed checks are reported, never acted on: the merged files stay
// exactly as committed regardless of verification outcome.
package verify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danieljhkim/kitforge/internal/clock"
	"github.com/danieljhkim/kitforge/internal/vars"
)

// probeAttempts bounds HTTP retries. Waits between attempts double
// from one second, so four attempts wait 1s, 2s, then 4s.
const probeAttempts = 4

// Tree is the read view verification runs against. It is satisfied
// by merge.WorkingTree, so dry-run overlays verify like real trees.
type Tree interface {
	Read(relPath string) ([]byte, bool, error)
	Exists(relPath string) (bool, error)
}

// Result is the outcome of one check.
type Result struct {
	// Criterion is the check that was evaluated.
	Criterion Criterion

	// Passed reports whether the check held. Advisory checks always
	// pass.
	Passed bool

	// Advisory marks a check that was not evaluated mechanically and
	// needs a human: manual criteria, and http criteria on dry runs.
	Advisory bool

	// Detail carries the failure reason, empty on success.
	Detail string
}

// Outcome is the verification outcome for one kit.
type Outcome struct {
	// Kit is the id of the verified kit.
	Kit string

	// Results holds one entry per check in evaluation order.
	Results []Result
}

// Failures returns the failed results in evaluation order.
func (o *Outcome) Failures() []Result {
	var out []Result
	for _, r := range o.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Passed reports whether every check held.
func (o *Outcome) Passed() bool {
	return len(o.Failures()) == 0
}

// Runner evaluates kit verification criteria.
type Runner struct {
	clock      clock.Clock
	prober     Prober
	skipProbes bool
}

// NewRunner creates a Runner probing through the given prober and
// waiting on the given clock.
func NewRunner(clk clock.Clock, prober Prober) *Runner {
	return &Runner{clock: clk, prober: prober}
}

// SkipProbes turns http checks into advisory results instead of live
// probes. Dry runs verify this way: the endpoints a kit declares are
// not expected to be up before its files land for real.
func (r *Runner) SkipProbes() {
	r.skipProbes = true
}

// Run evaluates the kit's criteria plus the implicit residual
// placeholder check over the paths the kit wrote. Check failures are
// reported in the outcome; the returned error is reserved for tree
// read failures and context cancellation.
func (r *Runner) Run(ctx context.Context, tree Tree, kitID string, criteria []string, writtenPaths []string) (*Outcome, error) {
	outcome := &Outcome{Kit: kitID}

	for _, c := range ParseCriteria(criteria) {
		switch c.Kind {
		case KindFile:
			exists, err := tree.Exists(c.Target)
			if err != nil {
				return nil, err
			}
			result := Result{Criterion: c, Passed: exists}
			if !exists {
				result.Detail = fmt.Sprintf("file %s not found", c.Target)
			}
			outcome.Results = append(outcome.Results, result)

		case KindHTTP:
			if r.skipProbes {
				outcome.Results = append(outcome.Results, Result{
					Criterion: c,
					Passed:    true,
					Advisory:  true,
				})
				break
			}
			result := Result{Criterion: c, Passed: true}
			if err := r.probeWithRetry(ctx, c.Target); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				result.Passed = false
				result.Detail = err.Error()
			}
			outcome.Results = append(outcome.Results, result)

		case KindManual:
			outcome.Results = append(outcome.Results, Result{
				Criterion: c,
				Passed:    true,
				Advisory:  true,
			})
		}
	}

	for _, relPath := range writtenPaths {
		content, exists, err := tree.Read(relPath)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		_, unresolved := vars.Expand(string(content), nil)
		if len(unresolved) == 0 {
			continue
		}
		sort.Strings(unresolved)
		outcome.Results = append(outcome.Results, Result{
			Criterion: Criterion{
				Kind:   KindResidual,
				Target: relPath,
				Raw:    fmt.Sprintf("no unresolved placeholders in %s", relPath),
			},
			Detail: fmt.Sprintf("unresolved placeholders: %s", strings.Join(unresolved, ", ")),
		})
	}

	return outcome, nil
}

// probeWithRetry probes the URL up to probeAttempts times, doubling
// the wait from one second between attempts. Cancellation is honored
// mid-backoff and the last failure is reported.
func (r *Runner) probeWithRetry(ctx context.Context, url string) error {
	var lastErr error
	delay := time.Second
	for attempt := 1; attempt <= probeAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(delay):
			}
			delay *= 2
		}
		if err := r.prober.Probe(ctx, url); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%d attempts failed, last: %w", probeAttempts, lastErr)
}
