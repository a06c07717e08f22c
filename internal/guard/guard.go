// Package guard implements the Policy Guard (spec.md §4.4): a
// deterministic pre-flight gate every Action passes through before the UI
// Actor is allowed to dispatch it. Checks run in a fixed order and the
// first failure wins: budgets, rate limit, navigation host allow-list,
// element existence, selector hygiene.
package guard

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/idna"
	"golang.org/x/time/rate"

	"github.com/omega-e2e/runner/internal/domain"
)

// actionsPerSecond bounds how fast the Guard lets the UI Actor fire
// actions, protecting the live collaborator services from being hammered
// by a misbehaving Planner (spec.md §4.4 "rate limit").
const actionsPerSecond = 3

// minWildcardSelectorLen is the shortest a selector containing a `*`
// wildcard may be before it's rejected as overly broad (spec.md §4.4
// "selector hygiene").
const minWildcardSelectorLen = 10

// dangerousSelectorPatterns rejects selectors that target destructive
// affordances rather than a benign CSS/test-id locator (spec.md §4.4
// "selector hygiene").
var dangerousSelectorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)delete`),
	regexp.MustCompile(`(?i)destroy`),
	regexp.MustCompile(`(?i)\[class\*=.?danger`),
}

// Guard is a per-run Policy Guard instance. It is stateful (rate limiter,
// allow-list) so one Guard must be constructed per Run.
type Guard struct {
	limiter   *rate.Limiter
	allowHost map[string]bool
}

// New builds a Guard whose navigation allow-list is derived from the
// scenario's start URL host plus any extra hosts the scenario names.
func New(startURL string, extraHosts ...string) (*Guard, error) {
	hosts := map[string]bool{}
	if startURL != "" {
		host, err := normalizeHost(startURL)
		if err != nil {
			return nil, fmt.Errorf("guard: parse start_url: %w", err)
		}
		hosts[host] = true
	}
	for _, h := range extraHosts {
		norm, err := idna.Lookup.ToASCII(h)
		if err != nil {
			return nil, fmt.Errorf("guard: normalize allow-list host %q: %w", h, err)
		}
		hosts[norm] = true
	}
	return &Guard{
		limiter:   rate.NewLimiter(rate.Limit(actionsPerSecond), actionsPerSecond),
		allowHost: hosts,
	}, nil
}

// normalizeHost parses u and returns its IDNA-normalized ASCII hostname,
// guarding the navigation allow-list against homograph bypasses.
func normalizeHost(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return idna.Lookup.ToASCII(u.Hostname())
}

// Check runs every Guard rule against action in order and returns the
// first violation, or nil if the action is clear to dispatch.
func (g *Guard) Check(action domain.Action, sdom domain.SDOM, budgets *domain.Budgets, now time.Time) error {
	if budgets.StepsExceeded() {
		return &domain.GuardError{Reason: "step budget exhausted"}
	}
	if budgets.CostExceeded() {
		return &domain.GuardError{Reason: "cost budget exhausted"}
	}
	if budgets.WallExceeded(now) {
		return &domain.GuardError{Reason: "wall-clock budget exhausted"}
	}

	if !g.limiter.AllowN(now, 1) {
		return &domain.GuardError{Reason: "rate limit exceeded (3 actions/sec)"}
	}

	if action.IsNavigate() {
		host, err := normalizeHost(action.URL)
		if err != nil {
			return &domain.GuardError{Reason: fmt.Sprintf("invalid navigation URL %q", action.URL)}
		}
		if !g.allowHost[host] {
			return &domain.GuardError{Reason: fmt.Sprintf("navigation host %q is not allow-listed", host)}
		}
		return nil
	}

	if action.TestID != "" && !sdom.HasTestID(action.TestID) {
		return &domain.GuardError{Reason: fmt.Sprintf("element with test-id %q not present in current observation", action.TestID)}
	}

	if action.Selector != "" {
		for _, pat := range dangerousSelectorPatterns {
			if pat.MatchString(action.Selector) {
				return &domain.GuardError{Reason: fmt.Sprintf("selector %q matches a disallowed pattern", action.Selector)}
			}
		}
		if strings.Contains(action.Selector, "*") && len(action.Selector) < minWildcardSelectorLen {
			return &domain.GuardError{Reason: fmt.Sprintf("selector %q is an overly broad wildcard pattern", action.Selector)}
		}
	}

	if strings.TrimSpace(action.Selector) == "" && strings.TrimSpace(action.TestID) == "" && !action.IsNavigate() && !action.IsSentinel() {
		return &domain.GuardError{Reason: "action targets neither a test-id nor a selector"}
	}

	return nil
}
