package internal

import (
	"net"
	"strings"
)

// User class markers usable in AccessRule.Users.
const (
	// UsersAll matches every request.
	UsersAll = "*"
	// UsersGuest matches unauthenticated requests.
	UsersGuest = "?"
	// UsersAuthenticated matches authenticated requests.
	UsersAuthenticated = "@"
)

// AccessRule is one entry of a controller's access policy. Empty criteria
// match everything; listed criteria are matched case-insensitively. Rules
// are evaluated in declaration order and the first matching rule decides.
type AccessRule struct {
	// Allow marks the rule as an allow rule; otherwise it denies.
	Allow bool

	// Actions restricts the rule to the listed action ids.
	Actions []string

	// Users restricts the rule to user classes or explicit user ids.
	// Recognized classes: "*" everyone, "?" guests, "@" authenticated.
	Users []string

	// Verbs restricts the rule to the listed HTTP methods.
	Verbs []string

	// IPs restricts the rule to client addresses; a trailing "*" makes a
	// prefix pattern ("10.0.*").
	IPs []string

	// Matcher is an optional custom predicate; a nil Matcher matches.
	Matcher func(c Context) bool

	// Message overrides the default denial message for deny rules.
	Message string
}

// matches reports whether the rule applies to this dispatch.
func (r AccessRule) matches(c Context, actionID string) bool {
	if len(r.Actions) > 0 && !containsFold(r.Actions, actionID) {
		return false
	}
	if len(r.Verbs) > 0 && !containsFold(r.Verbs, c.Request().Method) {
		return false
	}
	if !r.matchesUser(c) {
		return false
	}
	if !r.matchesIP(clientIP(c)) {
		return false
	}
	if r.Matcher != nil && !r.Matcher(c) {
		return false
	}
	return true
}

func (r AccessRule) matchesUser(c Context) bool {
	if len(r.Users) == 0 {
		return true
	}
	for _, u := range r.Users {
		switch u {
		case UsersAll:
			return true
		case UsersGuest:
			if !c.IsAuthenticated() {
				return true
			}
		case UsersAuthenticated:
			if c.IsAuthenticated() {
				return true
			}
		default:
			if strings.EqualFold(u, c.UserID()) {
				return true
			}
		}
	}
	return false
}

func (r AccessRule) matchesIP(ip string) bool {
	if len(r.IPs) == 0 {
		return true
	}
	for _, pattern := range r.IPs {
		if pattern == UsersAll || pattern == ip {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}

func clientIP(c Context) string {
	addr := c.Request().RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// AccessControlFilter enforces a controller's access rules. It is wired in
// as the built-in "accessControl" filter and evaluates rules in order: the
// first matching rule decides, a deny match (or a custom DenyAll policy)
// stops the chain with a 403, and no match allows the dispatch.
type AccessControlFilter struct {
	// Rules is the ordered policy, normally the controller's AccessRules().
	Rules []AccessRule

	// Message is the default denial message.
	Message string

	// DenyAll inverts the no-match default: when set, a dispatch no rule
	// matched is denied instead of allowed.
	DenyAll bool
}

// PreFilter evaluates the policy. Denial raises a 403 and prevents deeper
// filters and the action from running.
func (f *AccessControlFilter) PreFilter(chain *FilterChain, c Context) (bool, error) {
	actionID := chain.Action().ID()
	for _, rule := range f.Rules {
		if !rule.matches(c, actionID) {
			continue
		}
		if rule.Allow {
			return true, nil
		}
		return false, f.deny(chain, rule.Message)
	}
	if f.DenyAll {
		return false, f.deny(chain, "")
	}
	return true, nil
}

// PostFilter is a no-op; access control acts before the action only.
func (f *AccessControlFilter) PostFilter(chain *FilterChain, c Context) error {
	return nil
}

func (f *AccessControlFilter) deny(chain *FilterChain, message string) error {
	if message == "" {
		message = f.Message
	}
	if message == "" {
		message = chain.Controller().translate(
			"You are not authorized to perform this action.", nil)
	}
	return ErrForbidden(message, WithActionID(chain.Action().ID()))
}
