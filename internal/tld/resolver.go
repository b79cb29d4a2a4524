package tld

import "strings"

// Resolver computes organization-identifying root domains for email
// addresses and classifies them as internal or external. RootDomain is
// a pure function of the address and the loaded rule table, so results
// are memoized per domain for the life of the resolver.
type Resolver struct {
	rules     *RuleSet
	blocklist map[string]struct{}
	cache     map[string]string
}

func NewResolver(rules *RuleSet, blocklist []string) *Resolver {
	block := make(map[string]struct{}, len(blocklist))
	for _, d := range blocklist {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			block[d] = struct{}{}
		}
	}
	return &Resolver{rules: rules, blocklist: block, cache: make(map[string]string)}
}

// Domain returns the lower-cased bare domain of an address.
func Domain(address string) string {
	_, domain, ok := strings.Cut(address, "@")
	if !ok {
		return strings.ToLower(strings.TrimSpace(address))
	}
	return strings.ToLower(strings.TrimSpace(domain))
}

// RootDomain strips the effective TLD from the address's domain and
// returns the registered domain one label above it. The longest
// matching suffix wins; with no matching rule the last two labels are
// kept (level 1 default).
func (r *Resolver) RootDomain(address string) string {
	domain := Domain(address)
	if domain == "" {
		return ""
	}
	if root, ok := r.cache[domain]; ok {
		return root
	}

	parts := strings.Split(domain, ".")
	level := -1
	stack := ""
	for i := len(parts) - 1; i >= 0; i-- {
		if stack == "" {
			stack = parts[i]
		} else {
			stack = parts[i] + "." + stack
		}
		if l, ok := r.rules.Lookup(stack); ok {
			level = l
		}
	}
	if level < 0 {
		level = 1
	}

	root := domain
	if len(parts) > level+1 {
		root = strings.Join(parts[len(parts)-level-1:], ".")
	}
	r.cache[domain] = root
	return root
}

// External reports whether the address belongs to an outside
// organization. The comparison is against the configured full domain,
// not the computed root: the blocklist names registered domains as the
// operator wrote them.
func (r *Resolver) External(address string) bool {
	_, blocked := r.blocklist[Domain(address)]
	return !blocked
}
