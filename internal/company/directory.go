package company

import (
	"context"
	"log/slog"

	"github.com/sevenofnine/meeting-note-sync/internal/state"
)

// AccountCache is the persistence layer for resolved accounts.
type AccountCache interface {
	Account(domain string) (state.Account, bool, error)
	PutAccount(a state.Account) error
}

// Directory resolves company names for root domains. Results are cached
// in the local state store so each domain hits the lookup API at most
// once. Cached accounts can be edited by hand: blacklisting a domain
// suppresses the account link, and a corrected name sticks.
type Directory struct {
	cache       AccountCache
	suggester   Suggester
	labelPrefix string
	log         *slog.Logger
}

func NewDirectory(cache AccountCache, suggester Suggester, labelPrefix string, log *slog.Logger) *Directory {
	if log == nil {
		log = slog.Default()
	}
	return &Directory{cache: cache, suggester: suggester, labelPrefix: labelPrefix, log: log}
}

// CompanyName returns the display name for a root domain, and false for
// blacklisted domains. Lookup failures degrade to the domain itself so
// a sync run never stalls on the company API.
func (d *Directory) CompanyName(ctx context.Context, domain string) (string, bool) {
	cached, ok, err := d.cache.Account(domain)
	if err != nil {
		d.log.Warn("account cache read failed", "domain", domain, "error", err)
	} else if ok {
		if cached.Blacklisted {
			return "", false
		}
		return cached.Name, true
	}

	account := state.Account{Domain: domain, Name: d.resolve(ctx, domain)}
	account.Label = d.labelPrefix + account.Name
	if err := d.cache.PutAccount(account); err != nil {
		d.log.Warn("account cache write failed", "domain", domain, "error", err)
	}
	return account.Name, true
}

func (d *Directory) resolve(ctx context.Context, domain string) string {
	if d.suggester == nil {
		return domain
	}
	suggestions, err := d.suggester.Suggest(ctx, domain)
	if err != nil {
		d.log.Warn("company lookup failed", "domain", domain, "error", err)
		return domain
	}
	for _, s := range suggestions {
		if s.Domain == domain && s.Name != "" {
			return s.Name
		}
	}
	if len(suggestions) > 0 && suggestions[0].Name != "" {
		return suggestions[0].Name
	}
	return domain
}
