package port

import (
	"context"
	"innbot/internal/core/domain"
	"time"
)

// CompanyFinder opens scraping sessions against the business registry.
type CompanyFinder interface {
	OpenSession(ctx context.Context) (LookupSession, error)
}

// LookupSession is an exclusively owned scraping session. It must not be shared between batches.
type LookupSession interface {
	// FetchCompany loads the registry page for identifier and extracts the company fields.
	FetchCompany(ctx context.Context, identifier string) (domain.Company, error)
	// Close releases the session. It is safe to call more than once.
	Close() error
}

type OutcomeCache interface {
	Get(ctx context.Context, identifier string) (domain.Company, bool, error)
	Set(ctx context.Context, identifier string, company domain.Company) error
}

type Metrics interface {
	ObserveLookup(outcome domain.LookupOutcome, cached bool, duration time.Duration)
	CountCommand(command string)
}
