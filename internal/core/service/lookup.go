package service

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultFetchTimeout = 30 * time.Second

// EmitFunc delivers one outcome before the next identifier is looked up.
type EmitFunc func(ctx context.Context, outcome domain.LookupOutcome) error

type BatchLookupParams struct {
	Finder       port.CompanyFinder
	Cache        port.OutcomeCache
	Metrics      port.Metrics
	FetchTimeout time.Duration
}

type BatchLookup struct {
	finder       port.CompanyFinder
	cache        port.OutcomeCache
	metrics      port.Metrics
	fetchTimeout time.Duration
}

func NewBatchLookup(p BatchLookupParams) *BatchLookup {
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = DefaultFetchTimeout
	}

	return &BatchLookup{
		finder:       p.Finder,
		cache:        p.Cache,
		metrics:      p.Metrics,
		fetchTimeout: p.FetchTimeout,
	}
}

// LookupAll looks up every identifier of batch in turn and hands each outcome to emit.
// A failing identifier is reported as not found and never stops the batch. At most one
// session is opened per call and it is closed before LookupAll returns.
// The returned error is either a delivery error from emit or a context error.
func (b *BatchLookup) LookupAll(ctx context.Context, batch domain.IdentifierBatch, emit EmitFunc) error {
	l := log.With().
		Str("batchId", newBatchID()).
		Int("size", batch.Len()).
		Logger()

	l.Info().Msg("starting batch lookup")

	var session port.LookupSession
	var sessionErr error

	defer func() {
		if session == nil {
			return
		}
		if err := session.Close(); err != nil {
			l.Warn().Err(err).Msg("failed to close lookup session")
			return
		}
		l.Debug().Msg("closed lookup session")
	}()

	for _, id := range batch.IDs() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch lookup interrupted: %w", err)
		}

		start := time.Now()

		outcome, cached := b.fromCache(ctx, &l, id)
		if !cached {
			if session == nil && sessionErr == nil {
				session, sessionErr = b.finder.OpenSession(ctx)
				if sessionErr != nil {
					session = nil
					l.Err(sessionErr).Msg("failed to open lookup session")
				}
			}

			if sessionErr != nil {
				outcome = domain.NotFoundOutcome(id)
			} else {
				outcome = b.fetch(ctx, &l, session, id)
			}
		}

		if b.metrics != nil {
			b.metrics.ObserveLookup(outcome, cached, time.Since(start))
		}

		l.Debug().Str("identifier", id).Bool("found", outcome.Found).Bool("cached", cached).Msg("lookup done")

		if err := emit(ctx, outcome); err != nil {
			return fmt.Errorf("failed to deliver outcome for %s: %w", id, err)
		}
	}

	l.Info().Msg("finished batch lookup")

	return nil
}

func (b *BatchLookup) fetch(ctx context.Context, l *zerolog.Logger, session port.LookupSession,
	id string) (outcome domain.LookupOutcome) {
	defer func() {
		if r := recover(); r != nil {
			l.Error().Str("identifier", id).Interface("panic", r).Msg("lookup panicked")
			outcome = domain.NotFoundOutcome(id)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()

	company, err := session.FetchCompany(ctx, id)
	if err != nil {
		l.Warn().Err(err).Str("identifier", id).Msg("lookup failed")
		return domain.NotFoundOutcome(id)
	}

	if !company.Complete() {
		l.Warn().Str("identifier", id).Msg("incomplete company data")
		return domain.NotFoundOutcome(id)
	}

	if b.cache != nil {
		if err := b.cache.Set(ctx, id, company); err != nil {
			l.Warn().Err(err).Str("identifier", id).Msg("failed to cache outcome")
		}
	}

	return domain.FoundOutcome(id, company)
}

func (b *BatchLookup) fromCache(ctx context.Context, l *zerolog.Logger, id string) (domain.LookupOutcome, bool) {
	if b.cache == nil {
		return domain.LookupOutcome{}, false
	}

	company, ok, err := b.cache.Get(ctx, id)
	if err != nil {
		l.Warn().Err(err).Str("identifier", id).Msg("failed to read outcome cache")
		return domain.LookupOutcome{}, false
	}

	if !ok || !company.Complete() {
		return domain.LookupOutcome{}, false
	}

	return domain.FoundOutcome(id, company), true
}

func newBatchID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}

	return id.String()
}
