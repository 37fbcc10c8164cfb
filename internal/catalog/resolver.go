package catalog

import (
	"context"
	"errors"

	"appwatch/pkg/logx"
)

// ErrNotFound means every tried storefront answered with zero results.
// Callers treat this as a soft per-item failure: skip the app for this run
// and leave its cache entry alone.
var ErrNotFound = errors.New("app not found in any region")

// Resolver walks the storefront priority list until one returns the app.
type Resolver struct {
	client   *Client
	regions  []string
	tryLimit int
	log      logx.Logger
}

func NewResolver(client *Client, tryLimit int, log logx.Logger) *Resolver {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Resolver{
		client:   client,
		regions:  Regions,
		tryLimit: ClampTryLimit(tryLimit),
		log:      log,
	}
}

// Resolve returns the first storefront hit for appID, with the matched
// region code attached. Request-level faults and non-200 answers are logged
// and the next region is tried; exhausting the list yields ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, appID string) (*LookupResult, error) {
	for _, region := range r.regions[:r.tryLimit] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, found, err := r.client.Lookup(ctx, appID, region)
		if err != nil {
			r.log.Warn("lookup failed, trying next region",
				logx.String("app_id", appID),
				logx.String("region", region),
				logx.Err(err))
			continue
		}
		if !found {
			r.log.Debug("no result in region",
				logx.String("app_id", appID),
				logx.String("region", region))
			continue
		}

		r.log.Info("app resolved",
			logx.String("app_id", appID),
			logx.String("region", region),
			logx.String("name", result.Name),
			logx.String("version", result.Version))
		return result, nil
	}
	return nil, ErrNotFound
}
