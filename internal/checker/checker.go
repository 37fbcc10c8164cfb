package checker

import (
	"context"
	"errors"
	"time"

	"appwatch/internal/cache"
	"appwatch/internal/catalog"
	"appwatch/internal/notify"
	"appwatch/pkg/logx"
)

// ErrNoAppIDs aborts a run before any cache mutation. It is the only
// configuration problem that stops the pipeline outright.
var ErrNoAppIDs = errors.New("no app ids configured")

// Resolver finds an app in the catalog, trying storefronts in priority
// order. catalog.ErrNotFound is a soft miss.
type Resolver interface {
	Resolve(ctx context.Context, appID string) (*catalog.LookupResult, error)
}

// Store persists the version cache between runs.
type Store interface {
	Load() map[string]cache.Record
	Save(map[string]cache.Record) error
}

// Sender delivers one formatted notification, reporting soft success.
type Sender interface {
	Dispatch(ctx context.Context, msg notify.Message) bool
}

// Checker runs the fetch → diff → notify → persist pipeline once.
type Checker struct {
	resolver Resolver
	store    Store
	sender   Sender
	appIDs   []string

	now func() time.Time
	log logx.Logger
}

func New(resolver Resolver, store Store, sender Sender, appIDs []string, log logx.Logger) *Checker {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Checker{
		resolver: resolver,
		store:    store,
		sender:   sender,
		appIDs:   appIDs,
		now:      time.Now,
		log:      log,
	}
}

// Run performs one sequential pass over the configured app ids.
//
// Per-item failures (region miss, lookup fault) skip that id and leave its
// cache entry untouched. Every successful lookup rewrites its cache entry,
// changed or not, so denormalized fields (name/icon/region/timestamp) never
// go stale. Notification failures are soft; the cache is saved regardless.
func (c *Checker) Run(ctx context.Context) error {
	if len(c.appIDs) == 0 {
		return ErrNoAppIDs
	}

	c.log.Info("update check started", logx.Int("apps", len(c.appIDs)))

	snapshot := c.store.Load()

	var newApps []notify.NewApp
	var updatedApps []notify.UpdatedApp

	for i, appID := range c.appIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.log.Info("checking app",
			logx.String("app_id", appID),
			logx.Int("index", i+1),
			logx.Int("total", len(c.appIDs)))

		result, err := c.resolver.Resolve(ctx, appID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.log.Warn("app not found in any region, skipping", logx.String("app_id", appID))
			} else {
				c.log.Warn("lookup failed, skipping", logx.String("app_id", appID), logx.Err(err))
			}
			continue
		}

		detail := notify.AppDetail{
			ID:       appID,
			Name:     result.Name,
			Version:  result.Version,
			Region:   catalog.RegionName(result.Region),
			IconURL:  result.IconURL,
			Notes:    result.ReleaseNotes,
			Release:  notify.FormatReleaseTime(result.ReleaseDate),
			StoreURL: result.StoreURL,
		}

		prev, known := snapshot[appID]
		switch {
		case !known:
			c.log.Info("new app watched",
				logx.String("app_id", appID),
				logx.String("name", result.Name),
				logx.String("version", result.Version))
			newApps = append(newApps, notify.NewApp{AppDetail: detail})
		case prev.Version != result.Version:
			// Exact string inequality: "1.0" vs "1.0.0" counts as an
			// update. No semantic version parsing here.
			c.log.Info("update detected",
				logx.String("app_id", appID),
				logx.String("name", result.Name),
				logx.String("old_version", prev.Version),
				logx.String("new_version", result.Version))
			updatedApps = append(updatedApps, notify.UpdatedApp{
				AppDetail:  detail,
				OldVersion: prev.Version,
			})
		default:
			c.log.Info("up to date",
				logx.String("app_id", appID),
				logx.String("version", result.Version))
		}

		// Refresh the entry whatever the classification; name, icon, and
		// region can drift upstream without a version bump.
		snapshot[appID] = cache.Record{
			Version:   result.Version,
			AppName:   result.Name,
			Region:    result.Region,
			IconURL:   result.IconURL,
			UpdatedAt: c.now(),
		}
	}

	if msg, ok := notify.FormatNewApps(newApps); ok {
		c.sender.Dispatch(ctx, msg)
	}
	if msg, ok := notify.FormatUpdatedApps(updatedApps); ok {
		c.sender.Dispatch(ctx, msg)
	}
	if len(newApps) == 0 && len(updatedApps) == 0 {
		c.log.Info("all apps up to date, nothing to push")
	}

	if err := c.store.Save(snapshot); err != nil {
		// The previous snapshot stays valid on disk; diffs may re-fire
		// next run, which is acceptable.
		c.log.Error("cache save failed", logx.Err(err))
	}

	c.log.Info("update check finished",
		logx.Int("new", len(newApps)),
		logx.Int("updated", len(updatedApps)))
	return nil
}
