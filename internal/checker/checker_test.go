package checker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appwatch/internal/cache"
	"appwatch/internal/catalog"
	"appwatch/internal/notify"
	"appwatch/pkg/logx"
)

type fakeResolver struct {
	results map[string]*catalog.LookupResult
	errs    map[string]error
}

func (f *fakeResolver) Resolve(ctx context.Context, appID string) (*catalog.LookupResult, error) {
	if err, ok := f.errs[appID]; ok {
		return nil, err
	}
	if r, ok := f.results[appID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, catalog.ErrNotFound
}

type memStore struct {
	initial map[string]cache.Record
	saved   map[string]cache.Record
	saveErr error
	saves   int
}

func (m *memStore) Load() map[string]cache.Record {
	out := map[string]cache.Record{}
	for k, v := range m.initial {
		out[k] = v
	}
	return out
}

func (m *memStore) Save(snapshot map[string]cache.Record) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = snapshot
	return nil
}

type fakeSender struct {
	msgs []notify.Message
}

func (f *fakeSender) Dispatch(ctx context.Context, msg notify.Message) bool {
	f.msgs = append(f.msgs, msg)
	return true
}

func lookup(name, version, region string) *catalog.LookupResult {
	return &catalog.LookupResult{
		Name:         name,
		Version:      version,
		Region:       region,
		ReleaseNotes: "notes",
		ReleaseDate:  "2026-01-10T09:00:00Z",
		StoreURL:     "https://apps.example/" + name,
		IconURL:      "https://img.example/" + name + ".png",
	}
}

func newChecker(r Resolver, s Store, snd Sender, ids []string) *Checker {
	c := New(r, s, snd, ids, logx.Nop())
	c.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return c
}

func TestRunFirstObservation(t *testing.T) {
	t.Parallel()
	// Scenario: empty cache, one configured app.
	resolver := &fakeResolver{results: map[string]*catalog.LookupResult{
		"100": lookup("NewApp", "2.0", "us"),
	}}
	store := &memStore{}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"100"}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	rec := store.saved["100"]
	assert.Equal(t, "2.0", rec.Version)
	assert.Equal(t, "us", rec.Region)
	assert.Equal(t, "NewApp", rec.AppName)

	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0].Title, "1 apps")
	assert.Contains(t, sender.msgs[0].Body, "NewApp 2.0")
}

func TestRunUpdateDetected(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{results: map[string]*catalog.LookupResult{
		"123": lookup("App", "1.1", "cn"),
	}}
	store := &memStore{initial: map[string]cache.Record{
		"123": {Version: "1.0", AppName: "App", Region: "cn"},
	}}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"123"}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.1", store.saved["123"].Version)

	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0].Title, "App")
	assert.Contains(t, sender.msgs[0].Body, "(1.0→1.1)")
}

func TestRunUnchangedStillRefreshesEntry(t *testing.T) {
	t.Parallel()
	old := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	resolver := &fakeResolver{results: map[string]*catalog.LookupResult{
		"123": lookup("Renamed App", "1.0", "us"),
	}}
	store := &memStore{initial: map[string]cache.Record{
		"123": {Version: "1.0", AppName: "Old Name", Region: "cn", UpdatedAt: old},
	}}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"123"}).Run(context.Background())
	require.NoError(t, err)

	// No notification, but the denormalized fields moved with upstream.
	assert.Empty(t, sender.msgs)
	rec := store.saved["123"]
	assert.Equal(t, "1.0", rec.Version)
	assert.Equal(t, "Renamed App", rec.AppName)
	assert.Equal(t, "us", rec.Region)
	assert.True(t, rec.UpdatedAt.After(old))
}

func TestRunLookupMissKeepsOldEntry(t *testing.T) {
	t.Parallel()
	// Scenario: one id fails in every region, another succeeds. The failed
	// id keeps its old entry verbatim and the cache is still saved.
	stale := cache.Record{Version: "3.0", AppName: "Gone", Region: "jp", UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	resolver := &fakeResolver{
		results: map[string]*catalog.LookupResult{"200": lookup("Alive", "5.0", "us")},
	}
	store := &memStore{initial: map[string]cache.Record{"999": stale}}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"999", "200"}).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, store.saves)
	assert.Equal(t, stale, store.saved["999"])
	assert.Equal(t, "5.0", store.saved["200"].Version)
}

func TestRunSeparatesNewAndUpdatedNotifications(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{results: map[string]*catalog.LookupResult{
		"1": lookup("Fresh", "1.0", "us"),
		"2": lookup("Known", "2.1", "cn"),
	}}
	store := &memStore{initial: map[string]cache.Record{
		"2": {Version: "2.0"},
	}}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"1", "2"}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.msgs, 2)
	assert.Contains(t, sender.msgs[0].Body, "Fresh")
	assert.Contains(t, sender.msgs[1].Body, "(2.0→2.1)")
}

func TestRunRecordOrderFollowsInput(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{results: map[string]*catalog.LookupResult{
		"a": lookup("Alpha", "1.1", "us"),
		"b": lookup("Beta", "2.1", "us"),
		"c": lookup("Gamma", "3.1", "us"),
	}}
	store := &memStore{initial: map[string]cache.Record{
		"a": {Version: "1.0"}, "b": {Version: "2.0"}, "c": {Version: "3.0"},
	}}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"c", "a", "b"}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.msgs, 1)
	body := sender.msgs[0].Body
	assert.Less(t, strings.Index(body, "Gamma"), strings.Index(body, "Alpha"))
	assert.Less(t, strings.Index(body, "Alpha"), strings.Index(body, "Beta"))
}

func TestRunResolverFaultIsSoft(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{
		results: map[string]*catalog.LookupResult{"2": lookup("Ok", "1.0", "us")},
		errs:    map[string]error{"1": errors.New("connection reset")},
	}
	store := &memStore{}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"1", "2"}).Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, store.saved, "1")
	assert.Contains(t, store.saved, "2")
}

func TestRunNoAppIDs(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	err := newChecker(&fakeResolver{}, store, &fakeSender{}, nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoAppIDs)
	assert.Zero(t, store.saves)
}

func TestRunSaveFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{results: map[string]*catalog.LookupResult{
		"1": lookup("App", "1.0", "us"),
	}}
	store := &memStore{saveErr: errors.New("disk full")}
	sender := &fakeSender{}

	err := newChecker(resolver, store, sender, []string{"1"}).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, sender.msgs, 1)
}
