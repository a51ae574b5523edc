package recommendation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"myGreenMenu/domain"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// ---- catalog ----

type fakeCatalog struct {
	items map[uint64]domain.MenuItem
	err   error
}

func newFakeCatalog(items ...domain.MenuItem) *fakeCatalog {
	c := &fakeCatalog{items: make(map[uint64]domain.MenuItem)}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *fakeCatalog) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *fakeCatalog) ListAvailableItems(_ context.Context, f domain.CatalogFilter) ([]domain.MenuItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	cats := make(map[string]struct{}, len(f.Categories))
	for _, cat := range f.Categories {
		cats[strings.ToLower(cat)] = struct{}{}
	}
	excl := make(map[uint64]struct{}, len(f.ExcludeIDs))
	for _, id := range f.ExcludeIDs {
		excl[id] = struct{}{}
	}

	var out []domain.MenuItem
	for _, id := range c.sortedIDs() {
		it := c.items[id]
		if !it.IsAvailable {
			continue
		}
		if _, skip := excl[id]; skip {
			continue
		}
		if len(cats) > 0 {
			if _, ok := cats[strings.ToLower(it.Category)]; !ok {
				continue
			}
		}
		out = append(out, it)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetItem(_ context.Context, id uint64) (domain.MenuItem, error) {
	if c.err != nil {
		return domain.MenuItem{}, c.err
	}
	it, ok := c.items[id]
	if !ok {
		return domain.MenuItem{}, domain.ErrItemNotFound
	}
	return it, nil
}

func (c *fakeCatalog) GetItems(_ context.Context, ids []uint64) ([]domain.MenuItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []domain.MenuItem
	for _, id := range ids {
		if it, ok := c.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// ---- orders ----

type fakeOrders struct {
	orders []domain.Order
	err    error
}

func (o *fakeOrders) ListOrders(_ context.Context, userID uint, since time.Time) ([]domain.Order, error) {
	if o.err != nil {
		return nil, o.err
	}
	var out []domain.Order
	for _, ord := range o.orders {
		if ord.UserID != userID {
			continue
		}
		if !since.IsZero() && ord.CreatedAt.Before(since) {
			continue
		}
		out = append(out, ord)
	}
	return out, nil
}

func (o *fakeOrders) AggregateItemQuantities(_ context.Context, since time.Time, limit int) ([]domain.ItemQuantity, error) {
	if o.err != nil {
		return nil, o.err
	}
	totals := make(map[uint64]int64)
	for _, ord := range o.orders {
		if ord.CreatedAt.Before(since) {
			continue
		}
		for _, l := range ord.Lines {
			totals[l.MenuItemID] += int64(l.Quantity)
		}
	}
	out := make([]domain.ItemQuantity, 0, len(totals))
	for id, total := range totals {
		out = append(out, domain.ItemQuantity{MenuItemID: id, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].MenuItemID < out[j].MenuItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func order(userID uint, at time.Time, lines ...domain.OrderLine) domain.Order {
	return domain.Order{UserID: userID, CreatedAt: at, Lines: lines}
}

func line(itemID uint64, qty int) domain.OrderLine {
	return domain.OrderLine{MenuItemID: itemID, Quantity: qty}
}

// ---- weather ----

type fakeWeather struct {
	reading *domain.WeatherReading
	err     error
	calls   int
	mu      sync.Mutex
}

func (w *fakeWeather) CurrentWeather(_ context.Context, location string) (*domain.WeatherReading, error) {
	w.mu.Lock()
	w.calls++
	w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	if w.reading == nil {
		return nil, nil
	}
	r := *w.reading
	r.Location = location
	return &r, nil
}

// ---- records ----

type fakeRecords struct {
	mu      sync.Mutex
	rows    []domain.RecommendationRecord
	err     error
	listed  int
	created int

	// afterList runs once, after ListActive has read its rows
	afterList func()
}

func (r *fakeRecords) Create(_ context.Context, rec *domain.RecommendationRecord) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *rec)
	r.created++
	return nil
}

func (r *fakeRecords) ListActive(_ context.Context, userID uint, now time.Time) ([]domain.RecommendationRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	r.listed++
	var out []domain.RecommendationRecord
	for _, rec := range r.rows {
		if rec.UserID == userID && rec.Retrievable(now) {
			out = append(out, rec)
		}
	}
	hook := r.afterList
	r.afterList = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *fakeRecords) Deactivate(_ context.Context, userID uint, id string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			r.rows[i].IsActive = false
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

// deactivateAll flips is_active behind the service's back.
func (r *fakeRecords) deactivateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		r.rows[i].IsActive = false
	}
}

// expire moves every stored record's expiry into the past.
func (r *fakeRecords) expire(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		r.rows[i].ExpiresAt = at
	}
}

// ---- saved cache ----

type fakeCache struct {
	mu       sync.Mutex
	entries  map[uint][]domain.RecommendationRecord
	versions map[uint]int64
	getErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:  make(map[uint][]domain.RecommendationRecord),
		versions: make(map[uint]int64),
	}
}

func (c *fakeCache) GetSaved(_ context.Context, userID uint) ([]domain.RecommendationRecord, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, ok := c.entries[userID]
	return recs, ok, nil
}

func (c *fakeCache) Version(_ context.Context, userID uint) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[userID], nil
}

func (c *fakeCache) SetSaved(_ context.Context, userID uint, version int64, records []domain.RecommendationRecord, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[userID] != version {
		return nil
	}
	c.entries[userID] = append([]domain.RecommendationRecord(nil), records...)
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[userID]++
	delete(c.entries, userID)
	return nil
}

// ---- preferences ----

type fakePrefs struct {
	prefs map[uint]domain.UserPreferences
	err   error
}

func (p *fakePrefs) Get(_ context.Context, userID uint) (domain.UserPreferences, error) {
	if p.err != nil {
		return domain.UserPreferences{}, p.err
	}
	if pr, ok := p.prefs[userID]; ok {
		return pr, nil
	}
	return domain.UserPreferences{UserID: userID}, nil
}

var errBoom = errors.New("boom")

type fixture struct {
	catalog *fakeCatalog
	orders  *fakeOrders
	weather *fakeWeather
	records *fakeRecords
	cache   *fakeCache
	svc     *Service
}

func newFixture(cfg Config, items ...domain.MenuItem) *fixture {
	f := &fixture{
		catalog: newFakeCatalog(items...),
		orders:  &fakeOrders{},
		weather: &fakeWeather{},
		records: &fakeRecords{},
		cache:   newFakeCache(),
	}
	f.svc = NewService(f.catalog, f.orders, f.weather, f.records, f.cache, nil, cfg)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func menuItem(id uint64, name, category string, price float64) domain.MenuItem {
	return domain.MenuItem{ID: id, Name: name, Category: category, Price: price, IsAvailable: true}
}
