package recommendation

import (
	"context"
	"time"

	"myGreenMenu/domain"
)

// ---- Repository interfaces ----

type CatalogRepository interface {
	ListAvailableItems(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error)
	// GetItem returns domain.ErrItemNotFound for unknown ids.
	GetItem(ctx context.Context, id uint64) (domain.MenuItem, error)
	// GetItems silently omits unknown ids.
	GetItems(ctx context.Context, ids []uint64) ([]domain.MenuItem, error)
}

type OrderHistoryRepository interface {
	// ListOrders returns the user's orders with lines; a zero since means all time.
	ListOrders(ctx context.Context, userID uint, since time.Time) ([]domain.Order, error)
	// AggregateItemQuantities sums line quantities per item for orders
	// created at or after since, ordered by total desc then item id asc.
	AggregateItemQuantities(ctx context.Context, since time.Time, limit int) ([]domain.ItemQuantity, error)
}

type WeatherProvider interface {
	CurrentWeather(ctx context.Context, location string) (*domain.WeatherReading, error)
}

type RecommendationRepository interface {
	Create(ctx context.Context, record *domain.RecommendationRecord) error
	// ListActive returns records with is_active and expires_at > now.
	ListActive(ctx context.Context, userID uint, now time.Time) ([]domain.RecommendationRecord, error)
	// Deactivate clears is_active on one of the user's records. Unknown ids
	// return domain.ErrRecordNotFound.
	Deactivate(ctx context.Context, userID uint, id string) error
}

// SavedCache fronts ListActive. A miss returns ok=false and a nil error.
//
// Every Invalidate bumps the user's version. SetSaved only writes while the
// version still equals the one read before listing, so a fill racing a Save
// or a deactivation is discarded instead of caching the older list.
type SavedCache interface {
	GetSaved(ctx context.Context, userID uint) (records []domain.RecommendationRecord, ok bool, err error)
	Version(ctx context.Context, userID uint) (int64, error)
	SetSaved(ctx context.Context, userID uint, version int64, records []domain.RecommendationRecord, ttl time.Duration) error
	Invalidate(ctx context.Context, userID uint) error
}

// ---- Usecase / Service ----

// Service holds collaborator handles only. Every call reads fresh data.
type Service struct {
	catalog     CatalogRepository
	orders      OrderHistoryRepository
	weather     WeatherProvider
	records     RecommendationRepository
	cache       SavedCache
	eligChecker EligibilityChecker
	cfg         Config
	now         func() time.Time
}

// NewService wires the engine. weather, cache and eligChecker may be nil.
func NewService(
	catalog CatalogRepository,
	orders OrderHistoryRepository,
	weather WeatherProvider,
	records RecommendationRepository,
	cache SavedCache,
	eligChecker EligibilityChecker,
	cfg Config,
) *Service {
	if eligChecker == nil {
		eligChecker = NoopEligibilityChecker{}
	}
	return &Service{
		catalog:     catalog,
		orders:      orders,
		weather:     weather,
		records:     records,
		cache:       cache,
		eligChecker: eligChecker,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
	}
}

func (s *Service) Config() Config {
	return s.cfg
}
