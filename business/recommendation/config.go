package recommendation

import "time"

type Config struct {
	DefaultLimit int
	MaxLimit     int

	// personalized: candidates at or below this cosine are noise
	MinSimilarity float64

	// weather buckets, degrees in the provider's units
	ColdBelow float64
	HotAbove  float64

	// diversity heuristics per order line, grams
	VegetableFiberAbove float64
	ProteinAbove        float64
	CarbAbove           float64
	MinVegetableLines   int
	MinProteinLines     int

	DiversityWindow time.Duration
	TrendingWindow  time.Duration

	// fixed per-signal scores
	WeatherScore   float64
	DiversityScore float64
	TrendingScore  float64

	RecordTTL     time.Duration
	SavedCacheTTL time.Duration

	// false keeps the priority-first insertion order of the merged slate
	SortFinalByScore bool
}

const (
	defaultLimit               = 20
	defaultMaxLimit            = 100
	defaultMinSimilarity       = 0.3
	defaultColdBelow           = 15.0
	defaultHotAbove            = 25.0
	defaultVegetableFiberAbove = 2.0
	defaultProteinAbove        = 10.0
	defaultCarbAbove           = 20.0
	defaultMinVegetableLines   = 3
	defaultMinProteinLines     = 2
	defaultWindow              = 7 * 24 * time.Hour
	defaultWeatherScore        = 0.8
	defaultDiversityScore      = 0.9
	defaultTrendingScore       = 0.7
	defaultRecordTTL           = 24 * time.Hour
	defaultSavedCacheTTL       = time.Minute
)

func DefaultConfig() Config {
	return Config{
		DefaultLimit:  defaultLimit,
		MaxLimit:      defaultMaxLimit,
		MinSimilarity: defaultMinSimilarity,

		ColdBelow: defaultColdBelow,
		HotAbove:  defaultHotAbove,

		VegetableFiberAbove: defaultVegetableFiberAbove,
		ProteinAbove:        defaultProteinAbove,
		CarbAbove:           defaultCarbAbove,
		MinVegetableLines:   defaultMinVegetableLines,
		MinProteinLines:     defaultMinProteinLines,

		DiversityWindow: defaultWindow,
		TrendingWindow:  defaultWindow,

		WeatherScore:   defaultWeatherScore,
		DiversityScore: defaultDiversityScore,
		TrendingScore:  defaultTrendingScore,

		RecordTTL:     defaultRecordTTL,
		SavedCacheTTL: defaultSavedCacheTTL,
	}
}

// withDefaults fills zero-valued fields so a partially populated Config
// (e.g. built from env) still behaves.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.MaxLimit < c.DefaultLimit {
		c.MaxLimit = max(d.MaxLimit, c.DefaultLimit)
	}
	if c.MinSimilarity <= 0 {
		c.MinSimilarity = d.MinSimilarity
	}
	if c.ColdBelow == 0 && c.HotAbove == 0 {
		c.ColdBelow = d.ColdBelow
		c.HotAbove = d.HotAbove
	}
	if c.VegetableFiberAbove == 0 {
		c.VegetableFiberAbove = d.VegetableFiberAbove
	}
	if c.ProteinAbove == 0 {
		c.ProteinAbove = d.ProteinAbove
	}
	if c.CarbAbove == 0 {
		c.CarbAbove = d.CarbAbove
	}
	if c.MinVegetableLines == 0 {
		c.MinVegetableLines = d.MinVegetableLines
	}
	if c.MinProteinLines == 0 {
		c.MinProteinLines = d.MinProteinLines
	}
	if c.DiversityWindow <= 0 {
		c.DiversityWindow = d.DiversityWindow
	}
	if c.TrendingWindow <= 0 {
		c.TrendingWindow = d.TrendingWindow
	}
	if c.WeatherScore == 0 {
		c.WeatherScore = d.WeatherScore
	}
	if c.DiversityScore == 0 {
		c.DiversityScore = d.DiversityScore
	}
	if c.TrendingScore == 0 {
		c.TrendingScore = d.TrendingScore
	}
	if c.RecordTTL <= 0 {
		c.RecordTTL = d.RecordTTL
	}
	if c.SavedCacheTTL <= 0 {
		c.SavedCacheTTL = d.SavedCacheTTL
	}
	return c
}

// clampLimit applies the default when limit is unset and caps it at MaxLimit.
func (c Config) clampLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
