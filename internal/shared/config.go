package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"placepage/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	CupidBase       string
	CupidKey        string
	PartnersBase    string
	PartnersKey     string
	ProviderRPS     int
	ProviderTimeout time.Duration
	// CacheTTL bounds the shared Redis entries; ProviderCacheTTL the
	// in-process provider cache of one panel session (zero: no expiry).
	CacheTTL         time.Duration
	ProviderCacheTTL time.Duration

	NetworkPolicy string
	Currency      string
	Lang          string
	PanelMode     string
	Landscape     bool

	Workers     int
	ReviewCount int
	IngestIDs   []string
	IngestLangs []string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	seconds := func(k string, def int) time.Duration { return time.Duration(atoi(k, def)) * time.Second }

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/placepage?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		CupidBase:        env("CUPID_BASE_URL", "https://content-api.cupid.travel/v3.0"),
		CupidKey:         env("CUPID_API_KEY", ""),
		PartnersBase:     env("PARTNERS_BASE_URL", "http://localhost:8090"),
		PartnersKey:      env("PARTNERS_API_KEY", ""),
		ProviderRPS:      atoi("PROVIDER_RPS", 5),
		ProviderTimeout:  seconds("PROVIDER_TIMEOUT_SECONDS", 10),
		CacheTTL:         seconds("CACHE_TTL_SECONDS", 900),
		ProviderCacheTTL: seconds("PROVIDER_CACHE_TTL_SECONDS", 0),

		NetworkPolicy: env("NETWORK_POLICY", "always"),
		Currency:      strings.ToUpper(env("CURRENCY", "USD")),
		Lang:          env("PANEL_LANG", "en"),
		PanelMode:     env("PANEL_MODE", "bottom_sheet"),
		Landscape:     env("LANDSCAPE", "false") == "true",

		Workers:     atoi("INGEST_WORKERS", 8),
		ReviewCount: atoi("INGEST_REVIEW_COUNT", 100),
		IngestIDs:   list(env("INGEST_IDS", "")),
		IngestLangs: list(env("INGEST_LANGS", "en,fr,es")),
	}
	if c.CupidKey == "" {
		log.Warn().Msg("CUPID_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// list splits a comma separated value, dropping blanks.
func list(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Mode maps PANEL_MODE onto the panel layout; unknown values fall back to
// the bottom sheet.
func (c Config) Mode() domain.PanelMode {
	switch strings.ToLower(c.PanelMode) {
	case "docked":
		return domain.PanelMode{Docked: true}
	case "floating":
		return domain.PanelMode{Floating: true}
	}
	return domain.PanelMode{}
}
