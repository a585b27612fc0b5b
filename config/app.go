package config

import (
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// SearchReindexSchedule is the cron spec for the full search reindex job.
	SearchReindexSchedule string
	// ShopAPIURL is where the shop:* commands send their requests.
	ShopAPIURL string
	// SearchDelay is the keystroke debounce used by keyword search.
	SearchDelay time.Duration

	Search SearchConfig
	Media  MediaConfig
	Events EventsConfig
}

type SearchConfig struct {
	Host  string
	Index string
}

type MediaConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	// MaxDimension > 0 downsizes uploads to fit a MaxDimension square and re-encodes them as WebP.
	MaxDimension int
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
	Queue    string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() *Config {
	once.Do(func() {
		AppConfig = &Config{
			AppName:               GetEnv("APP_NAME", "storefront"),
			Port:                  GetEnv("PORT", "8080"),
			Env:                   GetEnv("APP_ENV", "development"),
			Debug:                 GetEnvBool("DEBUG", false),
			SearchReindexSchedule: GetEnv("SEARCH_REINDEX_SCHEDULE", "@every 30m"),
			ShopAPIURL:            GetEnv("SHOP_API_URL", "http://localhost:8080"),
			SearchDelay:           GetEnvDuration("SEARCH_DELAY", time.Second),
			Search: SearchConfig{
				Host:  GetEnv("ELASTICSEARCH_HOST", ""),
				Index: GetEnv("ELASTICSEARCH_INDEX", "storefront_products"),
			},
			Media: MediaConfig{
				CloudName:    GetEnv("CLOUDINARY_CLOUD_NAME", ""),
				APIKey:       GetEnv("CLOUDINARY_API_KEY", ""),
				APISecret:    GetEnv("CLOUDINARY_API_SECRET", ""),
				Folder:       GetEnv("CLOUDINARY_FOLDER", "storefront"),
				MaxDimension: GetEnvInt("MEDIA_MAX_DIMENSION", 0),
			},
			Events: EventsConfig{
				AMQPURL:  GetEnv("AMQP_URL", ""),
				Exchange: GetEnv("AMQP_EXCHANGE", "storefront.events"),
				Queue:    GetEnv("AMQP_QUEUE", "storefront.search-indexer"),
			},
		}
	})
	return AppConfig
}
