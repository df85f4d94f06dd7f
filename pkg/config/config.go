package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every configuration problem reported by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Default configuration values
const (
	DefaultDBPort                = 5432
	DefaultSSLMode               = "disable"
	DefaultHTTPAddr              = ":8080"
	DefaultSessionTTL            = 24 * time.Hour
	DefaultCatalogCacheTTL       = 5 * time.Minute
	DefaultCatalogRefresh        = time.Minute
	DefaultFreeShippingThreshold = 300.0
	DefaultStorageDir            = "./uploads"

	StorageDisk = "disk"
	StorageS3   = "s3"
)

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN renders the lib/pq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StorageConfig selects where uploaded product images are kept.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // "disk" or "s3"
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	PublicURL string `yaml:"public_url"`
}

// ShopConfig holds storefront business settings.
type ShopConfig struct {
	FreeShippingThreshold float64       `yaml:"free_shipping_threshold"`
	CatalogCacheTTL       time.Duration `yaml:"catalog_cache_ttl"`
	CatalogRefresh        time.Duration `yaml:"catalog_refresh"` // server-side catalog reload interval
	SessionTTL            time.Duration `yaml:"session_ttl"`
}

// Config is the complete service configuration.
type Config struct {
	AppEnv   string         `yaml:"app_env"`
	HTTPAddr string         `yaml:"http_addr"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Shop     ShopConfig     `yaml:"shop"`
}

// New returns a Config holding only defaults.
func New() *Config {
	return &Config{
		AppEnv:   "development",
		HTTPAddr: DefaultHTTPAddr,
		Database: DatabaseConfig{Port: DefaultDBPort, SSLMode: DefaultSSLMode},
		Storage:  StorageConfig{Backend: StorageDisk, Dir: DefaultStorageDir},
		Shop: ShopConfig{
			FreeShippingThreshold: DefaultFreeShippingThreshold,
			CatalogCacheTTL:       DefaultCatalogCacheTTL,
			CatalogRefresh:        DefaultCatalogRefresh,
			SessionTTL:            DefaultSessionTTL,
		},
	}
}

// FromEnv builds the configuration from environment variables, then applies
// the YAML file named by STOREFRONT_CONFIG when set.
func FromEnv() (*Config, error) {
	c := New()
	c.AppEnv = envString("APP_ENV", c.AppEnv)
	c.HTTPAddr = envString("HTTP_ADDR", c.HTTPAddr)

	c.Database.Host = os.Getenv("DB_HOST")
	c.Database.User = os.Getenv("DB_USER")
	c.Database.Password = os.Getenv("DB_PASSWORD")
	c.Database.Name = os.Getenv("DB_NAME")
	c.Database.SSLMode = envString("DB_SSLMODE", c.Database.SSLMode)

	c.Redis.Addr = os.Getenv("REDIS_ADDR")
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")

	c.Storage.Backend = envString("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Dir = envString("STORAGE_DIR", c.Storage.Dir)
	c.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	c.Storage.PublicURL = os.Getenv("STORAGE_PUBLIC_URL")

	var err error
	if c.Database.Port, err = envInt("DB_PORT", c.Database.Port); err != nil {
		return nil, err
	}
	if c.Redis.DB, err = envInt("REDIS_DB", c.Redis.DB); err != nil {
		return nil, err
	}
	if c.Shop.SessionTTL, err = envDuration("SESSION_TTL", c.Shop.SessionTTL); err != nil {
		return nil, err
	}
	if c.Shop.CatalogCacheTTL, err = envDuration("CATALOG_CACHE_TTL", c.Shop.CatalogCacheTTL); err != nil {
		return nil, err
	}
	if c.Shop.CatalogRefresh, err = envDuration("CATALOG_REFRESH_INTERVAL", c.Shop.CatalogRefresh); err != nil {
		return nil, err
	}
	if v := os.Getenv("FREE_SHIPPING_THRESHOLD"); v != "" {
		if c.Shop.FreeShippingThreshold, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("FREE_SHIPPING_THRESHOLD=%q: %w", v, ErrInvalidConfig)
		}
	}

	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile overlays the non-zero values of a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing YAML config: %w", err)
	}

	c.merge(&loaded)
	return nil
}

func (c *Config) merge(o *Config) {
	setString(&c.AppEnv, o.AppEnv)
	setString(&c.HTTPAddr, o.HTTPAddr)

	setString(&c.Database.Host, o.Database.Host)
	setString(&c.Database.User, o.Database.User)
	setString(&c.Database.Password, o.Database.Password)
	setString(&c.Database.Name, o.Database.Name)
	setString(&c.Database.SSLMode, o.Database.SSLMode)
	if o.Database.Port != 0 {
		c.Database.Port = o.Database.Port
	}

	setString(&c.Redis.Addr, o.Redis.Addr)
	setString(&c.Redis.Password, o.Redis.Password)
	if o.Redis.DB != 0 {
		c.Redis.DB = o.Redis.DB
	}

	setString(&c.Storage.Backend, o.Storage.Backend)
	setString(&c.Storage.Dir, o.Storage.Dir)
	setString(&c.Storage.Bucket, o.Storage.Bucket)
	setString(&c.Storage.PublicURL, o.Storage.PublicURL)

	if o.Shop.FreeShippingThreshold != 0 {
		c.Shop.FreeShippingThreshold = o.Shop.FreeShippingThreshold
	}
	if o.Shop.CatalogCacheTTL != 0 {
		c.Shop.CatalogCacheTTL = o.Shop.CatalogCacheTTL
	}
	if o.Shop.CatalogRefresh != 0 {
		c.Shop.CatalogRefresh = o.Shop.CatalogRefresh
	}
	if o.Shop.SessionTTL != 0 {
		c.Shop.SessionTTL = o.Shop.SessionTTL
	}
}

// Validate checks that every setting needed to start the service is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Redis.Addr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %v: %w", missing, ErrInvalidConfig)
	}

	switch c.Storage.Backend {
	case StorageDisk:
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the s3 backend: %w", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown storage backend %q: %w", c.Storage.Backend, ErrInvalidConfig)
	}

	if c.Shop.FreeShippingThreshold < 0 {
		return fmt.Errorf("free shipping threshold must not be negative: %w", ErrInvalidConfig)
	}
	return nil
}

// IsLocal reports whether the service runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.AppEnv == "local"
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalidConfig)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalidConfig)
	}
	return d, nil
}
