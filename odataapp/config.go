package odataapp

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataservices/cache"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/spf13/viper"
)

type AppConfig struct {
	// App
	AppHTTPHost           string        `env:"APP_HTTP_HOST"`
	AppHTTPPort           int           `env:"APP_HTTP_PORT"`
	AppCollectionsFile    string        `env:"APP_COLLECTIONS_FILE"`
	AppODataWithoutDollar bool          `env:"APP_ODATA_WITHOUT_DOLLAR"`
	AppCacheSize          int           `env:"APP_CACHE_SIZE"`
	AppCacheTTL           time.Duration `env:"APP_CACHE_TTL"`
	AppMetricsNamespace   string        `env:"APP_METRICS_NAMESPACE"`
	// App Drivers
	AppDriverDatabase string `env:"APP_DRIVER_DATABASE"`
	AppDriverCache    string `env:"APP_DRIVER_CACHE"`
	// Services
	MySQLHost    string `env:"MYSQL_HOST"`
	MySQLName    string `env:"MYSQL_NAME"`
	MySQLPass    string `env:"MYSQL_PASS"`
	MySQLPort    int    `env:"MYSQL_PORT"`
	MySQLUser    string `env:"MYSQL_USER"`
	PostgresHost string `env:"POSTGRES_HOST"`
	PostgresName string `env:"POSTGRES_NAME"`
	PostgresPass string `env:"POSTGRES_PASS"`
	PostgresPort int    `env:"POSTGRES_PORT"`
	PostgresUser string `env:"POSTGRES_USER"`
	RedisHost    string `env:"REDIS_HOST"`
	RedisNumber  int    `env:"REDIS_NUMBER"`
	RedisPass    string `env:"REDIS_PASS"`
	RedisPort    int    `env:"REDIS_PORT"`
	RedisUser    string `env:"REDIS_USER"`
	SQLitePath   string `env:"SQLITE_PATH"`
}

func NewConfig() AppConfig {
	return AppConfig{
		AppCacheSize:        cache.DefaultMemorySize,
		AppCacheTTL:         time.Second * 30,
		AppDriverCache:      "none",
		AppDriverDatabase:   "sqlite",
		AppHTTPHost:         "0.0.0.0",
		AppHTTPPort:         2291,
		AppMetricsNamespace: "odata",
		MySQLHost:           "127.0.0.1",
		MySQLPort:           3306,
		PostgresHost:        "127.0.0.1",
		PostgresPort:        5432,
		RedisHost:           "127.0.0.1",
		RedisPort:           6379,
		SQLitePath:          "database.sqlite",
	}
}

// LoadConfig starts from NewConfig, applies configFile when given (any format
// viper understands, .env included) and finally the environment.
func LoadConfig(configFile string) (AppConfig, error) {
	config := NewConfig()

	v := viper.New()

	defaults := reflect.ValueOf(config)
	for i := range defaults.NumField() {
		key := defaults.Type().Field(i).Tag.Get("env")
		if key == "" {
			continue
		}

		v.SetDefault(key, defaults.Field(i).Interface())
		if err := v.BindEnv(key); err != nil {
			return AppConfig{}, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("reading %s: %w", configFile, err)
		}
	}

	if err := v.Unmarshal(&config, func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "env"
	}); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func (config AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", config.AppHTTPHost, config.AppHTTPPort)
}

func (config AppConfig) DecoderConfigFuncs() []odata.DecoderConfigFunc {
	return []odata.DecoderConfigFunc{
		odata.WithDollar(!config.AppODataWithoutDollar),
	}
}

func (config AppConfig) Database(configFuncs ...database.ServiceConfigFunc) (*database.Service, error) {
	switch config.AppDriverDatabase {
	case "sqlite":
		return database.New(
			database.NewDriverSQLite(config.SQLitePath),
			configFuncs...,
		)
	case "postgres":
		return database.New(
			database.NewDriverPostgres(database.DriverPostgresConfig{
				Host: config.PostgresHost,
				Port: config.PostgresPort,
				User: config.PostgresUser,
				Pass: config.PostgresPass,
				Name: config.PostgresName,
			}),
			configFuncs...,
		)
	case "mysql":
		return database.New(
			database.NewDriverMySQL(database.DriverMySQLConfig{
				Host: config.MySQLHost,
				Port: config.MySQLPort,
				User: config.MySQLUser,
				Pass: config.MySQLPass,
				Name: config.MySQLName,
			}),
			configFuncs...,
		)
	}

	return nil, fmt.Errorf("invalid database driver: %s", config.AppDriverDatabase)
}

var ErrCacheDisabled = errors.New("cache disabled")

// Cache returns ErrCacheDisabled for the "none" driver.
func (config AppConfig) Cache() (cache.Driver, error) {
	switch config.AppDriverCache {
	case "none", "":
		return nil, ErrCacheDisabled
	case "memory":
		return cache.NewDriverMemory(config.AppCacheSize)
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:   config.RedisHost,
			Number: config.RedisNumber,
			Pass:   config.RedisPass,
			Port:   config.RedisPort,
			User:   config.RedisUser,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", config.AppDriverCache)
}
