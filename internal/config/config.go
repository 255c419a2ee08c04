package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN          string        `mapstructure:"dsn"`
		QueryTimeout time.Duration `mapstructure:"query_timeout"`
	} `mapstructure:"db"`
	Redis struct {
		Addr      string        `mapstructure:"addr"`
		Password  string        `mapstructure:"password"`
		DB        int           `mapstructure:"db"`
		OpTimeout time.Duration `mapstructure:"op_timeout"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers        []string `mapstructure:"brokers"`
		SearchLogTopic string   `mapstructure:"search_log_topic"`
		GroupID        string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Cache struct {
		ListTTL   time.Duration `mapstructure:"list_ttl"`
		SearchTTL time.Duration `mapstructure:"search_ttl"`
		ItemTTL   time.Duration `mapstructure:"item_ttl"`
		LookupTTL time.Duration `mapstructure:"lookup_ttl"`
	} `mapstructure:"cache"`
	Search struct {
		Window int `mapstructure:"window"`
	} `mapstructure:"search"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
		ServiceName  string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("db.query_timeout", 5*time.Second)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.op_timeout", 300*time.Millisecond)
	v.SetDefault("kafka.search_log_topic", "search.logs")
	v.SetDefault("kafka.group_id", "search-log-writer")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("cache.list_ttl", 5*time.Minute)
	v.SetDefault("cache.search_ttl", 5*time.Minute)
	v.SetDefault("cache.item_ttl", time.Hour)
	v.SetDefault("cache.lookup_ttl", time.Hour)
	v.SetDefault("search.window", 200)
	v.SetDefault("tracing.service_name", "program-catalog")
}

// LoadConfig reads config.yaml from the given directories (current
// directory when none are given), then overlays .env and process
// environment variables.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err = godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)

	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.query_timeout", "DB_QUERY_TIMEOUT")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.op_timeout", "REDIS_OP_TIMEOUT")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.search_log_topic", "KAFKA_SEARCH_LOG_TOPIC")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("search.window", "SEARCH_WINDOW")
	v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")

	err = v.Unmarshal(&cfg)
	return
}
