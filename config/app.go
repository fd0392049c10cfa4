package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"local_dev_secret"`
	Env         string `env:"APP_ENV" envDefault:"dev"`

	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"15m"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	BookCacheTTL  time.Duration `env:"BOOK_CACHE_TTL" envDefault:"10m"`

	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	ActivityTopic string   `env:"KAFKA_ACTIVITY_TOPIC" envDefault:"kitabu.activity"`

	LendingPeriod time.Duration `env:"LENDING_PERIOD" envDefault:"336h"`
}
