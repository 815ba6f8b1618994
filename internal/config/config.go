// Пакет config читает настройки сервиса и консьюмера из переменных окружения
// (и необязательного файла .env) со значениями по умолчанию
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config содержит все настройки процессов каталога
type Config struct {
	Postgres   PostgresConfig
	HTTP       HTTPConfig
	NATS       NATSConfig
	ClickHouse ClickHouseConfig
	Consumer   ConsumerConfig
	// MigrationsDir — каталог с подкаталогами postgres/ и clickhouse/
	MigrationsDir string `env:"MIGRATIONS_DIR" default:"migrations"`
}

// PostgresConfig — подключение к основной БД каталога
type PostgresConfig struct {
	Host     string `env:"DB_HOST" default:"localhost"`
	Port     int    `env:"DB_PORT" default:"5432"`
	User     string `env:"DB_USER" default:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" default:"appdb"`
	Schema   string `env:"DB_SCHEMA" default:"app"`
	SSLMode  string `env:"DB_SSLMODE" default:"disable"`
}

// HTTPConfig — настройки HTTP-сервера API
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" default:"5s"`
}

// NATSConfig — шина событий аудита
type NATSConfig struct {
	URL string `env:"NATS_URL" default:"nats://localhost:4222"`
	// Subject — корневая тема; события публикуются в Subject.<kind>
	Subject string `env:"NATS_SUBJECT" default:"catalog"`
}

// ClickHouseConfig — хранилище журнала событий
type ClickHouseConfig struct {
	DSN string `env:"CLICKHOUSE_DSN" default:"tcp://localhost:9000?database=default"`
}

// ConsumerConfig — настройки процесса-консьюмера
type ConsumerConfig struct {
	BatchSize int    `env:"BATCH_SIZE" default:"10"`
	Port      string `env:"CONSUMER_PORT" default:"8081"`
}

// DSN возвращает строку подключения lib/pq
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// MigrationsURL возвращает источник golang-migrate для указанной БД (postgres или clickhouse)
func (c *Config) MigrationsURL(db string) string {
	return "file://" + c.MigrationsDir + "/" + db
}
