package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StorePebble   = "pebble"

	BlobAzure = "azure"
	BlobLocal = "local"
)

type Kafka struct {
	Brokers    []string
	Topic      string
	Group      string
	Partitions int

	// MaxRedeliveries bounds how often a failing message is handed to the
	// handler again before it is committed anyway; 0 means no bound. Errors
	// wrapping kafka.ErrRetryLater do not count.
	MaxRedeliveries int
}

type Postgres struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string
	Schema   string
	Table    string
}

type Pebble struct {
	Dir string
}

type Blob struct {
	Driver           string
	ConnectionString string
	LocalRoot        string
}

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Config struct {
	HTTPAddr  string
	LogLevel  string
	CacheCap  int
	Delimiter string

	StoreDriver string
	Pg          Postgres
	Pebble      Pebble
	Blob        Blob
	Kafka       Kafka
	Breaker     Breaker
	Retry       Retry
}

// Load fatals on a missing or invalid environment.
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTPAddr:  envDefault("HTTP_ADDR", ":8081"),
		LogLevel:  envDefault("LOG_LEVEL", "info"),
		CacheCap:  envInt("CACHE_CAP", 1000),
		Delimiter: os.Getenv("INVOICE_DELIMITER"),

		StoreDriver: strings.ToLower(envDefault("STORE_DRIVER", StorePostgres)),

		Pg: Postgres{
			Host:     strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:     strings.TrimSpace(envDefault("PG_PORT", "5432")),
			DB:       strings.TrimSpace(os.Getenv("PG_DB")),
			User:     strings.TrimSpace(os.Getenv("PG_USER")),
			Password: strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:  strings.TrimSpace(envDefault("PG_SSLMODE", "disable")),
			Schema:   strings.TrimSpace(envDefault("DB_SCHEMA", "public")),
			Table:    strings.TrimSpace(envDefault("TBL_ORDERS", "acme_orders")),
		},

		Pebble: Pebble{
			Dir: envDefault("PEBBLE_DIR", "data/orders"),
		},

		Blob: Blob{
			Driver:           strings.ToLower(envDefault("BLOB_DRIVER", BlobAzure)),
			ConnectionString: strings.TrimSpace(os.Getenv("AZURE_STORAGE_CONNECTION_STRING")),
			LocalRoot:        envDefault("BLOB_LOCAL_ROOT", "data/blobs"),
		},

		Kafka: Kafka{
			Brokers:    splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			Topic:      envDefault("KAFKA_TOPIC", "workiteminvoice"),
			Group:      envDefault("KAFKA_GROUP", "InvoiceProcessor"),
			Partitions: envInt("KAFKA_PARTITIONS", 3),

			MaxRedeliveries: envInt("KAFKA_MAX_REDELIVERIES", 5),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 10*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 5),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c Config) validate() error {
	req := map[string]string{
		"KAFKA_BROKERS": strings.Join(c.Kafka.Brokers, ","),
		"KAFKA_TOPIC":   c.Kafka.Topic,
		"KAFKA_GROUP":   c.Kafka.Group,
	}

	switch c.StoreDriver {
	case StorePostgres:
		req["PG_HOST"] = c.Pg.Host
		req["PG_DB"] = c.Pg.DB
		req["PG_USER"] = c.Pg.User
		req["PG_PASSWORD"] = c.Pg.Password
		req["TBL_ORDERS"] = c.Pg.Table
	case StorePebble:
		req["PEBBLE_DIR"] = c.Pebble.Dir
	default:
		return &invalidEnvError{Key: "STORE_DRIVER", Value: c.StoreDriver}
	}

	switch c.Blob.Driver {
	case BlobAzure:
		req["AZURE_STORAGE_CONNECTION_STRING"] = c.Blob.ConnectionString
	case BlobLocal:
		req["BLOB_LOCAL_ROOT"] = c.Blob.LocalRoot
	default:
		return &invalidEnvError{Key: "BLOB_DRIVER", Value: c.Blob.Driver}
	}

	var missing []string
	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}
	return nil
}

// normalize clamps values that would otherwise break the consumer or retries.
func (c *Config) normalize() {
	if c.CacheCap <= 0 {
		log.Printf("CACHE_CAP is %d, adjusting to 1", c.CacheCap)
		c.CacheCap = 1
	}
	if c.Kafka.MaxRedeliveries < 0 {
		log.Printf("KAFKA_MAX_REDELIVERIES is %d, adjusting to 0", c.Kafka.MaxRedeliveries)
		c.Kafka.MaxRedeliveries = 0
	}
	if c.Retry.Attempts < 0 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 0", c.Retry.Attempts)
		c.Retry.Attempts = 0
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

type invalidEnvError struct{ Key, Value string }

func (e *invalidEnvError) Error() string {
	return "invalid " + e.Key + "=" + strconv.Quote(e.Value)
}

// DSN builds a proper Postgres URL, safely escaping user/pass and query.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
