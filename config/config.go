package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	SequenceStore = "store"
	SequenceRedis = "redis"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Routes   RoutesConfig   `yaml:"routes"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// EnsureSchema creates tables and indexes on startup.
	EnsureSchema bool `yaml:"ensure_schema"`
	// FlightsFile seeds the memory catalog from a YAML list of flights.
	FlightsFile string `yaml:"flights_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type MongoConfig struct {
	URI                   string `yaml:"uri"`
	Database              string `yaml:"database"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds   int    `yaml:"write_timeout_seconds"`
}

func (m MongoConfig) ConnectTimeout() time.Duration {
	return time.Duration(m.ConnectTimeoutSeconds) * time.Second
}

func (m MongoConfig) ReadTimeout() time.Duration {
	return time.Duration(m.ReadTimeoutSeconds) * time.Second
}

func (m MongoConfig) WriteTimeout() time.Duration {
	return time.Duration(m.WriteTimeoutSeconds) * time.Second
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	RefIDSequence    string `yaml:"ref_id_sequence"`
	SequenceTTLHours int    `yaml:"sequence_ttl_hours"`
}

type RoutesConfig struct {
	MaxParallelQueries int `yaml:"max_parallel_queries"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "aircargo"
	}
	if c.Mongo.ConnectTimeoutSeconds == 0 {
		c.Mongo.ConnectTimeoutSeconds = 10
	}
	if c.Mongo.ReadTimeoutSeconds == 0 {
		c.Mongo.ReadTimeoutSeconds = 5
	}
	if c.Mongo.WriteTimeoutSeconds == 0 {
		c.Mongo.WriteTimeoutSeconds = 5
	}
	if c.Booking.RefIDSequence == "" {
		c.Booking.RefIDSequence = SequenceStore
	}
	if c.Booking.SequenceTTLHours == 0 {
		c.Booking.SequenceTTLHours = 48
	}
	if c.Routes.MaxParallelQueries == 0 {
		c.Routes.MaxParallelQueries = 8
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "aircargo-audit"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Booking.RefIDSequence {
	case SequenceStore:
	case SequenceRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("ref_id_sequence %q requires redis.addr", SequenceRedis)
		}
	default:
		return fmt.Errorf("unknown ref_id_sequence %q", c.Booking.RefIDSequence)
	}
	if c.Storage.Driver == DriverMongo && c.Mongo.URI == "" {
		return fmt.Errorf("storage driver %q requires mongo.uri", DriverMongo)
	}
	if c.Routes.MaxParallelQueries < 0 {
		return fmt.Errorf("routes.max_parallel_queries must not be negative")
	}
	return nil
}
