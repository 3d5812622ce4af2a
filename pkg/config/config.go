package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"time"

	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

type Config struct {
	Schedule ScheduleConfig
	Store    StoreConfig
	Server   ServerConfig
	Kafka    KafkaConfig
	Logging  LogConfig

	Log *logger.Logger `ignored:"true"`
}

type ScheduleConfig struct {
	Rooms                 model.RoomCatalog `envconfig:"ROOMS" default:"4=Sala Piso 4 - Sala de Conferencias;5=Sala Piso 5 - Vista Panorámica"`
	StartOfDay            string            `envconfig:"START_OF_DAY" default:"08:00"`
	EndOfDay              string            `envconfig:"END_OF_DAY" default:"16:00"`
	SlotStepMinutes       int               `envconfig:"SLOT_STEP_MINUTES" default:"30"`
	StartAlignmentMinutes int               `envconfig:"START_ALIGNMENT_MINUTES" default:"1"`
}

type StoreConfig struct {
	Backend           string        `envconfig:"STORE_BACKEND" default:"file"`
	Path              string        `envconfig:"STORE_PATH" default:"reservations.json"`
	MongoURI          string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabaseName string        `envconfig:"MONGO_DATABASE_NAME" default:"roombook"`
	MongoConnTimeout  time.Duration `envconfig:"MONGO_CONN_TIMEOUT" default:"10s"`
	LedgerID          string        `envconfig:"LEDGER_ID" default:"default"`
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`

	// RateLimitPerSecond of 0 turns client rate limiting off.
	RateLimitPerSecond float64  `envconfig:"RATE_LIMIT_PER_SECOND" default:"10"`
	RateLimitBurst     int      `envconfig:"RATE_LIMIT_BURST" default:"20"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// KafkaConfig enables change events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers              []string      `envconfig:"KAFKA_BROKERS"`
	Topic                string        `envconfig:"KAFKA_TOPIC" default:"roombook.reservations"`
	ProducerMaxAttempts  int           `envconfig:"KAFKA_PRODUCER_MAX_ATTEMPTS" default:"3"`
	ProducerBatchTimeout time.Duration `envconfig:"KAFKA_PRODUCER_BATCH_TIMEOUT" default:"10ms"`
	ProducerRequireAcks  int           `envconfig:"KAFKA_PRODUCER_REQUIRE_ACKS" default:"-1"`
	ProducerCompression  string        `envconfig:"KAFKA_PRODUCER_COMPRESSION" default:"snappy"`
	PublishTimeout       time.Duration `envconfig:"KAFKA_PUBLISH_TIMEOUT" default:"5s"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type LogConfig struct {
	Level     string `envconfig:"LOG_LEVEL" default:"warn"`
	Format    string `envconfig:"LOG_FORMAT" default:"text"`
	AddSource bool   `envconfig:"LOG_ADD_SOURCE" default:"false"`
}

// Option adjusts a loaded configuration before it is validated.
type Option func(*Config)

// Load reads an optional .env file, then the environment, applies opts,
// validates the result and builds the logger.
func Load(serviceName string, opts ...Option) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    os.Stderr,
		AddSource: cfg.Logging.AddSource,
		Service:   serviceName,
	})
	cfg.LogConfiguration()
	return &cfg, nil
}

func WithStorePath(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.Store.Path = path
		}
	}
}

func WithBackend(backend string) Option {
	return func(c *Config) {
		if backend != "" {
			c.Store.Backend = backend
		}
	}
}

func WithPort(port string) Option {
	return func(c *Config) {
		if port != "" {
			c.Server.Port = port
		}
	}
}

var (
	clockRegex    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)
)

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Schedule.Rooms) == 0 {
		errors = append(errors, "Rooms must name at least one room")
	}
	if !clockRegex.MatchString(cfg.Schedule.StartOfDay) {
		errors = append(errors, fmt.Sprintf("StartOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.Schedule.StartOfDay))
	}
	if !clockRegex.MatchString(cfg.Schedule.EndOfDay) {
		errors = append(errors, fmt.Sprintf("EndOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.Schedule.EndOfDay))
	}
	if clockRegex.MatchString(cfg.Schedule.StartOfDay) && clockRegex.MatchString(cfg.Schedule.EndOfDay) &&
		cfg.Schedule.StartOfDay >= cfg.Schedule.EndOfDay {
		errors = append(errors, fmt.Sprintf("StartOfDay (%s) must be before EndOfDay (%s)", cfg.Schedule.StartOfDay, cfg.Schedule.EndOfDay))
	}
	if cfg.Schedule.SlotStepMinutes <= 0 {
		errors = append(errors, fmt.Sprintf("SlotStepMinutes must be positive, got: %d", cfg.Schedule.SlotStepMinutes))
	}
	if cfg.Schedule.StartAlignmentMinutes <= 0 || cfg.Schedule.StartAlignmentMinutes > 60 {
		errors = append(errors, fmt.Sprintf("StartAlignmentMinutes must be between 1 and 60, got: %d", cfg.Schedule.StartAlignmentMinutes))
	}

	switch cfg.Store.Backend {
	case BackendFile:
		if cfg.Store.Path == "" {
			errors = append(errors, "StorePath cannot be empty for the file backend")
		}
	case BackendMongo:
		if !mongoURIRegex.MatchString(cfg.Store.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.Store.MongoURI)))
		}
		if cfg.Store.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.Store.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.Store.MongoConnTimeout))
		}
		if cfg.Store.LedgerID == "" {
			errors = append(errors, "LedgerID cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [file, mongo], got: %s", cfg.Store.Backend))
	}

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Server.Port))
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.Server.ReadTimeout))
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.Server.WriteTimeout))
	}
	if cfg.Server.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.Server.IdleTimeout))
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.Server.ShutdownTimeout))
	}
	if cfg.Server.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.Server.RequestTimeout))
	}

	if cfg.Server.RateLimitPerSecond < 0 {
		errors = append(errors, fmt.Sprintf("RateLimitPerSecond cannot be negative, got: %g", cfg.Server.RateLimitPerSecond))
	}
	if cfg.Server.RateLimitPerSecond > 0 && cfg.Server.RateLimitBurst <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitBurst must be positive when rate limiting is on, got: %d", cfg.Server.RateLimitBurst))
	}

	if cfg.Kafka.Enabled() {
		for i, broker := range cfg.Kafka.Brokers {
			if broker == "" {
				errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
			}
		}
		if cfg.Kafka.Topic == "" {
			errors = append(errors, "KafkaTopic cannot be empty")
		}
		if cfg.Kafka.ProducerMaxAttempts <= 0 {
			errors = append(errors, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.Kafka.ProducerMaxAttempts))
		}
		if cfg.Kafka.ProducerBatchTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.Kafka.ProducerBatchTimeout))
		}
		if cfg.Kafka.PublishTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("PublishTimeout must be positive, got: %s", cfg.Kafka.PublishTimeout))
		}
		validCompressions := map[string]bool{
			"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true,
		}
		if !validCompressions[cfg.Kafka.ProducerCompression] {
			errors = append(errors, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.Kafka.ProducerCompression))
		}
		validAcks := map[int]bool{-1: true, 0: true, 1: true}
		if !validAcks[cfg.Kafka.ProducerRequireAcks] {
			errors = append(errors, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.Kafka.ProducerRequireAcks))
		}
	}

	if _, ok := logger.ParseLevel(cfg.Logging.Level); !ok {
		errors = append(errors, fmt.Sprintf("LogLevel must be one of [debug, info, warn, error], got: %s", cfg.Logging.Level))
	}
	if cfg.Logging.Format != logger.JSON && cfg.Logging.Format != logger.TEXT {
		errors = append(errors, fmt.Sprintf("LogFormat must be one of [json, text], got: %s", cfg.Logging.Format))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"rooms", cfg.Schedule.Rooms.String(),
		"start_of_day", cfg.Schedule.StartOfDay,
		"end_of_day", cfg.Schedule.EndOfDay,
		"slot_step_minutes", cfg.Schedule.SlotStepMinutes,
		"start_alignment_minutes", cfg.Schedule.StartAlignmentMinutes,
		"store_backend", cfg.Store.Backend,
		"store_path", cfg.Store.Path,
		"mongo_uri", redactMongoURI(cfg.Store.MongoURI),
		"mongo_database", cfg.Store.MongoDatabaseName,
		"mongo_conn_timeout", cfg.Store.MongoConnTimeout,
		"ledger_id", cfg.Store.LedgerID,
		"port", cfg.Server.Port,
		"request_timeout", cfg.Server.RequestTimeout,
		"read_timeout", cfg.Server.ReadTimeout,
		"write_timeout", cfg.Server.WriteTimeout,
		"idle_timeout", cfg.Server.IdleTimeout,
		"shutdown_timeout", cfg.Server.ShutdownTimeout,
		"rate_limit_per_second", cfg.Server.RateLimitPerSecond,
		"cors_allowed_origins", cfg.Server.CORSAllowedOrigins,
		"kafka_enabled", cfg.Kafka.Enabled(),
		"kafka_topic", cfg.Kafka.Topic,
		"log_level", cfg.Logging.Level,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}
