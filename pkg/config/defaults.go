package config

import (
	"io"
	"time"

	"roombook/pkg/logger"
	"roombook/pkg/model"
)

const (
	DefaultStartOfDay            = "08:00"
	DefaultEndOfDay              = "16:00"
	DefaultSlotStepMinutes       = 30
	DefaultStartAlignmentMinutes = 1

	DefaultStorePath         = "reservations.json"
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roombook"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultLedgerID          = "default"

	DefaultPort            = "8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultRateLimitBurst  = 20

	DefaultKafkaTopic = "roombook.reservations"
)

// DefaultRooms mirrors the ROOMS default.
var DefaultRooms = model.RoomCatalog{
	{Key: "4", Name: "Sala Piso 4 - Sala de Conferencias"},
	{Key: "5", Name: "Sala Piso 5 - Vista Panorámica"},
}

// NewTestConfig returns a valid configuration with a silent logger.
func NewTestConfig() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			Rooms:                 DefaultRooms,
			StartOfDay:            DefaultStartOfDay,
			EndOfDay:              DefaultEndOfDay,
			SlotStepMinutes:       DefaultSlotStepMinutes,
			StartAlignmentMinutes: DefaultStartAlignmentMinutes,
		},
		Store: StoreConfig{
			Backend:           BackendFile,
			Path:              DefaultStorePath,
			MongoURI:          DefaultMongoURI,
			MongoDatabaseName: DefaultMongoDatabaseName,
			MongoConnTimeout:  DefaultMongoConnTimeout,
			LedgerID:          DefaultLedgerID,
		},
		Server: ServerConfig{
			Port:            "8889", // Test port
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			RateLimitBurst:  DefaultRateLimitBurst,
		},
		Kafka: KafkaConfig{
			Topic:                DefaultKafkaTopic,
			ProducerMaxAttempts:  3,
			ProducerBatchTimeout: 10 * time.Millisecond,
			ProducerRequireAcks:  -1,
			ProducerCompression:  "snappy",
			PublishTimeout:       5 * time.Second,
		},
		Logging: LogConfig{
			Level:  logger.ERROR,
			Format: logger.TEXT,
		},
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}
