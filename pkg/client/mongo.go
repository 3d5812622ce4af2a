package client

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoClient struct {
	Client *mongo.Client
	log    *logger.Logger
}

// NewMongoClient connects and pings within connTimeout.
func NewMongoClient(ctx context.Context, log *logger.Logger, mongoURI string, connTimeout time.Duration) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Successfully connected to MongoDB")
	return &MongoClient{Client: client, log: log}, nil
}

func (c *MongoClient) Disconnect(ctx context.Context) error {
	if err := c.Client.Disconnect(ctx); err != nil {
		c.log.Error("Failed to disconnect from MongoDB", "error", err)
		return err
	}
	c.log.Info("Disconnected from MongoDB")
	return nil
}
