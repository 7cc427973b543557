// Package database wires the document store connection and guards every
// operation with a circuit breaker so a failing store degrades into fast
// structured errors instead of piled-up timeouts.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names of the store's logical collections.
const (
	CollectionScans    = "scans"
	CollectionPatients = "patients"
	CollectionDoctors  = "doctors"
	CollectionReports  = "reports"
)

// Config holds document-store configuration.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// DB wraps the Mongo client with breaker-guarded execution.
type DB struct {
	client  *mongo.Client
	db      *mongo.Database
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

// NewConnection connects, pings and prepares the collection indexes.
func NewConnection(ctx context.Context, config Config, logger *logrus.Logger) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to document store: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging document store: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "document-store",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Persistence circuit breaker state changed")
		},
	})

	db := &DB{
		client:  client,
		db:      client.Database(config.Database),
		breaker: breaker,
		log:     logger,
	}

	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"database": config.Database,
	}).Info("Document store connection established")

	return db, nil
}

// ensureIndexes creates the unique email index and the tenancy/sort indexes
// the scoped queries rely on.
func (db *DB) ensureIndexes(ctx context.Context) error {
	type spec struct {
		collection string
		model      mongo.IndexModel
	}
	specs := []spec{
		{CollectionDoctors, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{CollectionScans, mongo.IndexModel{
			Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "timestamp", Value: -1}},
		}},
		{CollectionScans, mongo.IndexModel{
			Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "patient_id", Value: 1}},
		}},
		{CollectionPatients, mongo.IndexModel{
			Keys: bson.D{{Key: "doctor_id", Value: 1}},
		}},
		{CollectionReports, mongo.IndexModel{
			Keys: bson.D{{Key: "doctor_id", Value: 1}},
		}},
	}
	for _, s := range specs {
		if _, err := db.db.Collection(s.collection).Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("creating %s index: %w", s.collection, err)
		}
	}
	return nil
}

// Collection returns a raw handle; repositories go through Guard for every
// operation on it.
func (db *DB) Collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// Guard executes op behind the circuit breaker.
func (db *DB) Guard(op func() (interface{}, error)) (interface{}, error) {
	return db.breaker.Execute(op)
}

// Health checks connectivity.
func (db *DB) Health(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	if db.client == nil {
		return nil
	}
	err := db.client.Disconnect(ctx)
	db.log.Info("Document store connection closed")
	return err
}
