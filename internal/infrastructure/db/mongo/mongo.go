package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/opsboard/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers     = "users"
	collectionAnalytics = "analytics"
)

// Server error codes the repositories translate.
const (
	codeDocumentValidation = 121
	codeNamespaceExists    = 48
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI).SetTimeout(timeout)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Ping reports whether the database answers within the default timeout.
func Ping(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return db.Client().Ping(ctx, nil)
}

var userSchema = bson.M{
	"bsonType": "object",
	"required": bson.A{"name", "email", "role", "status", "createdAt"},
	"properties": bson.M{
		"name":      bson.M{"bsonType": "string", "minLength": 1},
		"email":     bson.M{"bsonType": "string", "pattern": `^[^@\s]+@[^@\s]+$`},
		"role":      bson.M{"enum": bson.A{"user", "developer", "admin"}},
		"status":    bson.M{"enum": bson.A{"active", "inactive"}},
		"createdAt": bson.M{"bsonType": "date"},
	},
}

var analyticsSchema = bson.M{
	"bsonType": "object",
	"required": bson.A{"metricName", "metricValue", "metricType", "timestamp"},
	"properties": bson.M{
		"metricName":  bson.M{"bsonType": "string", "minLength": 1},
		"metricValue": bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}},
		"metricType": bson.M{"enum": bson.A{
			"revenue", "users", "conversion", "performance", "growth", "uptime",
		}},
		"description": bson.M{"bsonType": "string", "maxLength": domain.MaxDescriptionLen},
		"timestamp":   bson.M{"bsonType": "date"},
		"metadata":    bson.M{"bsonType": "object"},
	},
}

// EnsureSchema creates both collections with their $jsonSchema validators
// (updating the validator of collections that already exist) and builds the
// secondary indexes. It is safe to run on every startup.
func EnsureSchema(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := ensureCollection(ctx, db, collectionUsers, userSchema); err != nil {
		return err
	}
	if err := ensureCollection(ctx, db, collectionAnalytics, analyticsSchema); err != nil {
		return err
	}

	_, err := db.Collection(collectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(collectionAnalytics).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "metricType", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create analytics index: %w", err)
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	validator := bson.M{"$jsonSchema": schema}

	err := db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
	if err == nil {
		return nil
	}
	if !hasErrorCode(err, codeNamespaceExists) {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("update validator %s: %w", name, err)
	}
	return nil
}

// Wipe removes every document from both collections, keeping validators
// and indexes.
func Wipe(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, name := range []string{collectionUsers, collectionAnalytics} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("wipe %s: %w", name, err)
		}
	}
	return nil
}

func hasErrorCode(err error, code int) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(code)
}

// writeError maps driver write failures onto domain errors.
func writeError(op string, err error) error {
	if hasErrorCode(err, codeDocumentValidation) {
		return domain.InvalidInput("document failed validation")
	}
	return fmt.Errorf("%s: %w", op, err)
}
