package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/internal/core/ports"
)

type metricDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	MetricName  string             `bson:"metricName"`
	MetricValue float64            `bson:"metricValue"`
	MetricType  string             `bson:"metricType"`
	Description string             `bson:"description,omitempty"`
	Timestamp   time.Time          `bson:"timestamp"`
	Metadata    map[string]string  `bson:"metadata,omitempty"`
}

func (d metricDocument) toDomain() *domain.Metric {
	return &domain.Metric{
		ID:          d.ID.Hex(),
		MetricName:  d.MetricName,
		MetricValue: d.MetricValue,
		MetricType:  domain.MetricType(d.MetricType),
		Description: d.Description,
		Timestamp:   d.Timestamp.UTC(),
		Metadata:    d.Metadata,
	}
}

type summaryDocument struct {
	MetricType      string    `bson:"_id"`
	Count           int64     `bson:"count"`
	AvgValue        float64   `bson:"avgValue"`
	MaxValue        float64   `bson:"maxValue"`
	MinValue        float64   `bson:"minValue"`
	LatestTimestamp time.Time `bson:"latestTimestamp"`
}

// AnalyticsRepository implements ports.AnalyticsRepository using MongoDB.
type AnalyticsRepository struct {
	col *mongo.Collection
}

var _ ports.AnalyticsRepository = (*AnalyticsRepository)(nil)

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{col: db.Collection(collectionAnalytics)}
}

// List returns the metrics matching f, newest first.
func (r *AnalyticsRepository) List(ctx context.Context, f domain.MetricFilter) ([]*domain.Metric, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Type != "" {
		filter["metricType"] = string(f.Type)
	}
	ts := bson.M{}
	if !f.From.IsZero() {
		ts["$gte"] = f.From
	}
	if !f.To.IsZero() {
		ts["$lte"] = f.To
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find metrics: %w", err)
	}

	var docs []metricDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}

	metrics := make([]*domain.Metric, 0, len(docs))
	for _, d := range docs {
		metrics = append(metrics, d.toDomain())
	}
	return metrics, nil
}

func (r *AnalyticsRepository) FindByID(ctx context.Context, id string) (*domain.Metric, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMetricNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d metricDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMetricNotFound
		}
		return nil, fmt.Errorf("find metric: %w", err)
	}
	return d.toDomain(), nil
}

// Create inserts m and sets its generated id.
func (r *AnalyticsRepository) Create(ctx context.Context, m *domain.Metric) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := metricDocument{
		MetricName:  m.MetricName,
		MetricValue: m.MetricValue,
		MetricType:  string(m.MetricType),
		Description: m.Description,
		Timestamp:   m.Timestamp,
		Metadata:    m.Metadata,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return writeError("insert metric", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert metric: unexpected id type %T", res.InsertedID)
	}
	m.ID = oid.Hex()
	return nil
}

func (r *AnalyticsRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMetricNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete metric: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMetricNotFound
	}
	return nil
}

// Summarize groups every metric by type in a single aggregation.
func (r *AnalyticsRepository) Summarize(ctx context.Context) ([]domain.MetricSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$metricType"},
			{Key: "count", Value: bson.M{"$sum": 1}},
			{Key: "avgValue", Value: bson.M{"$avg": "$metricValue"}},
			{Key: "maxValue", Value: bson.M{"$max": "$metricValue"}},
			{Key: "minValue", Value: bson.M{"$min": "$metricValue"}},
			{Key: "latestTimestamp", Value: bson.M{"$max": "$timestamp"}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}

	var docs []summaryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	out := make([]domain.MetricSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.MetricSummary{
			MetricType:      domain.MetricType(d.MetricType),
			Count:           d.Count,
			AvgValue:        d.AvgValue,
			MaxValue:        d.MaxValue,
			MinValue:        d.MinValue,
			LatestTimestamp: d.LatestTimestamp.UTC(),
		})
	}
	return out, nil
}
