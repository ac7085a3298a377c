package etl

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VerifySummary is the post-load sanity report over the records collection.
type VerifySummary struct {
	TotalDocuments   int64
	PerSource        map[string]int64
	RevenuePerSource map[string]primitive.Decimal128
	UniqueCustomers  int64
	UniqueProducts   int64
}

// Verify aggregates document counts, revenue per source, and unique customer
// and product counts. Read-only; used after a load to confirm the collection
// looks healthy.
func Verify(ctx context.Context, coll *mongo.Collection, timeout time.Duration) (*VerifySummary, error) {
	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	summary := &VerifySummary{
		PerSource:        make(map[string]int64),
		RevenuePerSource: make(map[string]primitive.Decimal128),
	}

	total, err := coll.CountDocuments(vctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "counting documents")
	}
	summary.TotalDocuments = total

	counts, err := coll.Aggregate(vctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$source.sourceId", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "aggregating counts per source")
	}
	var countRows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := counts.All(vctx, &countRows); err != nil {
		return nil, errors.Wrap(err, "decoding counts per source")
	}
	for _, row := range countRows {
		summary.PerSource[row.ID] = row.Count
	}

	revenue, err := coll.Aggregate(vctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$source.sourceId", "revenue": bson.M{"$sum": "$metrics.amount"}}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "aggregating revenue per source")
	}
	var revenueRows []struct {
		ID      string               `bson:"_id"`
		Revenue primitive.Decimal128 `bson:"revenue"`
	}
	if err := revenue.All(vctx, &revenueRows); err != nil {
		return nil, errors.Wrap(err, "decoding revenue per source")
	}
	for _, row := range revenueRows {
		summary.RevenuePerSource[row.ID] = row.Revenue
	}

	summary.UniqueCustomers, err = distinctCount(vctx, coll, "$entity.id", bson.M{"entity.id": bson.M{"$ne": nil}})
	if err != nil {
		return nil, errors.Wrap(err, "counting unique customers")
	}

	summary.UniqueProducts, err = distinctCount(vctx, coll, "$metadata.stockCode", bson.M{"metadata.stockCode": bson.M{"$ne": ""}})
	if err != nil {
		return nil, errors.Wrap(err, "counting unique products")
	}

	return summary, nil
}

func distinctCount(ctx context.Context, coll *mongo.Collection, field string, match bson.M) (int64, error) {
	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": field}}},
		{{Key: "$count", Value: "count"}},
	})
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}
