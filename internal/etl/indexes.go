package etl

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpecsVersion identifies the current generation of the index set.
// Bump it when IndexSpecs changes so operators know a re-ensure is due.
const IndexSpecsVersion = 1

// IndexSpecs returns the query-serving indexes of the records collection:
// the unique upsert key, point lookups, event-time range/sort, compound
// customer+time and country+time queries, and full-text search over the
// description field.
func IndexSpecs() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dedupKey", Value: 1}},
			Options: options.Index().SetName("idx_dedup_key").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "source.externalId", Value: 1}},
			Options: options.Index().SetName("idx_invoice_no"),
		},
		{
			Keys:    bson.D{{Key: "entity.id", Value: 1}},
			Options: options.Index().SetName("idx_customer_id"),
		},
		{
			Keys:    bson.D{{Key: "entity.id", Value: 1}, {Key: "eventTime", Value: -1}},
			Options: options.Index().SetName("idx_customer_date"),
		},
		{
			Keys:    bson.D{{Key: "eventTime", Value: -1}},
			Options: options.Index().SetName("idx_date_desc"),
		},
		{
			Keys:    bson.D{{Key: "metadata.country", Value: 1}},
			Options: options.Index().SetName("idx_country"),
		},
		{
			Keys:    bson.D{{Key: "metadata.country", Value: 1}, {Key: "eventTime", Value: -1}},
			Options: options.Index().SetName("idx_country_date"),
		},
		{
			Keys:    bson.D{{Key: "metadata.stockCode", Value: 1}},
			Options: options.Index().SetName("idx_stock_code"),
		},
		{
			Keys:    bson.D{{Key: "metadata.description", Value: "text"}},
			Options: options.Index().SetName("idx_description_text"),
		},
	}
}

// indexCreator is the slice of mongo.IndexView the manager needs; tests
// substitute a fake.
type indexCreator interface {
	CreateMany(ctx context.Context, specs []mongo.IndexModel, opts ...*options.CreateIndexesOptions) ([]string, error)
}

// IndexManager ensures the index set exists on the records collection.
// Creation is idempotent: asking for an already-existing equivalent index is
// a no-op server side. It runs independently of the load path.
type IndexManager struct {
	view    indexCreator
	timeout time.Duration
}

func NewIndexManager(coll *mongo.Collection, timeout time.Duration) *IndexManager {
	return &IndexManager{view: coll.Indexes(), timeout: timeout}
}

// Ensure creates every index in IndexSpecs, returning the created names.
func (m *IndexManager) Ensure(ctx context.Context) ([]string, error) {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	names, err := m.view.CreateMany(cctx, IndexSpecs())
	if err != nil {
		return nil, errors.Wrap(err, "creating indexes")
	}
	return names, nil
}
