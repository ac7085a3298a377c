package etl

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/janduczek/retailsync/pkg/models"
)

// bulkWriter is the slice of *mongo.Collection the writer needs; tests
// substitute a fake.
type bulkWriter interface {
	BulkWrite(ctx context.Context, writes []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// WriteResult is the per-chunk outcome of a bulk upsert.
type WriteResult struct {
	Inserted          int64
	Replaced          int64
	DuplicatesInBatch int64
}

// MongoWriter upserts chunks of documents keyed on dedupKey. Within a chunk
// the last row for a key wins; against the store, an existing document is
// replaced whole, never merged field by field.
type MongoWriter struct {
	coll    bulkWriter
	timeout time.Duration
}

func NewMongoWriter(coll *mongo.Collection, timeout time.Duration) *MongoWriter {
	return &MongoWriter{coll: coll, timeout: timeout}
}

// Write performs one idempotent bulk upsert. On a store error the chunk is
// reported failed as a whole; there are no retries here, that policy belongs
// to the caller.
func (w *MongoWriter) Write(ctx context.Context, docs []models.Document) (WriteResult, error) {
	var res WriteResult

	// Last-write-wins dedup within the chunk. Order of first appearance is
	// kept so write order stays deterministic.
	winner := make(map[string]int, len(docs))
	order := make([]string, 0, len(docs))
	for i, doc := range docs {
		if _, seen := winner[doc.DedupKey]; seen {
			res.DuplicatesInBatch++
		} else {
			order = append(order, doc.DedupKey)
		}
		winner[doc.DedupKey] = i
	}

	if len(order) == 0 {
		return res, nil
	}

	writes := make([]mongo.WriteModel, 0, len(order))
	for _, key := range order {
		doc := docs[winner[key]]
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"dedupKey": doc.DedupKey}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	wctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	bulkRes, err := w.coll.BulkWrite(wctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return WriteResult{}, errors.Wrap(err, "bulk write")
	}

	res.Inserted = bulkRes.UpsertedCount
	res.Replaced = bulkRes.MatchedCount
	return res, nil
}
