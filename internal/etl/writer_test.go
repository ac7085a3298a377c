package etl

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/janduczek/retailsync/pkg/models"
)

// fakeBulk captures the write models the writer builds and returns a canned
// result or error.
type fakeBulk struct {
	writes [][]mongo.WriteModel
	result *mongo.BulkWriteResult
	err    error
}

func (f *fakeBulk) BulkWrite(ctx context.Context, writes []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	f.writes = append(f.writes, writes)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &mongo.BulkWriteResult{UpsertedCount: int64(len(writes))}, nil
}

func doc(key string, count int64) models.Document {
	return models.Document{
		DedupKey: key,
		Metrics:  models.Metrics{Count: count},
	}
}

func TestWriteDedupesWithinChunkLastWins(t *testing.T) {
	fake := &fakeBulk{}
	w := &MongoWriter{coll: fake, timeout: time.Second}

	res, err := w.Write(context.Background(), []models.Document{
		doc("k1", 1),
		doc("k2", 2),
		doc("k1", 3), // later row wins over the first k1
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.DuplicatesInBatch)
	assert.Equal(t, int64(2), res.Inserted)

	require.Len(t, fake.writes, 1)
	require.Len(t, fake.writes[0], 2)

	first, ok := fake.writes[0][0].(*mongo.ReplaceOneModel)
	require.True(t, ok)
	winner, ok := first.Replacement.(models.Document)
	require.True(t, ok)
	assert.Equal(t, "k1", winner.DedupKey)
	assert.Equal(t, int64(3), winner.Metrics.Count)
}

func TestWriteUsesUpsertReplace(t *testing.T) {
	fake := &fakeBulk{result: &mongo.BulkWriteResult{UpsertedCount: 1, MatchedCount: 1}}
	w := &MongoWriter{coll: fake, timeout: time.Second}

	res, err := w.Write(context.Background(), []models.Document{doc("k1", 1), doc("k2", 2)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Inserted)
	assert.Equal(t, int64(1), res.Replaced)

	for _, wm := range fake.writes[0] {
		m, ok := wm.(*mongo.ReplaceOneModel)
		require.True(t, ok)
		require.NotNil(t, m.Upsert)
		assert.True(t, *m.Upsert)
	}
}

func TestWriteEmptyChunkIsNoop(t *testing.T) {
	fake := &fakeBulk{}
	w := &MongoWriter{coll: fake, timeout: time.Second}

	res, err := w.Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, WriteResult{}, res)
	assert.Empty(t, fake.writes)
}

func TestWriteStoreFailureIsReturned(t *testing.T) {
	fake := &fakeBulk{err: errors.New("connection reset")}
	w := &MongoWriter{coll: fake, timeout: time.Second}

	res, err := w.Write(context.Background(), []models.Document{doc("k1", 1)})
	require.Error(t, err)
	assert.Equal(t, WriteResult{}, res)
}
