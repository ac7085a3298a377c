package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/janduczek/retailsync/pkg/logger"
)

// ConnectMongo opens a client and verifies the deployment is reachable with a
// primary ping. timeout bounds both the connect and the ping.
func ConnectMongo(connString string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connString))
	if err != nil {
		return nil, errors.Wrap(err, "creating MongoDB client")
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), timeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)

		return nil, errors.Wrap(err, "connecting to MongoDB (ping failed)")
	}

	logger.Infof("Connected to MongoDB")
	return client, nil
}

// Disconnect closes the client, bounded so shutdown cannot hang on a dead
// connection.
func Disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.WithError(err).Warnf("MongoDB disconnect failed")
	}
}
