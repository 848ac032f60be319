package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SnapshotsCollection = "driver_snapshots"

func createIndexes() {
	createSnapshotIndexes()
}

func createSnapshotIndexes() {
	snapshotsCollection := GetCollection(SnapshotsCollection)
	snapshotsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "snapshotdate", Value: 1}, {Key: "licencekey", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "licencekey", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := snapshotsCollection.Indexes().CreateMany(context.Background(), snapshotsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
