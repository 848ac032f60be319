package snapshot

import (
	"context"
	"time"

	"github.com/jinzhu/copier"
	"github.com/licencecheck/licencecheck/pkg/database"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxBatchSize = 200

type snapshotDocument struct {
	SnapshotDate string
	Position     int
	LicenceKey   string

	ClientName     string
	LicenceNumber  string
	Class          string
	ExpiryDate     string
	LicenceStatus  string
	MedicalDueDate string
	Comments       []string

	CreationDateTime time.Time
}

// MongoStore keeps every record of a day as its own document tagged with
// the snapshot date
type MongoStore struct {
	Collection *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{
		Collection: database.GetCollection(database.SnapshotsCollection),
	}
}

func (s *MongoStore) Save(ctx context.Context, snapshot *licence.Snapshot) error {
	snapshotDate := snapshot.DateString()

	if _, err := s.Collection.DeleteMany(ctx, bson.M{"snapshotdate": snapshotDate}); err != nil {
		return err
	}

	now := time.Now()
	var operations []mongo.WriteModel

	for i, record := range snapshot.Records {
		document := snapshotDocument{}
		if err := copier.Copy(&document, record); err != nil {
			return err
		}
		document.SnapshotDate = snapshotDate
		document.Position = i
		document.LicenceKey = record.Key()
		document.CreationDateTime = now

		insertModel := mongo.NewInsertOneModel()
		insertModel.SetDocument(document)
		operations = append(operations, insertModel)

		if len(operations) == maxBatchSize {
			if _, err := s.Collection.BulkWrite(ctx, operations, &options.BulkWriteOptions{}); err != nil {
				return err
			}
			operations = nil
		}
	}

	if len(operations) > 0 {
		if _, err := s.Collection.BulkWrite(ctx, operations, &options.BulkWriteOptions{}); err != nil {
			return err
		}
	}

	log.Info().Str("date", snapshotDate).Int("records", len(snapshot.Records)).Msg("Written snapshot to MongoDB")

	return nil
}

func (s *MongoStore) Load(ctx context.Context, date time.Time) (*licence.Snapshot, error) {
	cursor, err := s.Collection.Find(ctx,
		bson.M{"snapshotdate": date.Format(util.DateFormat)},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var documents []snapshotDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}

	if len(documents) == 0 {
		return nil, ErrNotFound
	}

	records := make([]*licence.DriverRecord, 0, len(documents))
	for _, document := range documents {
		record := &licence.DriverRecord{}
		if err := copier.Copy(record, &document); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return licence.NewSnapshot(date, records), nil
}

func (s *MongoStore) Delete(ctx context.Context, date time.Time) error {
	_, err := s.Collection.DeleteMany(ctx, bson.M{"snapshotdate": date.Format(util.DateFormat)})

	return err
}
