package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/netscale-tools/bgpmap/pkg/render"
)

// ErrSnapshotNotFound is returned by Archive.Load for unknown snapshot names.
var ErrSnapshotNotFound = errors.New("layout snapshot not found")

// Snapshot is one archived layout result: the full positioned node/edge set
// under a user-chosen name.
type Snapshot struct {
	Name    string        `bson:"_id" json:"name"`
	SavedAt time.Time     `bson:"saved_at" json:"saved_at"`
	Layout  render.Layout `bson:"layout" json:"layout"`
}

// Archive stores named layout snapshots in MongoDB, so a known-good
// arrangement can be recalled after the topology has been edited.
type Archive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ArchiveConfig configures the MongoDB connection.
type ArchiveConfig struct {
	URI        string
	Database   string
	Collection string
}

// NewArchive connects to MongoDB and verifies the connection with a ping.
func NewArchive(ctx context.Context, cfg ArchiveConfig) (*Archive, error) {
	if cfg.Database == "" {
		cfg.Database = "bgpmap"
	}
	if cfg.Collection == "" {
		cfg.Collection = "layouts"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Archive{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Save stores a snapshot under name, replacing any previous snapshot with
// the same name.
func (a *Archive) Save(ctx context.Context, name string, l render.Layout) error {
	snap := Snapshot{Name: name, SavedAt: time.Now().UTC(), Layout: l}
	_, err := a.collection.ReplaceOne(ctx,
		bson.M{"_id": name}, snap, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return nil
}

// Load returns the snapshot stored under name, or ErrSnapshotNotFound.
func (a *Archive) Load(ctx context.Context, name string) (Snapshot, error) {
	var snap Snapshot
	err := a.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return snap, nil
}

// List returns the names and save times of all snapshots, newest first.
func (a *Archive) List(ctx context.Context) ([]Snapshot, error) {
	opts := options.Find().
		SetProjection(bson.M{"layout": 0}).
		SetSort(bson.M{"saved_at": -1})
	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Snapshot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot stored under name, if any.
func (a *Archive) Delete(ctx context.Context, name string) error {
	_, err := a.collection.DeleteOne(ctx, bson.M{"_id": name})
	return err
}

// Close disconnects from MongoDB.
func (a *Archive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
