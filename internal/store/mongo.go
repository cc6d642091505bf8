package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ahsanfayaz52/notesapi/internal/models"
)

const NotesCollection = "notes"

type noteDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	NoteID    string             `bson:"noteId"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d noteDocument) toModel() models.Note {
	return models.Note{
		ID:        d.ID.Hex(),
		NoteID:    d.NoteID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// insertion order; ObjectIDs grow with creation time
var oldestFirst = bson.D{{Key: "_id", Value: 1}}

type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

// EnsureIndexes creates the lookup index on noteId. It is not unique:
// duplicate keys are allowed.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "noteId", Value: 1}},
		Options: options.Index().SetName("noteId_1"),
	})
	if err != nil {
		return fmt.Errorf("create noteId index: %w", err)
	}
	return nil
}

func (m *Mongo) Create(ctx context.Context, n *models.Note) error {
	doc := noteDocument{
		ID:        primitive.NewObjectID(),
		NoteID:    n.NoteID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	n.ID = doc.ID.Hex()
	return nil
}

func (m *Mongo) FindAll(ctx context.Context) ([]models.Note, error) {
	cursor, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	notes := make([]models.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, d.toModel())
	}
	return notes, nil
}

func (m *Mongo) FindByNoteID(ctx context.Context, noteID string) (*models.Note, error) {
	var doc noteDocument
	err := m.coll.FindOne(ctx, bson.D{{Key: "noteId", Value: noteID}},
		options.FindOne().SetSort(oldestFirst)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find note %q: %w", noteID, err)
	}
	n := doc.toModel()
	return &n, nil
}

func (m *Mongo) UpdateByNoteID(ctx context.Context, noteID string, u models.NoteUpdate) (*models.Note, error) {
	// $max keeps updatedAt from moving backwards if clocks disagree.
	update := bson.D{{Key: "$max", Value: bson.D{{Key: "updatedAt", Value: u.UpdatedAt}}}}
	if u.Content != nil {
		update = append(update, bson.E{Key: "$set", Value: bson.D{{Key: "content", Value: *u.Content}}})
	}

	opts := options.FindOneAndUpdate().
		SetSort(oldestFirst).
		SetReturnDocument(options.After).
		SetUpsert(false)

	var doc noteDocument
	err := m.coll.FindOneAndUpdate(ctx, bson.D{{Key: "noteId", Value: noteID}},
		update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n := doc.toModel()
	return &n, nil
}

func (m *Mongo) DeleteByNoteID(ctx context.Context, noteID string) error {
	err := m.coll.FindOneAndDelete(ctx, bson.D{{Key: "noteId", Value: noteID}},
		options.FindOneAndDelete().SetSort(oldestFirst)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.coll.Database().Client().Ping(ctx, nil)
}
