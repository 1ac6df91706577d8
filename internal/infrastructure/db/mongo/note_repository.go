package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sharenotes/notes-api/internal/core/domain"
	"github.com/sharenotes/notes-api/internal/core/ports"
)

type NoteRepository struct {
	store *Store
}

func NewNoteRepository(store *Store) *NoteRepository {
	return &NoteRepository{store: store}
}

// noteDoc omits secretHash for public notes so the field is absent, not empty.
type noteDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Identifier  string             `bson:"identifier"`
	Slug        string             `bson:"slug"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Content     string             `bson:"content"`
	IsSecret    bool               `bson:"isSecret"`
	SecretHash  string             `bson:"secretHash,omitempty"`
	UserID      string             `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d noteDoc) toDomain() *domain.Note {
	return &domain.Note{
		ID:          d.ID.Hex(),
		Identifier:  d.Identifier,
		Slug:        d.Slug,
		Title:       d.Title,
		Description: d.Description,
		Content:     d.Content,
		IsSecret:    d.IsSecret,
		SecretHash:  d.SecretHash,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

var sortFields = map[domain.NoteSort]string{
	domain.SortCreated: "createdAt",
	domain.SortUpdated: "updatedAt",
	domain.SortTitle:   "title",
}

// caseInsensitive makes title ordering ignore case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	coll, err := r.store.collection(ctx, collectionNotes)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := noteDoc{
		ID:          primitive.NewObjectID(),
		Identifier:  n.Identifier,
		Slug:        n.Slug,
		Title:       n.Title,
		Description: n.Description,
		Content:     n.Content,
		IsSecret:    n.IsSecret,
		SecretHash:  n.SecretHash,
		UserID:      n.UserID,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, translateWriteErr("insert note", err,
			fmt.Errorf("%w: identifier %s", domain.ErrDuplicateEntity, n.Identifier))
	}
	return doc.toDomain(), nil
}

func (r *NoteRepository) FindBySlugOrIdentifier(ctx context.Context, value string) (*domain.Note, error) {
	coll, err := r.store.collection(ctx, collectionNotes)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc noteDoc
	if err := coll.FindOne(ctx, slugOrIdentifier(value)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByUser returns the user's notes narrowed and ordered by f.
func (r *NoteRepository) ListByUser(ctx context.Context, f ports.ListNotesFilter) ([]*domain.Note, error) {
	coll, err := r.store.collection(ctx, collectionNotes)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"userId": f.UserID}
	switch f.Visibility {
	case domain.VisibilityPublic:
		filter["isSecret"] = false
	case domain.VisibilitySecret:
		filter["isSecret"] = true
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"content": re},
		}
	}

	field, ok := sortFields[f.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := -1
	if f.Ascending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})
	if f.SortBy == domain.SortTitle {
		opts.SetCollation(caseInsensitive)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	var docs []noteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	notes := make([]*domain.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, d.toDomain())
	}
	return notes, nil
}

// UpdateByIdentifierAndUser applies patch to the note only when userID owns
// it. It returns nil when nothing matched.
func (r *NoteRepository) UpdateByIdentifierAndUser(ctx context.Context, identifier, userID string, patch domain.NotePatch) (*domain.Note, error) {
	coll, err := r.store.collection(ctx, collectionNotes)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc noteDoc
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"identifier": identifier, "userId": userID},
		updateDocument(patch),
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *NoteRepository) DeleteBySlugOrIdentifierAndUser(ctx context.Context, value, userID string) (bool, error) {
	coll, err := r.store.collection(ctx, collectionNotes)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := slugOrIdentifier(value)
	filter["userId"] = userID
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func slugOrIdentifier(value string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"slug": value},
		bson.M{"identifier": value},
	}}
}

// updateDocument translates a patch into $set and, for SecretClear, $unset.
func updateDocument(p domain.NotePatch) bson.M {
	set := bson.M{
		"title":       p.Title,
		"description": p.Description,
		"content":     p.Content,
		"isSecret":    p.IsSecret,
		"updatedAt":   p.UpdatedAt,
	}
	update := bson.M{"$set": set}
	switch p.Secret.Op {
	case domain.SecretSet:
		set["secretHash"] = p.Secret.Hash
	case domain.SecretClear:
		update["$unset"] = bson.M{"secretHash": ""}
	}
	return update
}
