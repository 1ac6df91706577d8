package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sharenotes/notes-api/internal/core/domain"
)

type InviteRepository struct {
	store *Store
}

func NewInviteRepository(store *Store) *InviteRepository {
	return &InviteRepository{store: store}
}

type inviteDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Code      string             `bson:"code"`
	CreatedBy string             `bson:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt"`
	IsUsed    bool               `bson:"isUsed"`
	UsedBy    string             `bson:"usedBy,omitempty"`
	UsedAt    *time.Time         `bson:"usedAt,omitempty"`
	ExpiresAt *time.Time         `bson:"expiresAt,omitempty"`
}

func (d inviteDoc) toDomain() *domain.Invite {
	return &domain.Invite{
		ID:        d.ID.Hex(),
		Code:      d.Code,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt.UTC(),
		IsUsed:    d.IsUsed,
		UsedBy:    d.UsedBy,
		UsedAt:    utcPtr(d.UsedAt),
		ExpiresAt: utcPtr(d.ExpiresAt),
	}
}

func (r *InviteRepository) Create(ctx context.Context, inv *domain.Invite) (*domain.Invite, error) {
	coll, err := r.store.collection(ctx, collectionInvites)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := inviteDoc{
		ID:        primitive.NewObjectID(),
		Code:      inv.Code,
		CreatedBy: inv.CreatedBy,
		CreatedAt: inv.CreatedAt,
		IsUsed:    inv.IsUsed,
		UsedBy:    inv.UsedBy,
		UsedAt:    inv.UsedAt,
		ExpiresAt: inv.ExpiresAt,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, translateWriteErr("insert invite", err, domain.ErrDuplicateEntity)
	}
	return doc.toDomain(), nil
}

func (r *InviteRepository) FindActiveByCode(ctx context.Context, code string, now time.Time) (*domain.Invite, error) {
	coll, err := r.store.collection(ctx, collectionInvites)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc inviteDoc
	if err := coll.FindOne(ctx, activeCode(code, now)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return doc.toDomain(), nil
}

// MarkUsed consumes the invite with a single conditional update. It reports
// false when the invite is no longer active.
func (r *InviteRepository) MarkUsed(ctx context.Context, code, usedBy string, now time.Time) (bool, error) {
	coll, err := r.store.collection(ctx, collectionInvites)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := coll.UpdateOne(ctx, activeCode(code, now), bson.M{"$set": bson.M{
		"isUsed": true,
		"usedBy": usedBy,
		"usedAt": now.UTC(),
	}})
	if err != nil {
		return false, fmt.Errorf("mark invite used: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *InviteRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Invite, error) {
	coll, err := r.store.collection(ctx, collectionInvites)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := coll.Find(ctx, bson.M{"createdBy": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	var docs []inviteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}

	invites := make([]*domain.Invite, 0, len(docs))
	for _, d := range docs {
		invites = append(invites, d.toDomain())
	}
	return invites, nil
}

func (r *InviteRepository) DeleteByIDAndCreator(ctx context.Context, id, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	coll, err := r.store.collection(ctx, collectionInvites)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid, "createdBy": userID})
	if err != nil {
		return false, fmt.Errorf("delete invite: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// activeCode matches an unused invite that has no expiry or expires after now.
func activeCode(code string, now time.Time) bson.M {
	return bson.M{
		"code":   code,
		"isUsed": false,
		"$or": bson.A{
			bson.M{"expiresAt": nil},
			bson.M{"expiresAt": bson.M{"$gt": now.UTC()}},
		},
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
