package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionUsers   = "users"
	collectionNotes   = "notes"
	collectionInvites = "invites"
)

var indexes = map[string][]mongo.IndexModel{
	collectionUsers: {
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	collectionNotes: {
		{Keys: bson.D{{Key: "identifier", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	collectionInvites: {
		{Keys: bson.D{{Key: "code", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	},
}
