package generic

import "go.mongodb.org/mongo-driver/bson/primitive"

// Entity is implemented by every document stored through MongoBaseRepository.
// SetID is called by Create before insert.
type Entity interface {
	GetID() primitive.ObjectID
	SetID(primitive.ObjectID)
}
