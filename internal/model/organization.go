package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a tenant record. CollectionName is always derived from
// OrganizationName and names the tenant's partition.
type Organization struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationName string             `bson:"organization_name" json:"organization_name"`
	CollectionName   string             `bson:"collection_name" json:"collection_name"`
	AdminID          primitive.ObjectID `bson:"admin_id" json:"admin_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (o *Organization) GetID() primitive.ObjectID   { return o.ID }
func (o *Organization) SetID(id primitive.ObjectID) { o.ID = id }

// OrganizationResponse is the public view of an organization
type OrganizationResponse struct {
	ID               string    `json:"id"`
	OrganizationName string    `json:"organization_name"`
	CollectionName   string    `json:"collection_name"`
	AdminID          string    `json:"admin_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToResponse converts Organization to OrganizationResponse
func (o *Organization) ToResponse() OrganizationResponse {
	return OrganizationResponse{
		ID:               o.ID.Hex(),
		OrganizationName: o.OrganizationName,
		CollectionName:   o.CollectionName,
		AdminID:          o.AdminID.Hex(),
		CreatedAt:        o.CreatedAt,
	}
}

// OrganizationUpdate carries the optional fields of an update. Nil means
// "leave untouched".
type OrganizationUpdate struct {
	OrganizationName *string
	AdminEmail       *string
	AdminPassword    *string
}

// Empty reports whether the update carries no fields at all.
func (u OrganizationUpdate) Empty() bool {
	return u.OrganizationName == nil && u.AdminEmail == nil && u.AdminPassword == nil
}
