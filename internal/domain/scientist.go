package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Scientist is the persisted profile record. ImageID holds the object-store
// key of the uploaded portrait, never a browser-usable URL; URLs are derived
// at serialization time.
type Scientist struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string        `json:"name" bson:"name"`
	Subject      string        `json:"subject" bson:"subject"`
	Title        string        `json:"title,omitempty" bson:"title,omitempty"`
	Description  string        `json:"description,omitempty" bson:"description,omitempty"`
	Achievements string        `json:"achievements,omitempty" bson:"achievements,omitempty"`
	BirthYear    string        `json:"birthYear,omitempty" bson:"birth_year,omitempty"`
	DeathYear    string        `json:"deathYear,omitempty" bson:"death_year,omitempty"`
	Color        string        `json:"color" bson:"color"`
	ImageID      string        `json:"-" bson:"image_id"`
	CreatedAt    time.Time     `json:"createdAt" bson:"created_at"`
}

// ScientistView is the response shape: the record plus URLs derived from
// ImageID. Never stored.
type ScientistView struct {
	Scientist
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail"`
}

// ScientistUpdate carries a partial update; nil fields are left unchanged.
type ScientistUpdate struct {
	Name         *string
	Subject      *string
	Title        *string
	Description  *string
	Achievements *string
	BirthYear    *string
	DeathYear    *string
	Color        *string
}
