// package models defines the data model for the dropzone client
package models

import (
	"time"
)

// Record is a row of the local upload history.
//
// Only [Session] exists today; pipeline values such as [DroppedFile] and [LogLine] are never stored.
type Record interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error // run before every insert and update
}

// Repository stores history records of one kind.
//
// List criteria keys are repository specific; unknown keys are ignored. Get, Update and Delete report a
// missing id with the repository's not-found error.
type Repository[T Record] interface {
	Create(record T) error
	Get(id string) (T, error)
	Update(record T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
