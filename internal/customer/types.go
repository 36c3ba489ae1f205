package customer

import "time"

// MaxFacesPerPerson caps how many face embeddings a single customer record
// may hold. Appends beyond the cap are truncated by the store.
const MaxFacesPerPerson = 10

// Record represents a customer known to the front desk.
// Identity fields are optional; an empty string means the field has not
// been captured yet.
type Record struct {
	ID string

	// Face embeddings in insertion order, capped at MaxFacesPerPerson.
	Embeddings [][]float32

	// References to stored face images.
	FaceImages []string

	FullName         string
	Email            string
	Phone            string
	IDNumber         string
	DateOfBirth      string
	Gender           string
	Nationality      string
	PlaceOfOrigin    string
	PlaceOfResidence string
	IDImage          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldUpdate is a partial update of a record's identity fields.
// Nil pointers leave the corresponding field untouched.
type FieldUpdate struct {
	FullName         *string
	Email            *string
	Phone            *string
	IDNumber         *string
	DateOfBirth      *string
	Gender           *string
	Nationality      *string
	PlaceOfOrigin    *string
	PlaceOfResidence *string
	IDImage          *string
}

// IsEmpty reports whether the update touches no fields.
func (u FieldUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.Phone == nil &&
		u.IDNumber == nil && u.DateOfBirth == nil && u.Gender == nil &&
		u.Nationality == nil && u.PlaceOfOrigin == nil &&
		u.PlaceOfResidence == nil && u.IDImage == nil
}

// Apply writes the set fields onto a record.
func (u FieldUpdate) Apply(r *Record) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.FullName, u.FullName)
	set(&r.Email, u.Email)
	set(&r.Phone, u.Phone)
	set(&r.IDNumber, u.IDNumber)
	set(&r.DateOfBirth, u.DateOfBirth)
	set(&r.Gender, u.Gender)
	set(&r.Nationality, u.Nationality)
	set(&r.PlaceOfOrigin, u.PlaceOfOrigin)
	set(&r.PlaceOfResidence, u.PlaceOfResidence)
	set(&r.IDImage, u.IDImage)
}
