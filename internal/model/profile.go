package model

// ProfileID is the fixed key of the one and only profile row.
const ProfileID = "1"

// UserProfile is the single user's contact and identity record.
//
// PhotoRef and Location are filled in by capture collaborators (camera,
// geolocation) and stored verbatim; nil means "never captured".
type UserProfile struct {
	ID         string  `json:"id"         db:"id"`
	Name       string  `json:"name"       db:"name"`
	NationalID string  `json:"nationalId" db:"national_id"`
	Email      string  `json:"email"      db:"email"`
	Phone      string  `json:"phone"      db:"phone"`
	Address    string  `json:"address"    db:"address"`
	PhotoRef   *string `json:"photoRef"   db:"photo_ref"`
	Location   *string `json:"location"   db:"location"`
}

// DefaultProfile returns the demo record seeded when the schema is created.
func DefaultProfile() UserProfile {
	return UserProfile{
		ID:         ProfileID,
		Name:       "Juan Pérez González",
		NationalID: "12.345.678-9",
		Email:      "juan.perez@email.com",
		Phone:      "+56 9 8765 4321",
		Address:    "Av. Libertador Bernardo O'Higgins 1234, Santiago",
	}
}

// WithPhoto returns a copy of p carrying ref as its photo reference.
func (p UserProfile) WithPhoto(ref string) UserProfile {
	p.PhotoRef = &ref
	return p
}

// WithLocation returns a copy of p carrying label as its last known location.
func (p UserProfile) WithLocation(label string) UserProfile {
	p.Location = &label
	return p
}

// SameFields reports whether p and o agree on every mutable field.
// The ID is ignored.
func (p UserProfile) SameFields(o UserProfile) bool {
	return p.Name == o.Name &&
		p.NationalID == o.NationalID &&
		p.Email == o.Email &&
		p.Phone == o.Phone &&
		p.Address == o.Address &&
		equalOptional(p.PhotoRef, o.PhotoRef) &&
		equalOptional(p.Location, o.Location)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
