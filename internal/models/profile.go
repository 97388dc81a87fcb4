package models

import (
	"time"

	"gorm.io/gorm"
)

// SocialPlatforms lists the keys accepted in Profile.Social.
var SocialPlatforms = []string{"youtube", "twitter", "facebook", "linkedin", "instagram"}

// Profile is the developer profile owned by exactly one Account.
type Profile struct {
	ID             string            `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	User           string            `gorm:"column:user_id;uniqueIndex;size:36;not null" json:"user" bson:"user"`
	Company        string            `json:"company,omitempty" bson:"company,omitempty"`
	Website        string            `json:"website,omitempty" bson:"website,omitempty"`
	Location       string            `json:"location,omitempty" bson:"location,omitempty"`
	Status         string            `gorm:"not null" json:"status" bson:"status"`
	Bio            string            `json:"bio,omitempty" bson:"bio,omitempty"`
	GitHubUsername string            `json:"githubusername,omitempty" bson:"githubusername,omitempty"`
	Skills         []string          `gorm:"serializer:json;type:text" json:"skills" bson:"skills"`
	Social         map[string]string `gorm:"serializer:json;type:text" json:"social" bson:"social"`
	Experience     []Experience      `gorm:"serializer:json;type:text" json:"experience" bson:"experience"`
	Education      []Education       `gorm:"serializer:json;type:text" json:"education" bson:"education"`
	Date           time.Time         `gorm:"not null" json:"date" bson:"date"`

	// Owner is filled on read paths and never stored.
	Owner *AccountRef `gorm:"-" json:"owner,omitempty" bson:"-"`
}

// Experience is one entry of Profile.Experience.
type Experience struct {
	ID          string     `json:"_id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Company     string     `json:"company" bson:"company"`
	Location    string     `json:"location,omitempty" bson:"location,omitempty"`
	From        time.Time  `json:"from" bson:"from"`
	To          *time.Time `json:"to" bson:"to"`
	Current     bool       `json:"current" bson:"current"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
}

// Education is one entry of Profile.Education.
type Education struct {
	ID           string     `json:"_id" bson:"_id"`
	School       string     `json:"school" bson:"school"`
	Degree       string     `json:"degree" bson:"degree"`
	FieldOfStudy string     `json:"field_of_study" bson:"field_of_study"`
	From         time.Time  `json:"from" bson:"from"`
	To           *time.Time `json:"to" bson:"to"`
	Current      bool       `json:"current" bson:"current"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
}

// NewProfile returns an empty profile for the owner with its lists initialized.
func NewProfile(owner string) *Profile {
	p := &Profile{User: CanonicalID(owner)}
	p.Prepare()
	return p
}

// BeforeCreate assigns generated fields before the first insert.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	p.Prepare()
	return nil
}

// Prepare fills ids, timestamps and nil collections.
func (p *Profile) Prepare() {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Social == nil {
		p.Social = map[string]string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

// AddExperience prepends the entry under a fresh sub-id and returns the stored entry.
func (p *Profile) AddExperience(e Experience) Experience {
	e.ID = NewID()
	p.Experience = prepend(p.Experience, e)
	return e
}

// RemoveExperience drops the entry with the given sub-id. It reports false when
// nothing matched, leaving the list untouched.
func (p *Profile) RemoveExperience(id string) bool {
	var ok bool
	p.Experience, ok = removeByID(p.Experience, id, func(e Experience) string { return e.ID })
	return ok
}

// AddEducation prepends the entry under a fresh sub-id and returns the stored entry.
func (p *Profile) AddEducation(e Education) Education {
	e.ID = NewID()
	p.Education = prepend(p.Education, e)
	return e
}

// RemoveEducation drops the entry with the given sub-id.
func (p *Profile) RemoveEducation(id string) bool {
	var ok bool
	p.Education, ok = removeByID(p.Education, id, func(e Education) string { return e.ID })
	return ok
}

func prepend[T any](list []T, item T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

func removeByID[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	for i := range list {
		if SameID(idOf(list[i]), id) {
			out := make([]T, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}
