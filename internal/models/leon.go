package models

import (
	"time"
)

// LeonID is the fixed document ID of the singleton record
const LeonID = "leon"

// Energy and bond bounds accepted from clients
const (
	MinEnergy       = 0
	MaxEnergy       = 100
	MinBondStrength = 0.0
	MaxBondStrength = 1.0
)

// Experience is one entry of León's append-only experience log
type Experience struct {
	Event string    `bson:"evento" json:"evento"`
	Date  time.Time `bson:"fecha" json:"fecha"`
}

// Leon represents the singleton state document.
// Wire names are kept in Spanish for compatibility with existing clients.
type Leon struct {
	ID           string       `bson:"_id" json:"-"`
	Name         string       `bson:"nombre" json:"nombre"`
	Level        string       `bson:"nivel" json:"nivel"`
	CurrentState string       `bson:"estado_actual" json:"estado_actual"`
	LastLesson   string       `bson:"ultimo_aprendizaje" json:"ultimo_aprendizaje"`
	Symbolism    string       `bson:"simbologia" json:"simbologia"`
	Energy       int          `bson:"energia" json:"energia"`
	CurrentColor string       `bson:"color_actual" json:"color_actual"`
	BondStrength float64      `bson:"vinculo" json:"vinculo"`
	Experiences  []Experience `bson:"experiencias" json:"experiencias"`
	CreatedAt    time.Time    `bson:"creadoEn" json:"creadoEn"`

	// Bookkeeping (incremented on every write, used for optimistic concurrency)
	Version   int64      `bson:"version" json:"version"`
	UpdatedAt *time.Time `bson:"actualizadoEn,omitempty" json:"actualizadoEn,omitempty"`
}

// NewSeedLeon returns the initial state written on first boot
func NewSeedLeon(now time.Time) *Leon {
	return &Leon{
		ID:           LeonID,
		Name:         "León",
		Level:        "Inicial",
		CurrentState: "Aprendiendo",
		LastLesson:   "Comprendí que cada acción tiene una consecuencia.",
		Symbolism:    "Un ser de luz en crecimiento.",
		Energy:       100,
		CurrentColor: "Blanco",
		BondStrength: 0.1,
		Experiences:  []Experience{},
		CreatedAt:    now,
		Version:      1,
	}
}

// LeonUpdate describes an atomic mutation of the singleton.
// Nil fields are left untouched; NewExperiences are appended, never replaced.
type LeonUpdate struct {
	CurrentState   *string
	LastLesson     *string
	Energy         *int
	CurrentColor   *string
	BondStrength   *float64
	NewExperiences []Experience

	// ExpectedVersion rejects the update when the stored version differs
	ExpectedVersion *int64
}

// IsEmpty reports whether the update would change nothing
func (u LeonUpdate) IsEmpty() bool {
	return u.CurrentState == nil &&
		u.LastLesson == nil &&
		u.Energy == nil &&
		u.CurrentColor == nil &&
		u.BondStrength == nil &&
		len(u.NewExperiences) == 0
}

// Apply mutates l in place. Stores without native field operators use it
// inside their own atomic section.
func (u LeonUpdate) Apply(l *Leon, now time.Time) {
	if u.CurrentState != nil {
		l.CurrentState = *u.CurrentState
	}
	if u.LastLesson != nil {
		l.LastLesson = *u.LastLesson
	}
	if u.Energy != nil {
		l.Energy = *u.Energy
	}
	if u.CurrentColor != nil {
		l.CurrentColor = *u.CurrentColor
	}
	if u.BondStrength != nil {
		l.BondStrength = *u.BondStrength
	}
	l.Experiences = append(l.Experiences, u.NewExperiences...)
	l.Version++
	l.UpdatedAt = &now
}

// Clone returns a deep copy
func (l *Leon) Clone() *Leon {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Experiences = make([]Experience, len(l.Experiences))
	copy(cp.Experiences, l.Experiences)
	if l.UpdatedAt != nil {
		t := *l.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}

// LeonPatch is the client-supplied update accepted by POST /leon
type LeonPatch struct {
	State        *string  `json:"estado"`
	Energy       *int     `json:"energia"`
	Lesson       *string  `json:"aprendizaje"`
	Color        *string  `json:"color"`
	BondStrength *float64 `json:"vinculo"`
	Version      *int64   `json:"version"` // Optional optimistic-concurrency guard
}
