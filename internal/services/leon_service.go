package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"leon/internal/models"
	"leon/internal/store"
)

// Fixed values written by the learning and reflection updates
const (
	learnState      = "Analizando nueva información"
	learnLesson     = "La evolución requiere adaptación."
	learnColor      = "Verde"
	learnBond       = 0.2
	learnExperience = "León ha comprendido que la evolución requiere adaptación y aprendizaje constante."

	reflectState      = "Reflexionando"
	reflectLesson     = "El cambio es parte del crecimiento."
	reflectColor      = "Azul"
	reflectExperience = "León ha aprendido algo nuevo sobre el cambio."

	lessonExperiencePrefix = "León ha aprendido algo nuevo: "
)

// LeonService reads and evolves the singleton record
type LeonService struct {
	store store.LeonStore
	now   func() time.Time
}

// NewLeonService creates a new singleton service
func NewLeonService(leonStore store.LeonStore) *LeonService {
	return &LeonService{
		store: leonStore,
		now:   time.Now,
	}
}

// Status returns the current singleton (store.ErrNotFound when absent)
func (s *LeonService) Status(ctx context.Context) (*models.Leon, error) {
	return s.store.Get(ctx)
}

// Seed writes the initial record. With overwrite=false an existing record wins.
func (s *LeonService) Seed(ctx context.Context, overwrite bool) (bool, error) {
	created, err := s.store.Create(ctx, models.NewSeedLeon(s.now()), overwrite)
	if err != nil {
		return false, fmt.Errorf("failed to seed singleton: %w", err)
	}
	if created {
		GetMetrics().RecordLeonUpdate("seed", 0)
		log.Printf("🦁 [LEON] Singleton seeded (overwrite=%v)", overwrite)
	} else {
		log.Printf("🦁 [LEON] Singleton already present, seed skipped")
	}
	return created, nil
}

// Learn applies the fixed learning update
func (s *LeonService) Learn(ctx context.Context) (*models.Leon, error) {
	state, lesson, color, bond := learnState, learnLesson, learnColor, learnBond
	return s.update(ctx, "learn", models.LeonUpdate{
		CurrentState: &state,
		LastLesson:   &lesson,
		CurrentColor: &color,
		BondStrength: &bond,
		NewExperiences: []models.Experience{
			{Event: learnExperience, Date: s.now()},
		},
	})
}

// Reflect applies the fixed reflection update run after boot
func (s *LeonService) Reflect(ctx context.Context) (*models.Leon, error) {
	state, lesson, color := reflectState, reflectLesson, reflectColor
	return s.update(ctx, "reflect", models.LeonUpdate{
		CurrentState: &state,
		LastLesson:   &lesson,
		CurrentColor: &color,
		NewExperiences: []models.Experience{
			{Event: reflectExperience, Date: s.now()},
		},
	})
}

// Apply validates a client patch and applies it. A lesson also appends the
// experience "León ha aprendido algo nuevo: <lesson>".
func (s *LeonService) Apply(ctx context.Context, patch models.LeonPatch) (*models.Leon, error) {
	update, err := patchToUpdate(patch, s.now())
	if err != nil {
		return nil, err
	}
	return s.update(ctx, "apply", update)
}

func (s *LeonService) update(ctx context.Context, kind string, update models.LeonUpdate) (*models.Leon, error) {
	leon, err := s.store.Update(ctx, update)
	if err != nil {
		return nil, err
	}
	GetMetrics().RecordLeonUpdate(kind, len(update.NewExperiences))
	return leon, nil
}

func patchToUpdate(patch models.LeonPatch, now time.Time) (models.LeonUpdate, error) {
	var update models.LeonUpdate

	if patch.State != nil {
		state := strings.TrimSpace(*patch.State)
		if state == "" {
			return update, fmt.Errorf("%w: estado must not be empty", ErrValidation)
		}
		update.CurrentState = &state
	}

	if patch.Energy != nil {
		if *patch.Energy < models.MinEnergy || *patch.Energy > models.MaxEnergy {
			return update, fmt.Errorf("%w: energia must be between %d and %d", ErrValidation, models.MinEnergy, models.MaxEnergy)
		}
		update.Energy = patch.Energy
	}

	if patch.Lesson != nil {
		lesson := strings.TrimSpace(*patch.Lesson)
		if lesson == "" {
			return update, fmt.Errorf("%w: aprendizaje must not be empty", ErrValidation)
		}
		update.LastLesson = &lesson
		update.NewExperiences = []models.Experience{
			{Event: lessonExperiencePrefix + lesson, Date: now},
		}
	}

	if patch.Color != nil {
		color := strings.TrimSpace(*patch.Color)
		if color == "" {
			return update, fmt.Errorf("%w: color must not be empty", ErrValidation)
		}
		update.CurrentColor = &color
	}

	if patch.BondStrength != nil {
		if *patch.BondStrength < models.MinBondStrength || *patch.BondStrength > models.MaxBondStrength {
			return update, fmt.Errorf("%w: vinculo must be between %.1f and %.1f", ErrValidation, models.MinBondStrength, models.MaxBondStrength)
		}
		update.BondStrength = patch.BondStrength
	}

	if update.IsEmpty() {
		return update, fmt.Errorf("%w: at least one of estado, energia, aprendizaje, color or vinculo is required", ErrValidation)
	}

	update.ExpectedVersion = patch.Version
	return update, nil
}
