// ABOUTME: Repository interface for workout tracking storage.
// ABOUTME: Defines the contract for catalog, templates, sessions, sets and analytics.
package storage

import (
	"time"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

// Repository defines the storage interface for workout data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Exercise catalog
	CreateExercise(name, primaryMuscle string) (int64, error)
	GetExercise(id int64) (*models.Exercise, error)
	FindExercise(name string) (*models.Exercise, error)
	ListExercises() ([]models.Exercise, error)
	AddExerciseOption(exerciseID int64, name string) (int64, error)
	ListExerciseOptions(exerciseID int64) ([]models.ExerciseOption, error)
	DeleteExercise(id int64) (bool, error)

	// Templates
	CreateTemplate(name string) (int64, error)
	RenameTemplate(id int64, name string) error
	ListTemplates() ([]models.Template, error)
	GetTemplate(id int64) (*models.TemplateDetail, error)
	DeleteTemplate(id int64) error
	AddSlot(templateID int64, name string) (int64, error)
	DeleteSlot(slotID int64) error
	AddSlotOption(slotID, exerciseID int64, exerciseOptionID *int64) (int64, error)
	DeleteSlotOption(optionID int64) error
	ListSlotOptions(slotID int64) ([]models.TemplateSlotOption, error)
	UpsertPrescribedSet(p models.PrescribedSet) error
	ListPrescribedSets(slotID int64) ([]models.PrescribedSet, error)
	DeletePrescribedSet(slotID int64, setIndex int) error

	// Session lifecycle
	GetActiveDraft() (*models.Session, error)
	GetSession(id int64) (*models.Session, error)
	CreateDraftFromTemplate(templateID int64) (int64, error)
	ListDraftSlots(sessionID int64) ([]models.SessionSlotView, error)
	ListSessionSlotOptions(sessionSlotID int64) ([]models.SlotOptionView, error)
	SelectSlotChoice(sessionSlotID, templateSlotOptionID int64) (int64, error)
	DiscardDraft(sessionID int64) error
	FinalizeSession(sessionID int64) error
	UpdateSessionNotes(sessionID int64, notes string) error
	ListHistory(limit int) ([]models.SessionSummary, error)
	GetSessionDetail(sessionID int64) (*models.SessionDetail, error)
	ResolveSessionRef(ref string) (int64, error)

	// Set ledger
	ListSetsForChoice(choiceID int64) ([]models.SetRecord, error)
	UpsertSet(choiceID int64, setIndex int, in models.SetInput) (int64, error)
	ReplaceSets(choiceID int64, sets []models.SetInput) error
	DeleteSet(choiceID int64, setIndex int) error
	ToggleSetCompleted(setID int64, completed bool) error
	LastTimeForOption(templateSlotOptionID int64) (*models.LastPerformance, error)
	GenerateWarmupSets(choiceID int64, workingWeight float64, unit models.Unit) ([]models.SetRecord, error)
	AddDropSegment(setID int64, weight float64, reps int) (int64, error)
	UpdateDropSegment(segmentID int64, weight float64, reps int) error
	DeleteDropSegment(segmentID int64) error
	ListDropSegments(setID int64) ([]models.DropSegment, error)

	// Analytics
	E1RMHistory(exerciseID int64) ([]models.E1RMPoint, error)
	OverallStats() (*models.OverallStats, error)
	PerTemplateStats() ([]models.TemplateStats, error)
	WeeklyVolumeByMuscle() ([]models.MuscleVolume, error)
	WorkoutDaysMap() (map[string]int, error)
	CurrentStreak() (int, error)
	DetectAndRecordPRs(sessionID int64) ([]models.PersonalRecord, error)
	GetSessionPRs(sessionID int64) ([]models.PersonalRecord, error)
	PRCountsBySession() (map[int64]int, error)

	// Body weight
	AddBodyWeight(weight float64, unit models.Unit, measuredAt time.Time) (int64, error)
	ListBodyWeights(limit int) ([]models.BodyWeightEntry, error)
	DeleteBodyWeight(id int64) error

	// Export
	ExportYAML(since *time.Time) ([]byte, error)
	ExportMarkdown(since *time.Time) (string, error)

	// Backup
	Backup(dst string) (*BackupSummary, error)
	BackupPreview() (*BackupSummary, error)

	// Lifecycle
	SchemaVersion() (int, error)
	Path() string
	Close() error
}

var _ Repository = (*DB)(nil)
