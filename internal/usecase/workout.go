package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rburdet/portfolio/internal/entity"
)

var ErrMissingWorkoutFields = errors.New("missing required fields: userId, date, or dayId")

type workoutRepo interface {
	CreateOrUpdate(ctx context.Context, workout *entity.Workout) error
	GetByUserAndDate(ctx context.Context, userID, date string) (*entity.Workout, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Workout, error)
	ListDatesByUser(ctx context.Context, userID string) ([]string, error)
}

type WorkoutManager struct {
	logger      *slog.Logger
	workoutRepo workoutRepo
}

func NewWorkoutManager(logger *slog.Logger, workoutRepo workoutRepo) *WorkoutManager {
	return &WorkoutManager{
		logger:      logger.With("component", "workout_manager"),
		workoutRepo: workoutRepo,
	}
}

func (that *WorkoutManager) SaveWorkout(ctx context.Context, workout *entity.Workout) error {
	if workout.UserID == "" || workout.Date == "" || workout.DayID == "" {
		return ErrMissingWorkoutFields
	}

	if err := that.workoutRepo.CreateOrUpdate(ctx, workout); err != nil {
		return fmt.Errorf("failed to save workout: %w", err)
	}

	that.logger.Info("workout saved", "userID", workout.UserID, "date", workout.Date)

	return nil
}

func (that *WorkoutManager) GetWorkout(ctx context.Context, userID, date string) (*entity.Workout, error) {
	workout, err := that.workoutRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}

	return workout, nil
}

func (that *WorkoutManager) ListWorkouts(ctx context.Context, userID string) ([]*entity.Workout, error) {
	workouts, err := that.workoutRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	return workouts, nil
}

func (that *WorkoutManager) WorkoutHistory(ctx context.Context, userID string) ([]string, error) {
	dates, err := that.workoutRepo.ListDatesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workout history: %w", err)
	}

	return dates, nil
}
