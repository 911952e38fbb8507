package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rburdet/portfolio/internal/entity"
	"github.com/rburdet/portfolio/internal/repository"
	"github.com/rburdet/portfolio/internal/usecase"
)

type workoutService interface {
	SaveWorkout(ctx context.Context, workout *entity.Workout) error
	GetWorkout(ctx context.Context, userID, date string) (*entity.Workout, error)
	ListWorkouts(ctx context.Context, userID string) ([]*entity.Workout, error)
	WorkoutHistory(ctx context.Context, userID string) ([]string, error)
}

type Handlers struct {
	logger         *slog.Logger
	workoutService workoutService
}

func NewHandlers(logger *slog.Logger, workoutService workoutService) *Handlers {
	return &Handlers{
		logger:         logger.With("component", "rest_handlers"),
		workoutService: workoutService,
	}
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Workout - POST stores one logged session, GET returns one session by
// date or every session for the user.
func (that *Handlers) Workout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		that.saveWorkout(w, r)
	case http.MethodGet:
		that.getWorkouts(w, r)
	default:
		that.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (that *Handlers) WorkoutHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		that.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		that.writeError(w, http.StatusBadRequest, "Missing required parameter: userId")
		return
	}

	dates, err := that.workoutService.WorkoutHistory(r.Context(), userID)
	if err != nil {
		that.logger.Error("failed to fetch workout history", "error", err)
		that.writeError(w, http.StatusInternalServerError, "Failed to fetch workout history")
		return
	}

	if dates == nil {
		dates = []string{}
	}

	that.writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

func (that *Handlers) saveWorkout(w http.ResponseWriter, r *http.Request) {
	var workout entity.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		that.writeError(w, http.StatusBadRequest, "Failed to process workout data")
		return
	}

	if err := that.workoutService.SaveWorkout(r.Context(), &workout); err != nil {
		if errors.Is(err, usecase.ErrMissingWorkoutFields) {
			that.writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		that.logger.Error("failed to save workout", "error", err)
		that.writeError(w, http.StatusInternalServerError, "Failed to save workout data")
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Workout saved successfully",
	})
}

func (that *Handlers) getWorkouts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		that.writeError(w, http.StatusBadRequest, "Missing required parameter: userId")
		return
	}

	if date := r.URL.Query().Get("date"); date != "" {
		workout, err := that.workoutService.GetWorkout(r.Context(), userID, date)
		if errors.Is(err, repository.ErrWorkoutNotFound) {
			that.writeError(w, http.StatusNotFound, "Workout not found")
			return
		}
		if err != nil {
			that.logger.Error("failed to get workout", "error", err)
			that.writeError(w, http.StatusInternalServerError, "Failed to retrieve workout data")
			return
		}

		that.writeJSON(w, http.StatusOK, workout)
		return
	}

	workouts, err := that.workoutService.ListWorkouts(r.Context(), userID)
	if err != nil {
		that.logger.Error("failed to list workouts", "error", err)
		that.writeError(w, http.StatusInternalServerError, "Failed to retrieve workout data")
		return
	}

	if workouts == nil {
		workouts = []*entity.Workout{}
	}

	that.writeJSON(w, http.StatusOK, map[string]any{"workouts": workouts})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, map[string]string{"error": message})
}
