package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rburdet/portfolio/internal/entity"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type WorkoutRepository interface {
	CreateOrUpdate(ctx context.Context, workout *entity.Workout) error
	GetByUserAndDate(ctx context.Context, userID, date string) (*entity.Workout, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Workout, error)
	ListDatesByUser(ctx context.Context, userID string) ([]string, error)
}

type dbWorkout struct {
	client *redis.Client
}

func NewWorkoutRepository(client *redis.Client) WorkoutRepository {
	return &dbWorkout{
		client: client,
	}
}

func (that *dbWorkout) CreateOrUpdate(ctx context.Context, workout *entity.Workout) error {
	workoutJSON, err := json.Marshal(workout)
	if err != nil {
		return fmt.Errorf("could not marshal workout: %w", err)
	}

	key := workoutKey(workout.UserID, workout.Date)
	if err = that.client.Set(ctx, key, workoutJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set workout: %w", err)
	}

	return nil
}

func (that *dbWorkout) GetByUserAndDate(ctx context.Context, userID, date string) (*entity.Workout, error) {
	response, err := that.client.Get(ctx, workoutKey(userID, date)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrWorkoutNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}

	var workout entity.Workout
	if err = json.Unmarshal([]byte(response), &workout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workout: %w", err)
	}

	return &workout, nil
}

func (that *dbWorkout) ListByUser(ctx context.Context, userID string) ([]*entity.Workout, error) {
	keys, err := that.scanKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	workouts := make([]*entity.Workout, 0, len(keys))
	for _, key := range keys {
		response, err := that.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// expired between scan and get
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get workout %s: %w", key, err)
		}

		var workout entity.Workout
		if err = json.Unmarshal([]byte(response), &workout); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workout %s: %w", key, err)
		}

		workouts = append(workouts, &workout)
	}

	return workouts, nil
}

func (that *dbWorkout) ListDatesByUser(ctx context.Context, userID string) ([]string, error) {
	keys, err := that.scanKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefix := workoutPrefix(userID)

	dates := make([]string, 0, len(keys))
	for _, key := range keys {
		dates = append(dates, strings.TrimPrefix(key, prefix))
	}

	return dates, nil
}

func (that *dbWorkout) scanKeys(ctx context.Context, userID string) ([]string, error) {
	var keys []string

	iter := that.client.Scan(ctx, 0, workoutPrefix(userID)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan workouts: %w", err)
	}

	return keys, nil
}

func workoutKey(userID, date string) string {
	return workoutPrefix(userID) + date
}

func workoutPrefix(userID string) string {
	return "workout:" + userID + ":"
}
