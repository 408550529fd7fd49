package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
)

func TestDashboardLoadsAllLists(t *testing.T) {
	h := newHarness(t)
	scope, _ := h.login(t)
	svc := NewLogService(h.client, zap.NewNop())

	h.backend.Food = []map[string]any{{"food_item": "apple", "calories": 95}}
	h.backend.Water = []map[string]any{{"amount": 250}}
	h.backend.Exercise = []map[string]any{{"exercise_type": "run", "duration": 30}}

	dash, err := svc.Dashboard(context.Background(), scope)
	require.NoError(t, err)
	assert.Len(t, dash.Food, 1)
	assert.Len(t, dash.Water, 1)
	assert.Len(t, dash.Exercise, 1)
	assert.False(t, dash.FoodFailed || dash.WaterFailed || dash.ExerciseFailed)
}

func TestDashboardIsolatesListFailures(t *testing.T) {
	h := newHarness(t)
	scope, _ := h.login(t)
	svc := NewLogService(h.client, zap.NewNop())

	h.backend.Food = []map[string]any{{"food_item": "apple"}}
	h.backend.FailWith("/user/logs/water", http.StatusInternalServerError, `{"error":"db down"}`)

	dash, err := svc.Dashboard(context.Background(), scope)
	require.NoError(t, err)
	assert.False(t, dash.FoodFailed)
	assert.True(t, dash.WaterFailed)
	assert.False(t, dash.ExerciseFailed)
	assert.Len(t, dash.Food, 1)
}

func TestDashboardPropagatesUnauthorized(t *testing.T) {
	h := newHarness(t)
	scope, _ := h.login(t)
	svc := NewLogService(h.client, zap.NewNop())

	h.backend.ExpireSessions()
	_, err := svc.Dashboard(context.Background(), scope)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestLogOperationsRequireSession(t *testing.T) {
	h := newHarness(t)
	scope := h.sessions.Open(context.Background(), "", nil)
	svc := NewLogService(h.client, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, scope)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	assert.ErrorIs(t, svc.LogWater(ctx, scope, models.WaterDraft{Amount: "100"}), pkg.ErrUnauthorized)
	assert.Zero(t, h.backend.TotalHits())
}

func TestLogWritesValidateFirst(t *testing.T) {
	h := newHarness(t)
	scope, _ := h.login(t)
	svc := NewLogService(h.client, zap.NewNop())
	ctx := context.Background()
	before := h.backend.TotalHits()

	tests := []struct {
		name string
		run  func() error
		key  string
	}{
		{"food item", func() error { return svc.LogFood(ctx, scope, models.FoodDraft{Calories: "10"}) }, "food.required"},
		{"food number", func() error { return svc.LogFood(ctx, scope, models.FoodDraft{FoodItem: "egg", Fat: "lots"}) }, "food.invalidNumber"},
		{"water empty", func() error { return svc.LogWater(ctx, scope, models.WaterDraft{}) }, "water.invalid"},
		{"water negative", func() error { return svc.LogWater(ctx, scope, models.WaterDraft{Amount: "-5"}) }, "water.invalid"},
		{"exercise type", func() error { return svc.LogExercise(ctx, scope, models.ExerciseDraft{Duration: "10"}) }, "exercise.required"},
		{"nutrition", func() error { _, err := svc.Nutrition(ctx, scope, "  "); return err }, "food.required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *models.ValidationError
			require.ErrorAs(t, tt.run(), &verr)
			assert.Equal(t, tt.key, verr.Key)
		})
	}
	assert.Equal(t, before, h.backend.TotalHits())
}

func TestLogExerciseUsesSessionUser(t *testing.T) {
	h := newHarness(t)
	scope, _ := h.login(t)
	svc := NewLogService(h.client, zap.NewNop())

	err := svc.LogExercise(context.Background(), scope, models.ExerciseDraft{ExerciseType: "yoga", Duration: "45", CaloriesBurned: "120"})
	require.NoError(t, err)

	body := h.backend.LastBody("/log_exercise")
	assert.Equal(t, "yoga", body["exercise_type"])
	assert.Equal(t, 45.0, body["duration_minutes"])
	assert.Equal(t, 120.0, body["calories_burned"])
	assert.Equal(t, 1.0, body["user_id"])
}

func TestNutrition(t *testing.T) {
	h := newHarness(t)
	scope, _ := h.login(t)
	svc := NewLogService(h.client, zap.NewNop())

	info, err := svc.Nutrition(context.Background(), scope, " pasta ")
	require.NoError(t, err)
	assert.Equal(t, models.FlexString("Approx. 350 kcal"), info.Calories)
	assert.Equal(t, "pasta", h.backend.LastBody("/get_nutrition")["food_description"])
}
