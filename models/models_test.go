package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/wellness-coach/pkg"
)

func validationKey(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
	return verr.Key
}

func TestFlexStringUnmarshal(t *testing.T) {
	var rec FoodLog
	err := json.Unmarshal([]byte(`{"id": 7, "food_item": "apple", "calories": "95", "protein": 0.5, "fat": null}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, FlexString("7"), rec.ID)
	assert.Equal(t, FlexString("95"), rec.Calories)
	assert.Equal(t, FlexString("0.5"), rec.Protein)
	assert.Equal(t, FlexString(""), rec.Fat)
}

func TestFlexStringMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}{"42", "Approx. 350 kcal", ""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":42,"b":"Approx. 350 kcal","c":null}`, string(out))
}

func TestCredentialsValidate(t *testing.T) {
	c := Credentials{Username: "  alice ", Password: "pw"}
	require.NoError(t, c.Validate())
	assert.Equal(t, "alice", c.Username)

	for _, c := range []Credentials{{Username: "a"}, {Password: "b"}, {Username: "   ", Password: "b"}} {
		assert.Equal(t, "auth.fieldsRequired", validationKey(t, c.Validate()))
	}
}

func TestFoodDraftValidate(t *testing.T) {
	_, err := FoodDraft{FoodItem: " "}.Validate()
	assert.Equal(t, "food.required", validationKey(t, err))

	for _, raw := range []string{"lots", "NaN", "Inf"} {
		_, err = FoodDraft{FoodItem: "rice", Calories: raw}.Validate()
		assert.Equal(t, "food.invalidNumber", validationKey(t, err), raw)
	}

	_, err = ExerciseDraft{ExerciseType: "run", Duration: "Infinity"}.Validate("1")
	assert.Equal(t, "exercise.invalidNumber", validationKey(t, err))

	req, err := FoodDraft{FoodItem: "rice", Calories: "200", Fat: "1.5"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "rice", req.FoodItem)
	require.NotNil(t, req.Calories)
	assert.Equal(t, 200.0, *req.Calories)
	assert.Nil(t, req.Protein)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"food_item":"rice","calories":200,"protein":null,"carbs":null,"fat":1.5}`, string(body))
}

func TestWaterDraftValidate(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-5", "NaN", "Inf", "+Infinity", "-inf"} {
		_, err := WaterDraft{Amount: raw}.Validate()
		assert.Equal(t, "water.invalid", validationKey(t, err), raw)
	}

	req, err := WaterDraft{Amount: "250"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, 250.0, req.Amount)
	assert.Equal(t, 250.0, req.AmountML)
}

func TestExerciseDraftValidate(t *testing.T) {
	_, err := ExerciseDraft{ExerciseType: "run"}.Validate("1")
	assert.Equal(t, "exercise.required", validationKey(t, err))

	_, err = ExerciseDraft{Duration: "30"}.Validate("1")
	assert.Equal(t, "exercise.required", validationKey(t, err))

	_, err = ExerciseDraft{ExerciseType: "run", Duration: "half"}.Validate("1")
	assert.Equal(t, "exercise.invalidNumber", validationKey(t, err))

	req, err := ExerciseDraft{ExerciseType: "run", Duration: "30"}.Validate("1")
	require.NoError(t, err)
	assert.Equal(t, FlexString("1"), req.UserID)
	assert.Equal(t, 30.0, req.DurationMinutes)
	assert.Nil(t, req.CaloriesBurned)
}

func TestCoachDraftValidate(t *testing.T) {
	_, err := CoachDraft{Prompt: "  "}.Validate()
	assert.Equal(t, "coach.required", validationKey(t, err))

	p, err := CoachDraft{Prompt: " hi "}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "hi", p)
}

func TestTranscriptAlternates(t *testing.T) {
	var tr Transcript
	tr.AppendExchange("q1", "a1")
	tr.AppendExchange("q2", "a2")

	require.Len(t, tr.Entries, 4)
	for i, e := range tr.Entries {
		if i%2 == 0 {
			assert.Equal(t, EntryUser, e.Kind)
		} else {
			assert.Equal(t, EntryAssistant, e.Kind)
		}
	}
}

func TestLogDisplayFallbacks(t *testing.T) {
	assert.Equal(t, "500", WaterLog{AmountML: "500"}.Milliliters())
	assert.Equal(t, "250", WaterLog{Amount: "250", AmountML: "500"}.Milliliters())
	assert.Equal(t, "45", ExerciseLog{DurationMinutes: "45"}.Minutes())
	assert.Equal(t, []int{1, 2, 3}, Recent([]int{1, 2, 3, 4}, 3))
	assert.Equal(t, []int{1}, Recent([]int{1}, 3))
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, s.IsExpired(now))
	assert.Equal(t, time.Minute, s.TTL(now))
	assert.True(t, s.IsExpired(now.Add(time.Minute)))
	assert.Zero(t, s.TTL(now.Add(2*time.Minute)))
}
