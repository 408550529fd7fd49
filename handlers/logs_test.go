package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/wellness"
	"github.com/akinalp/wellness-coach/services"
	"github.com/akinalp/wellness-coach/static"
)

// stubLogs, LogService'i karşılar; her yazma çağrısı err döner.
type stubLogs struct {
	err error
}

func (s *stubLogs) Dashboard(context.Context, services.Caller) (*models.Dashboard, error) {
	return &models.Dashboard{}, s.err
}
func (s *stubLogs) LogFood(context.Context, services.Caller, models.FoodDraft) error { return s.err }
func (s *stubLogs) LogWater(_ context.Context, _ services.Caller, d models.WaterDraft) error {
	if _, err := d.Validate(); err != nil {
		return err
	}
	return s.err
}
func (s *stubLogs) LogExercise(context.Context, services.Caller, models.ExerciseDraft) error {
	return s.err
}
func (s *stubLogs) Nutrition(context.Context, services.Caller, string) (*models.NutritionInfo, error) {
	return nil, s.err
}

func postWater(t *testing.T, h *LogHandler, amount string) string {
	t.Helper()
	form := url.Values{"amount": {amount}}
	req := httptest.NewRequest(http.MethodPost, "/log/water", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.LogWater(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestLogWaterMessages(t *testing.T) {
	rd, err := NewRenderer(static.Templates(), zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name   string
		amount string
		err    error
		want   string
	}{
		{"backend message", "250", &wellness.APIError{Status: 400, Message: "Too much"}, "Error logging water: Too much"},
		{"backend status only", "250", &wellness.APIError{Status: 500}, "Error logging water: Internal Server Error"},
		{"network", "250", fmt.Errorf("post: %w", pkg.ErrUnavailable), "An error occurred while logging water."},
		{"unexpected", "250", errors.New("boom"), "Failed to log water."},
		{"not a number", "NaN", nil, "Please enter a valid water amount."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := postWater(t, NewLogHandler(rd, &stubLogs{err: tt.err}), tt.amount)
			assert.Contains(t, body, tt.want)
			assert.NotContains(t, body, "{{message}}")
			assert.Contains(t, body, fmt.Sprintf(`value="%s"`, tt.amount))
		})
	}
}
