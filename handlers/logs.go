package handlers

import (
	"net/http"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg/i18n"
	"github.com/akinalp/wellness-coach/services"
)

// DashboardContent, dashboard şablonunun verisi. Listeler önizleme
// uzunluğuna kısaltılmıştır.
type DashboardContent struct {
	Food           []models.FoodLog
	Water          []models.WaterLog
	Exercise       []models.ExerciseLog
	FoodFailed     bool
	WaterFailed    bool
	ExerciseFailed bool
}

// FoodContent, Log-Food sayfasının verisi.
type FoodContent struct {
	Draft     models.FoodDraft
	Nutrition *models.NutritionInfo
}

// LogHandler, dashboard ve log formlarını yönetir.
type LogHandler struct {
	render *Renderer
	logs   services.LogService
}

// NewLogHandler, constructor.
func NewLogHandler(render *Renderer, logs services.LogService) *LogHandler {
	return &LogHandler{render: render, logs: logs}
}

// Dashboard godoc
// GET /dashboard
func (h *LogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.logs.Dashboard(r.Context(), ScopeFrom(r))
	if err != nil {
		if sessionExpired(w, r, err) {
			return
		}
		// Sadece oturumsuz çağrıda buraya düşülür; guard bunu engeller.
		dash = &models.Dashboard{FoodFailed: true, WaterFailed: true, ExerciseFailed: true}
	}

	h.render.Render(w, r, http.StatusOK, "dashboard", Page{
		Title: "Dashboard",
		Content: DashboardContent{
			Food:           models.Recent(dash.Food, models.DashboardPreview),
			Water:          models.Recent(dash.Water, models.DashboardPreview),
			Exercise:       models.Recent(dash.Exercise, models.DashboardPreview),
			FoodFailed:     dash.FoodFailed,
			WaterFailed:    dash.WaterFailed,
			ExerciseFailed: dash.ExerciseFailed,
		},
	})
}

// Logging godoc
// GET /logging
func (h *LogHandler) Logging(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "logging", Page{Title: "Log Activity"})
}

// FoodPage godoc
// GET /log/food
func (h *LogHandler) FoodPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "food", Page{Title: "Log Food", Content: FoodContent{}})
}

func foodDraftFrom(r *http.Request) models.FoodDraft {
	return models.FoodDraft{
		FoodItem:   r.PostFormValue("food_item"),
		Calories:   r.PostFormValue("calories"),
		CaloriesAI: r.PostFormValue("calories_ai"),
		Protein:    r.PostFormValue("protein"),
		Carbs:      r.PostFormValue("carbs"),
		Fat:        r.PostFormValue("fat"),
	}
}

// LogFood godoc
// POST /log/food
func (h *LogHandler) LogFood(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	draft := foodDraftFrom(r)

	if err := h.logs.LogFood(r.Context(), ScopeFrom(r), draft); err != nil {
		if sessionExpired(w, r, err) {
			return
		}
		h.render.Render(w, r, http.StatusOK, "food", Page{
			Title:   "Log Food",
			Notice:  errorNotice(MessageFor(loc, err, Messages{Failed: "food.failed", Network: "food.network"})),
			Content: FoodContent{Draft: draft},
		})
		return
	}

	h.render.Render(w, r, http.StatusOK, "food", Page{
		Title:   "Log Food",
		Notice:  successNotice(loc.T("food.success")),
		Content: FoodContent{},
	})
}

// Nutrition godoc
// POST /log/food/nutrition
//
// Formdaki taslak korunur; başarılı tahmin paneli doldurur ve kalori
// tahmini bir sonraki gönderimde calories_ai olarak taşınır.
func (h *LogHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	draft := foodDraftFrom(r)

	info, err := h.logs.Nutrition(r.Context(), ScopeFrom(r), draft.FoodItem)
	if err != nil {
		if sessionExpired(w, r, err) {
			return
		}
		h.render.Render(w, r, http.StatusOK, "food", Page{
			Title:   "Log Food",
			Notice:  errorNotice(MessageFor(loc, err, Messages{Failed: "food.nutritionFailed", Network: "food.nutritionNetwork"})),
			Content: FoodContent{Draft: draft},
		})
		return
	}

	draft.CaloriesAI = info.Calories.String()
	h.render.Render(w, r, http.StatusOK, "food", Page{
		Title:   "Log Food",
		Content: FoodContent{Draft: draft, Nutrition: info},
	})
}

// WaterPage godoc
// GET /log/water
func (h *LogHandler) WaterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "water", Page{Title: "Log Water", Content: models.WaterDraft{}})
}

// LogWater godoc
// POST /log/water
func (h *LogHandler) LogWater(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	draft := models.WaterDraft{Amount: r.PostFormValue("amount")}

	if err := h.logs.LogWater(r.Context(), ScopeFrom(r), draft); err != nil {
		if sessionExpired(w, r, err) {
			return
		}
		// water.failed backend mesajı ister; mesaj yoksa genel metin kullanılır.
		msg := MessageFor(loc, err, Messages{Failed: "water.failedGeneric", Network: "water.network"})
		if detail := backendDetail(err); detail != "" {
			msg = loc.TWithParams("water.failed", map[string]string{"message": detail})
		}
		h.render.Render(w, r, http.StatusOK, "water", Page{
			Title:   "Log Water",
			Notice:  errorNotice(msg),
			Content: draft,
		})
		return
	}

	h.render.Render(w, r, http.StatusOK, "water", Page{
		Title:   "Log Water",
		Notice:  successNotice(loc.T("water.success")),
		Content: models.WaterDraft{},
	})
}

// ExercisePage godoc
// GET /log/exercise
func (h *LogHandler) ExercisePage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "exercise", Page{Title: "Log Exercise", Content: models.ExerciseDraft{}})
}

// LogExercise godoc
// POST /log/exercise
//
// user_id formdan değil oturumdan gelir.
func (h *LogHandler) LogExercise(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromContext(r.Context())
	draft := models.ExerciseDraft{
		ExerciseType:   r.PostFormValue("exercise_type"),
		Duration:       r.PostFormValue("duration"),
		CaloriesBurned: r.PostFormValue("calories_burned"),
	}

	if err := h.logs.LogExercise(r.Context(), ScopeFrom(r), draft); err != nil {
		if sessionExpired(w, r, err) {
			return
		}
		h.render.Render(w, r, http.StatusOK, "exercise", Page{
			Title:   "Log Exercise",
			Notice:  errorNotice(MessageFor(loc, err, Messages{Failed: "exercise.failed", Network: "exercise.network"})),
			Content: draft,
		})
		return
	}

	h.render.Render(w, r, http.StatusOK, "exercise", Page{
		Title:   "Log Exercise",
		Notice:  successNotice(loc.T("exercise.success")),
		Content: models.ExerciseDraft{},
	})
}
