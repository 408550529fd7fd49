package models

import "strings"

// FoodLog, backend'in /user/logs/food yanıtındaki bir kayıt.
type FoodLog struct {
	ID        FlexString `json:"id"`
	FoodItem  string     `json:"food_item"`
	Calories  FlexString `json:"calories"`
	Protein   FlexString `json:"protein"`
	Carbs     FlexString `json:"carbs"`
	Fat       FlexString `json:"fat"`
	Timestamp string     `json:"timestamp"`
}

// WaterLog, /user/logs/water kaydı. Backend sürümüne göre miktar
// "amount" veya "amount_ml" altında gelir.
type WaterLog struct {
	ID        FlexString `json:"id"`
	Amount    FlexString `json:"amount"`
	AmountML  FlexString `json:"amount_ml"`
	Timestamp string     `json:"timestamp"`
}

// Milliliters, gösterilecek miktar.
func (w WaterLog) Milliliters() string {
	if w.Amount != "" {
		return w.Amount.String()
	}
	return w.AmountML.String()
}

// ExerciseLog, /user/logs/exercise kaydı. Süre "duration" veya
// "duration_minutes" altında gelir.
type ExerciseLog struct {
	ID              FlexString `json:"id"`
	ExerciseType    string     `json:"exercise_type"`
	Duration        FlexString `json:"duration"`
	DurationMinutes FlexString `json:"duration_minutes"`
	CaloriesBurned  FlexString `json:"calories_burned"`
	Timestamp       string     `json:"timestamp"`
}

// Minutes, gösterilecek süre.
func (e ExerciseLog) Minutes() string {
	if e.Duration != "" {
		return e.Duration.String()
	}
	return e.DurationMinutes.String()
}

// ─── Form taslakları ve istek gövdeleri ───

// FoodDraft, Log-Food formunun ham alanları.
type FoodDraft struct {
	FoodItem   string
	Calories   string
	CaloriesAI string // Beslenme sorgusundan gelen tahmin, gizli alan
	Protein    string
	Carbs      string
	Fat        string
}

// LogFoodRequest, POST /log_food gövdesi.
type LogFoodRequest struct {
	FoodItem   string   `json:"food_item"`
	Calories   *float64 `json:"calories"`
	CaloriesAI string   `json:"calories_ai,omitempty"`
	Protein    *float64 `json:"protein"`
	Carbs      *float64 `json:"carbs"`
	Fat        *float64 `json:"fat"`
}

// Validate, food_item zorunluluğunu ve sayısal alanların parse edilebilirliğini
// kontrol eder, istek gövdesini döner.
func (d FoodDraft) Validate() (*LogFoodRequest, error) {
	item := strings.TrimSpace(d.FoodItem)
	if item == "" {
		return nil, invalid("food.required")
	}

	req := &LogFoodRequest{FoodItem: item, CaloriesAI: strings.TrimSpace(d.CaloriesAI)}
	fields := []struct {
		raw string
		dst **float64
	}{
		{d.Calories, &req.Calories},
		{d.Protein, &req.Protein},
		{d.Carbs, &req.Carbs},
		{d.Fat, &req.Fat},
	}
	for _, f := range fields {
		n, ok := parseOptionalNumber(f.raw)
		if !ok {
			return nil, invalid("food.invalidNumber")
		}
		*f.dst = n
	}
	return req, nil
}

// WaterDraft, Log-Water formunun ham alanı.
type WaterDraft struct {
	Amount string
}

// LogWaterRequest, POST /log_water gövdesi. AmountML aynı değeri
// "amount_ml" okuyan backend sürümleri için taşır.
type LogWaterRequest struct {
	Amount   float64 `json:"amount"`
	AmountML float64 `json:"amount_ml"`
}

// Validate, miktarın dolu ve pozitif bir sayı olduğunu kontrol eder.
func (d WaterDraft) Validate() (*LogWaterRequest, error) {
	n, ok := parseOptionalNumber(d.Amount)
	if !ok || n == nil || *n <= 0 {
		return nil, invalid("water.invalid")
	}
	return &LogWaterRequest{Amount: *n, AmountML: *n}, nil
}

// ExerciseDraft, Log-Exercise formunun ham alanları.
type ExerciseDraft struct {
	ExerciseType   string
	Duration       string
	CaloriesBurned string
}

// LogExerciseRequest, POST /log_exercise gövdesi. DurationMinutes,
// Duration'ın aynısıdır.
type LogExerciseRequest struct {
	UserID          FlexString `json:"user_id"`
	ExerciseType    string     `json:"exercise_type"`
	Duration        float64    `json:"duration"`
	DurationMinutes float64    `json:"duration_minutes"`
	CaloriesBurned  *float64   `json:"calories_burned"`
}

// Validate, exercise_type ve duration zorunluluğunu kontrol eder.
// user_id oturumdan gelir, formdan değil.
func (d ExerciseDraft) Validate(userID FlexString) (*LogExerciseRequest, error) {
	kind := strings.TrimSpace(d.ExerciseType)
	if kind == "" || strings.TrimSpace(d.Duration) == "" {
		return nil, invalid("exercise.required")
	}

	duration, ok := parseOptionalNumber(d.Duration)
	if !ok {
		return nil, invalid("exercise.invalidNumber")
	}
	burned, ok := parseOptionalNumber(d.CaloriesBurned)
	if !ok {
		return nil, invalid("exercise.invalidNumber")
	}

	return &LogExerciseRequest{
		UserID:          userID,
		ExerciseType:    kind,
		Duration:        *duration,
		DurationMinutes: *duration,
		CaloriesBurned:  burned,
	}, nil
}

// NutritionRequest, POST /get_nutrition gövdesi.
type NutritionRequest struct {
	FoodDescription string `json:"food_description"`
}

// NutritionInfo, beslenme tahmini. Değerler serbest metindir ("Approx. 350 kcal").
type NutritionInfo struct {
	Calories FlexString `json:"calories"`
	Protein  FlexString `json:"protein"`
	Carbs    FlexString `json:"carbs"`
	Fat      FlexString `json:"fat"`
}

// Dashboard, üç log listesinin özeti. Bir listenin yüklenememesi
// diğerlerini gizlemez.
type Dashboard struct {
	Food           []FoodLog
	Water          []WaterLog
	Exercise       []ExerciseLog
	FoodFailed     bool
	WaterFailed    bool
	ExerciseFailed bool
}

// DashboardPreview, her listeden gösterilecek kayıt sayısı.
const DashboardPreview = 3

// Recent, slice'ın ilk n elemanını döner.
func Recent[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
