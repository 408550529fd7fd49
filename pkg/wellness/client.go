// Package wellness, uzak wellness REST API'sinin typed HTTP client'ı.
//
// Her çağrı tek bir istek yapar; retry yoktur. Kimlik doğrulama backend'in
// kendi oturum cookie'siyle yapılır: çağıran taraf bir CookieStore verir,
// client cookie'leri gönderir ve yanıttaki Set-Cookie'leri geri yazar.
//
// Hatalar üç türdür:
//   - ağ hatası, timeout, okunamayan yanıt → pkg.ErrUnavailable
//   - 2xx dışı status → *APIError (pkg sentinel'lerine unwrap olur);
//     /login'e yönlendirme oturumsuzluk sayılır
//   - iptal edilen context → ctx.Err() ile birlikte pkg.ErrUnavailable
package wellness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
)

// maxResponseBytes, okunacak en büyük yanıt gövdesi.
const maxResponseBytes = 1 << 20

// Endpoint path'leri.
const (
	pathRegister     = "/register"
	pathLogin        = "/login"
	pathLogout       = "/logout"
	pathFoodLogs     = "/user/logs/food"
	pathWaterLogs    = "/user/logs/water"
	pathExerciseLogs = "/user/logs/exercise"
	pathLogFood      = "/log_food"
	pathLogWater     = "/log_water"
	pathLogExercise  = "/log_exercise"
	pathNutrition    = "/get_nutrition"
	pathCoach        = "/ai-coach"
)

// Client, backend'e yapılan tüm çağrılar.
type Client interface {
	Register(ctx context.Context, creds models.Credentials) error
	Login(ctx context.Context, jar CookieStore, creds models.Credentials) (*models.SessionUser, error)
	Logout(ctx context.Context, jar CookieStore) error

	FoodLogs(ctx context.Context, jar CookieStore) ([]models.FoodLog, error)
	WaterLogs(ctx context.Context, jar CookieStore) ([]models.WaterLog, error)
	ExerciseLogs(ctx context.Context, jar CookieStore) ([]models.ExerciseLog, error)

	LogFood(ctx context.Context, jar CookieStore, req *models.LogFoodRequest) error
	LogWater(ctx context.Context, jar CookieStore, req *models.LogWaterRequest) error
	LogExercise(ctx context.Context, jar CookieStore, req *models.LogExerciseRequest) error

	Nutrition(ctx context.Context, jar CookieStore, req *models.NutritionRequest) (*models.NutritionInfo, error)
	AskCoach(ctx context.Context, jar CookieStore, req *models.CoachRequest) (string, error)
}

// Options, HTTP client ayarları.
type Options struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64 // 0 → sınırsız
	Burst   int
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
	now     func() time.Time
}

// NewHTTPClient, constructor.
func NewHTTPClient(opts Options, log *zap.Logger) Client {
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &httpClient{
		baseURL: opts.BaseURL,
		http: &http.Client{
			Timeout: opts.Timeout,
			// Yönlendirme izlenmez: oturumsuz isteğe /login'e 302 dönen
			// backend'de takip edilen GET 405 verir ve 401 gizlenir.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
		now:     time.Now,
	}
}

// loginResponse, POST /login başarı gövdesi.
type loginResponse struct {
	Message string              `json:"message"`
	User    *models.SessionUser `json:"user"`
}

// coachResponse, POST /ai-coach gövdesi. Bazı backend sürümleri yanıtı
// "advice" altında döndürür.
type coachResponse struct {
	Response string `json:"response"`
	Advice   string `json:"advice"`
}

func (c *httpClient) Register(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, nil, http.MethodPost, pathRegister, creds, nil)
}

func (c *httpClient) Login(ctx context.Context, jar CookieStore, creds models.Credentials) (*models.SessionUser, error) {
	var resp loginResponse
	if err := c.do(ctx, jar, http.MethodPost, pathLogin, creds, &resp); err != nil {
		return nil, err
	}

	user := resp.User
	if user == nil {
		user = &models.SessionUser{}
	}
	if user.Username == "" {
		user.Username = creds.Username
	}
	return user, nil
}

func (c *httpClient) Logout(ctx context.Context, jar CookieStore) error {
	return c.do(ctx, jar, http.MethodPost, pathLogout, nil, nil)
}

func (c *httpClient) FoodLogs(ctx context.Context, jar CookieStore) ([]models.FoodLog, error) {
	var logs []models.FoodLog
	if err := c.do(ctx, jar, http.MethodGet, pathFoodLogs, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *httpClient) WaterLogs(ctx context.Context, jar CookieStore) ([]models.WaterLog, error) {
	var logs []models.WaterLog
	if err := c.do(ctx, jar, http.MethodGet, pathWaterLogs, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *httpClient) ExerciseLogs(ctx context.Context, jar CookieStore) ([]models.ExerciseLog, error) {
	var logs []models.ExerciseLog
	if err := c.do(ctx, jar, http.MethodGet, pathExerciseLogs, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *httpClient) LogFood(ctx context.Context, jar CookieStore, req *models.LogFoodRequest) error {
	return c.do(ctx, jar, http.MethodPost, pathLogFood, req, nil)
}

func (c *httpClient) LogWater(ctx context.Context, jar CookieStore, req *models.LogWaterRequest) error {
	return c.do(ctx, jar, http.MethodPost, pathLogWater, req, nil)
}

func (c *httpClient) LogExercise(ctx context.Context, jar CookieStore, req *models.LogExerciseRequest) error {
	return c.do(ctx, jar, http.MethodPost, pathLogExercise, req, nil)
}

func (c *httpClient) Nutrition(ctx context.Context, jar CookieStore, req *models.NutritionRequest) (*models.NutritionInfo, error) {
	var info models.NutritionInfo
	if err := c.do(ctx, jar, http.MethodPost, pathNutrition, req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *httpClient) AskCoach(ctx context.Context, jar CookieStore, req *models.CoachRequest) (string, error) {
	var resp coachResponse
	if err := c.do(ctx, jar, http.MethodPost, pathCoach, req, &resp); err != nil {
		return "", err
	}

	reply := resp.Response
	if reply == "" {
		reply = resp.Advice
	}
	if reply == "" {
		return "", fmt.Errorf("%w: empty coach reply", pkg.ErrUnavailable)
	}
	return reply, nil
}

// do, tek bir JSON isteği yapar. body nil değilse JSON olarak gönderilir,
// out nil değilse 2xx gövdesi out'a çözülür.
func (c *httpClient) do(ctx context.Context, jar CookieStore, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s %s: %v", pkg.ErrUnavailable, method, path, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if jar != nil {
		for _, ck := range jar.Cookies() {
			req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", pkg.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", c.now().Sub(start)),
	)

	if jar != nil {
		if set := resp.Cookies(); len(set) > 0 {
			jar.SetCookies(set)
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", pkg.ErrUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return &APIError{Status: resp.StatusCode, Message: eb.text(), Location: resp.Header.Get("Location")}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", pkg.ErrUnavailable, path, err)
	}
	return nil
}
