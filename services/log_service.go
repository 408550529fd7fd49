package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/wellness"
)

// LogService, yemek/su/egzersiz kayıtlarını doğrular ve backend'e iletir.
//
// Her yazma işlemi önce taslağı doğrular; doğrulama başarısızsa backend'e
// hiç çağrı yapılmaz ve *models.ValidationError döner.
type LogService interface {
	Dashboard(ctx context.Context, caller Caller) (*models.Dashboard, error)
	LogFood(ctx context.Context, caller Caller, draft models.FoodDraft) error
	LogWater(ctx context.Context, caller Caller, draft models.WaterDraft) error
	LogExercise(ctx context.Context, caller Caller, draft models.ExerciseDraft) error
	Nutrition(ctx context.Context, caller Caller, foodItem string) (*models.NutritionInfo, error)
}

type logService struct {
	backend wellness.Client
	log     *zap.Logger
}

// NewLogService, constructor.
func NewLogService(backend wellness.Client, log *zap.Logger) LogService {
	return &logService{backend: backend, log: log}
}

func requireUser(caller Caller) (*models.SessionUser, error) {
	user := caller.Current()
	if user == nil {
		return nil, fmt.Errorf("%w: no active session", pkg.ErrUnauthorized)
	}
	return user, nil
}

// Dashboard, üç log listesini paralel çeker. Bir listenin hatası diğerlerini
// etkilemez; sadece o listenin Failed bayrağı set edilir. Backend oturumu
// reddederse (401) hata döner.
func (s *logService) Dashboard(ctx context.Context, caller Caller) (*models.Dashboard, error) {
	if _, err := requireUser(caller); err != nil {
		return nil, err
	}

	jar := caller.Jar(ctx)
	dash := &models.Dashboard{}

	// errgroup.WithContext kullanılmaz: bir listenin hatası diğer
	// istekleri iptal etmemeli.
	var g errgroup.Group

	g.Go(func() error {
		logs, err := s.backend.FoodLogs(ctx, jar)
		dash.Food, dash.FoodFailed = logs, err != nil
		return s.listError("food", err)
	})
	g.Go(func() error {
		logs, err := s.backend.WaterLogs(ctx, jar)
		dash.Water, dash.WaterFailed = logs, err != nil
		return s.listError("water", err)
	})
	g.Go(func() error {
		logs, err := s.backend.ExerciseLogs(ctx, jar)
		dash.Exercise, dash.ExerciseFailed = logs, err != nil
		return s.listError("exercise", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

// listError, sadece oturum hatalarını yukarı taşır; diğerlerini loglar.
func (s *logService) listError(list string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pkg.ErrUnauthorized) {
		return err
	}
	s.log.Warn("failed to load logs", zap.String("list", list), zap.Error(err))
	return nil
}

func (s *logService) LogFood(ctx context.Context, caller Caller, draft models.FoodDraft) error {
	if _, err := requireUser(caller); err != nil {
		return err
	}
	req, err := draft.Validate()
	if err != nil {
		return err
	}
	return s.backend.LogFood(ctx, caller.Jar(ctx), req)
}

func (s *logService) LogWater(ctx context.Context, caller Caller, draft models.WaterDraft) error {
	if _, err := requireUser(caller); err != nil {
		return err
	}
	req, err := draft.Validate()
	if err != nil {
		return err
	}
	return s.backend.LogWater(ctx, caller.Jar(ctx), req)
}

func (s *logService) LogExercise(ctx context.Context, caller Caller, draft models.ExerciseDraft) error {
	user, err := requireUser(caller)
	if err != nil {
		return err
	}
	req, err := draft.Validate(user.ID)
	if err != nil {
		return err
	}
	return s.backend.LogExercise(ctx, caller.Jar(ctx), req)
}

// Nutrition, yiyecek adını beslenme tahmini için backend'e sorar.
// Boş ad food.required doğrulama hatasıdır.
func (s *logService) Nutrition(ctx context.Context, caller Caller, foodItem string) (*models.NutritionInfo, error) {
	if _, err := requireUser(caller); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(foodItem)
	if desc == "" {
		return nil, &models.ValidationError{Key: "food.required"}
	}
	return s.backend.Nutrition(ctx, caller.Jar(ctx), &models.NutritionRequest{FoodDescription: desc})
}
