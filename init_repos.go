// Package main: Repository katmanı başlatma.
//
// initRepositories, SESSION_STORE'a göre oturum deposunu oluşturur:
//   - memory: süreç içi TTL cache, restart'ta oturumlar düşer
//   - sqlite: modernc SQLite, backend cookie'leri AES-GCM ile mühürlü
package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/config"
	"github.com/akinalp/wellness-coach/database"
	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg/cache"
	"github.com/akinalp/wellness-coach/pkg/crypto"
	"github.com/akinalp/wellness-coach/repository"
)

// sessionCacheCleanup, bellek deposunda süresi dolan kayıtların taranma aralığı.
const sessionCacheCleanup = time.Minute

// Repositories, repository instance'larını ve kapatılması gereken
// kaynakları tutar.
type Repositories struct {
	Session repository.SessionRepository

	closers []func()
}

// Close, repository'lerin kaynaklarını açılış sırasının tersine kapatır.
func (r *Repositories) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func initRepositories(cfg *config.Config, log *zap.Logger) (*Repositories, error) {
	repos := &Repositories{}

	switch cfg.Session.Store {
	case config.StoreSQLite:
		db, err := database.New(cfg.Database.Path, database.Migrations(), log.Named("database"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos.closers = append(repos.closers, func() {
			if err := db.Close(); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		})

		key, err := crypto.DeriveKey(cfg.Session.Secret, crypto.PurposeCookieSealing)
		if err != nil {
			repos.Close()
			return nil, fmt.Errorf("failed to derive cookie sealing key: %w", err)
		}
		repos.Session = repository.NewSQLiteSessionRepo(db.Conn, key)

	default:
		store := cache.New[string, *models.Session](cfg.Session.TTL, sessionCacheCleanup)
		repos.closers = append(repos.closers, store.Close)
		repos.Session = repository.NewMemorySessionRepo(store)
	}

	log.Info("session store ready", zap.String("store", cfg.Session.Store))
	return repos, nil
}
