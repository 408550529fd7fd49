// Package main: oturum kapanış callback'leri ve arka plan işleri.
//
// Bir oturum kapandığında (logout, 401, login ile değiştirme) coach
// kaynakları serbest bırakılır. SessionService ws ve coach paketlerini
// bilmez; bağlantı burada, SessionCloser arayüzü üzerinden kurulur.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akinalp/wellness-coach/services"
	"github.com/akinalp/wellness-coach/ws"
)

// sessionPurgeInterval, süresi dolmuş oturum kayıtlarının silinme aralığı.
const sessionPurgeInterval = 10 * time.Minute

func registerSessionClosers(svcs *Services, hub *ws.Hub) {
	svcs.Session.OnClose(svcs.Coach)
	svcs.Session.OnClose(hub)
}

// runSessionPurger, ctx iptal edilene kadar periyodik olarak süresi
// dolmuş kayıtları siler.
func runSessionPurger(ctx context.Context, sessions services.SessionService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				log.Warn("failed to purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}
