package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akinalp/wellness-coach/database"
	"github.com/akinalp/wellness-coach/models"
	"github.com/akinalp/wellness-coach/pkg"
	"github.com/akinalp/wellness-coach/pkg/crypto"
)

// storedCookie, backend cookie'sinin saklanan alanları. Tekrar gönderirken
// sadece isim ve değer gerekir; son kullanma bilgisi temizlik için tutulur.
type storedCookie struct {
	Name    string    `json:"n"`
	Value   string    `json:"v"`
	Expires time.Time `json:"e,omitempty"`
}

// sqliteSessionRepo, SessionRepository'nin SQLite implementasyonu.
// backend_cookies sütunu AES-256-GCM ile şifrelenir.
type sqliteSessionRepo struct {
	db        *sql.DB
	cookieKey []byte
	now       func() time.Time
}

// NewSQLiteSessionRepo, constructor. cookieKey 32 byte olmalıdır
// (crypto.DeriveKey ile PurposeCookieSealing).
func NewSQLiteSessionRepo(db *sql.DB, cookieKey []byte) SessionRepository {
	return &sqliteSessionRepo{db: db, cookieKey: cookieKey, now: time.Now}
}

func (r *sqliteSessionRepo) Create(ctx context.Context, session *models.Session) error {
	return r.insert(ctx, r.db, session)
}

func (r *sqliteSessionRepo) insert(ctx context.Context, q database.TxQuerier, session *models.Session) error {
	sealed, err := r.sealCookies(session.BackendCookies)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, username, backend_cookies, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.User.ID.String(),
		session.User.Username,
		sealed,
		session.ExpiresAt.Unix(),
		session.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sqliteSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var (
		userID, username, sealed string
		expiresAt, createdAt     int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, backend_cookies, expires_at, created_at
		FROM sessions WHERE id = ? AND expires_at > ?`,
		id, r.now().Unix(),
	).Scan(&userID, &username, &sealed, &expiresAt, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	cookies, err := r.openCookies(sealed)
	if err != nil {
		return nil, err
	}

	return &models.Session{
		ID:             id,
		User:           models.SessionUser{ID: models.FlexString(userID), Username: username},
		BackendCookies: cookies,
		ExpiresAt:      time.Unix(expiresAt, 0),
		CreatedAt:      time.Unix(createdAt, 0),
	}, nil
}

func (r *sqliteSessionRepo) Replace(ctx context.Context, oldID string, session *models.Session) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if oldID != "" {
			if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, oldID); err != nil {
				return fmt.Errorf("failed to delete previous session: %w", err)
			}
		}
		return r.insert(ctx, tx, session)
	})
}

func (r *sqliteSessionRepo) UpdateCookies(ctx context.Context, id string, cookies []*http.Cookie) error {
	sealed, err := r.sealCookies(cookies)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET backend_cookies = ? WHERE id = ? AND expires_at > ?`,
		sealed, id, r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session cookies: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

func (r *sqliteSessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sqliteSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *sqliteSessionRepo) sealCookies(cookies []*http.Cookie) (string, error) {
	if len(cookies) == 0 {
		return "", nil
	}

	stored := make([]storedCookie, len(cookies))
	for i, ck := range cookies {
		stored[i] = storedCookie{Name: ck.Name, Value: ck.Value, Expires: ck.Expires}
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode backend cookies: %w", err)
	}

	sealed, err := crypto.Encrypt(string(raw), r.cookieKey)
	if err != nil {
		return "", fmt.Errorf("failed to seal backend cookies: %w", err)
	}
	return sealed, nil
}

func (r *sqliteSessionRepo) openCookies(sealed string) ([]*http.Cookie, error) {
	if sealed == "" {
		return nil, nil
	}

	raw, err := crypto.Decrypt(sealed, r.cookieKey)
	if err != nil {
		// Anahtar değişmişse (SESSION_SECRET rotasyonu) kayıt kullanılamaz.
		return nil, fmt.Errorf("%w: backend cookies unreadable: %v", pkg.ErrNotFound, err)
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode backend cookies: %w", err)
	}

	cookies := make([]*http.Cookie, len(stored))
	for i, s := range stored {
		cookies[i] = &http.Cookie{Name: s.Name, Value: s.Value, Expires: s.Expires}
	}
	return cookies, nil
}
