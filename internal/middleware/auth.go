// Package middleware содержит HTTP middleware сервиса заказов.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const actorKey contextKey = "actor"

const (
	sessionCookieName = "session_token"
	sessionCookieTTL  = 12 * time.Hour
)

// AuthMiddleware проверяет подписанный cookie сессии и определяет сотрудника,
// от имени которого выполняется запрос.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
// Пустой ключ заменяется случайным: сессии не переживут перезапуск.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// Middleware проверяет cookie сессии и добавляет имя сотрудника в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		actor, ok := a.parseCookie(cookie.Value)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie устанавливает cookie сессии для сотрудника с указанным именем.
func (a *AuthMiddleware) SetSessionCookie(w http.ResponseWriter, name string) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    a.sign(base64.RawURLEncoding.EncodeToString([]byte(name))),
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func (a *AuthMiddleware) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil))
}

func (a *AuthMiddleware) parseCookie(cookieValue string) (string, bool) {
	payload, signature, ok := strings.Cut(cookieValue, ".")
	if !ok {
		return "", false
	}

	_, expected, _ := strings.Cut(a.sign(payload), ".")
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}

	name, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(name) == 0 {
		return "", false
	}

	return string(name), true
}

// ActorFromContext извлекает имя сотрудника из контекста запроса.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey).(string)
	return actor, ok
}
