package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const adminKey contextKey = "admin_email"

// AdminFromContext は context から管理者メールアドレスを取得する
func AdminFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(adminKey).(string)
	return v, ok
}

// WithAdmin は context に管理者メールアドレスをセットする
func WithAdmin(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, adminKey, email)
}

// RequireAdmin は管理者認証必須ミドルウェア。セッションを検証し、
// 管理者メールアドレスを context にセットする
func RequireAdmin(sessionSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName())
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			email, err := VerifySessionToken(cookie.Value, sessionSecret)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_session"})
				return
			}

			ctx := WithAdmin(r.Context(), email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DevAdminEmail は開発用のダミー管理者（AUTH_REQUIRED=false 時に使用）
const DevAdminEmail = "dev-admin@localhost"

// DevAuth は開発用ミドルウェア。ダミー管理者を context にセットする
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithAdmin(r.Context(), DevAdminEmail)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
