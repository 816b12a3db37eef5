package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"artflora/internal/auth"
)

// Заголовки идентификации вызывающего.
const (
	HeaderTelegramID   = "Telegram-Id"
	HeaderTelegramAuth = "X-Telegram-Auth"
)

var (
	// callerContextKey - ключ для сохранения вызывающего в контексте запроса.
	callerContextKey = &contextKey{"Caller"}
	// standingContextKey - ключ для положения администратора, проверенного гейтом.
	standingContextKey = &contextKey{"Standing"}
)

type contextKey struct {
	name string
}

// caller - кто выполняет запрос. ID == 0 - аноним.
type caller struct {
	ID        int64
	FirstName string
	Username  string
}

func callerFrom(ctx context.Context) caller {
	c, _ := ctx.Value(callerContextKey).(caller)
	return c
}

func callerID(ctx context.Context) int64 {
	return callerFrom(ctx).ID
}

func standingFrom(ctx context.Context) auth.Standing {
	st, _ := ctx.Value(standingContextKey).(auth.Standing)
	return st
}

// IdentityMiddleware определяет вызывающего. По умолчанию id берется из заголовка Telegram-Id.
// С verifyInitData id берется только из проверенного initData (X-Telegram-Auth);
// неверная подпись - 401, отсутствие заголовка - аноним.
func IdentityMiddleware(verifyInitData bool, botToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var c caller

			if verifyInitData {
				if authHeader := r.Header.Get(HeaderTelegramAuth); authHeader != "" {
					isValid, userData, err := validateInitData(authHeader, botToken)
					if err != nil || !isValid {
						log.Printf("IdentityMiddleware: Invalid initData. Error: %v", err)
						writeJSONError(w, http.StatusUnauthorized, "Unauthorized: Invalid initData")
						return
					}
					c = caller{ID: userData.ID, FirstName: userData.FirstName, Username: userData.Username}
				}
			} else if raw := strings.TrimSpace(r.Header.Get(HeaderTelegramID)); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					log.Printf("IdentityMiddleware: некорректный Telegram-Id '%s'", raw)
				} else {
					c.ID = id
				}
			}

			ctx := context.WithValue(r.Context(), callerContextKey, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireStanding пропускает запрос, только если allow вернул true для записи вызывающего.
// Сбой проверки - 500, отказ - 403.
func requireStanding(gate *auth.Gate, allow func(auth.Standing) bool, denied string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := callerID(r.Context())
			st, err := gate.Standing(r.Context(), id)
			if err != nil {
				log.WithFields(log.Fields{"telegram_id": id, "path": r.URL.Path}).Errorf("Ошибка проверки прав: %v", err)
				writeJSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if !allow(st) {
				log.WithFields(log.Fields{"telegram_id": id, "path": r.URL.Path}).Warn("Доступ запрещен")
				writeJSONError(w, http.StatusForbidden, denied)
				return
			}
			ctx := context.WithValue(r.Context(), standingContextKey, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin - любой активный администратор.
func RequireAdmin(gate *auth.Gate) func(http.Handler) http.Handler {
	return requireStanding(gate, auth.Standing.IsAdmin, "Access denied")
}

// RequireOwner - только владелец.
func RequireOwner(gate *auth.Gate) func(http.Handler) http.Handler {
	return requireStanding(gate, auth.Standing.IsOwner, "Access denied. Only owners can perform this action.")
}

// RequireRole - активный администратор с ролью не ниже minRole.
func RequireRole(gate *auth.Gate, minRole string) func(http.Handler) http.Handler {
	return requireStanding(gate, func(st auth.Standing) bool { return st.HasRole(minRole) }, "Access denied")
}

// Структура для парсинга JSON из initData
type telegramUserData struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// validateInitData проверяет подпись initData Telegram WebApp.
func validateInitData(initData, botToken string) (bool, telegramUserData, error) {
	var userData telegramUserData

	q, err := url.ParseQuery(initData)
	if err != nil {
		return false, userData, fmt.Errorf("failed to parse initData: %w", err)
	}

	hash := q.Get("hash")
	if hash == "" {
		return false, userData, fmt.Errorf("hash is not present in initData")
	}

	userJSON := q.Get("user")
	if userJSON == "" {
		return false, userData, fmt.Errorf("user data is not present in initData")
	}
	if err := json.Unmarshal([]byte(userJSON), &userData); err != nil {
		return false, userData, fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	pairs := make([]string, 0, len(q))
	for k, v := range q {
		if k != "hash" {
			pairs = append(pairs, k+"="+v[0])
		}
	}
	sort.Strings(pairs)

	return hmac.Equal([]byte(signInitData(strings.Join(pairs, "\n"), botToken)), []byte(hash)), userData, nil
}

// signInitData считает hash для data-check-string.
func signInitData(dataCheckString, botToken string) string {
	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(botToken))

	h := hmac.New(sha256.New, secretKey.Sum(nil))
	h.Write([]byte(dataCheckString))
	return hex.EncodeToString(h.Sum(nil))
}
