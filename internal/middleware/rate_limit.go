package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// evictEvery - через сколько запросов из таблицы удаляются клиенты с истёкшим окном
const evictEvery = 1024

type clientInfo struct {
	count   int
	resetAt time.Time
}

type limiter struct {
	rpm      int
	window   time.Duration
	now      func() time.Time
	eviction int

	mtx      sync.Mutex
	clients  map[string]*clientInfo
	requests int
}

func newLimiter(rpm int, now func() time.Time) *limiter {
	return &limiter{
		rpm:      rpm,
		window:   time.Minute,
		now:      now,
		eviction: evictEvery,
		clients:  make(map[string]*clientInfo),
	}
}

// allow учитывает запрос клиента ip. При отказе remaining равен 0, а resetAt - началу следующего окна.
func (l *limiter) allow(ip string) (ok bool, remaining int, resetAt time.Time) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.requests++
	if l.requests%l.eviction == 0 {
		l.evictExpired(now)
	}

	info, exists := l.clients[ip]
	switch {
	case !exists:
		info = &clientInfo{count: 1, resetAt: now.Add(l.window)}
		l.clients[ip] = info
	case now.After(info.resetAt):
		info.count = 1
		info.resetAt = now.Add(l.window)
	case info.count >= l.rpm:
		return false, 0, info.resetAt
	default:
		info.count++
	}

	return true, max(l.rpm-info.count, 0), info.resetAt
}

// evictExpired вызывается под мьютексом.
func (l *limiter) evictExpired(now time.Time) {
	for ip, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, ip)
		}
	}
}

func (l *limiter) size() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.clients)
}

// RateLimit ограничивает число запросов с одного IP в минуту. rpm <= 0 отключает ограничение.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return rateLimit(newLimiter(rpm, time.Now))
}

func rateLimit(l *limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, resetAt := l.allow(getIp(r))
			if !ok {
				retryAfter := int(resetAt.Sub(l.now()).Seconds())
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter+1))
				w.WriteHeader(http.StatusTooManyRequests)

				json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": retryAfter,
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
