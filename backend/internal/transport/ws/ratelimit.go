package ws

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// ConnLimiter ограничивает число одновременных соединений с одного IP
type ConnLimiter struct {
	mu    sync.Mutex
	conns map[string]int
	max   int
}

// NewConnLimiter создает ограничитель. max <= 0 снимает ограничение.
func NewConnLimiter(max int) *ConnLimiter {
	return &ConnLimiter{
		conns: make(map[string]int),
		max:   max,
	}
}

// Acquire занимает слот для ip. false, если лимит исчерпан.
func (l *ConnLimiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.conns[ip] >= l.max {
		return false
	}
	l.conns[ip]++
	return true
}

// Release освобождает слот
func (l *ConnLimiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conns[ip] <= 1 {
		delete(l.conns, ip)
		return
	}
	l.conns[ip]--
}

// Active возвращает число занятых слотов для ip
func (l *ConnLimiter) Active(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conns[ip]
}

// newInputLimiter ограничитель входных сообщений одного соединения.
// perSecond <= 0 отключает ограничение.
func newInputLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// clientIP адрес клиента без порта. X-Forwarded-For учитывается,
// если сервер стоит за прокси.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, _ := strings.Cut(fwd, ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
