package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count int
	until time.Time
}

// RateLimit caps requests per client IP within a fixed window. State is
// in-memory, so the limit is per process.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			now := time.Now()

			mu.Lock()
			if len(buckets) > 10000 {
				for key, b := range buckets {
					if now.After(b.until) {
						delete(buckets, key)
					}
				}
			}
			b, ok := buckets[ip]
			if !ok || now.After(b.until) {
				b = &bucket{until: now.Add(per)}
				buckets[ip] = b
			}
			if b.count >= limit {
				retry := b.until
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(retry).Seconds())+1))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
