package middleware

import (
	"net"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
)

// ClientIP stores the caller's address for audit entries. Run it after
// chi's RealIP when behind a proxy.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(audit.WithClientIP(r.Context(), ip)))
	})
}
