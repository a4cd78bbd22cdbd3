package middleware

import (
	"encoding/json"
	"net"
	"net/http"
)

const unknownIP = "unknown"

// clientIP reads the peer address only. Forwarding headers are honoured
// solely through chi's RealIP, which the router installs when proxies are
// trusted and which rewrites RemoteAddr.
func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
		return parsed.String()
	}
	return unknownIP
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
