package gate

import (
	"net/http"
	"strconv"
)

// RetryAfterSeconds is sent with the waiting response.
const RetryAfterSeconds = 1

const waitingPage = `<!doctype html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>ProjectShelf</title></head>
<body><p class="spinner" role="status">Checking your session&hellip;</p></body></html>
`

// Middleware guards every route below it. While the session is loading it
// answers 503 with a self-refreshing waiting page. Signed-out requests are
// redirected (htmx requests get an HX-Redirect header and 401 instead).
func (g *Gate) Middleware(src StateSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Evaluate(src.State())
			switch d.Outcome {
			case Wait:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(waitingPage))
			case Redirect:
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", d.Target)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, d.Target, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
