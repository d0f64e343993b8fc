package httpserver

import (
	"context"
	"net/http"
)

// Healthcheck returns a handler usable for both liveness and readiness
// probes. With no dependency functions it always reports 200 "ALIVE". With
// dependency functions it runs each against the request context and reports
// 200 "READY" or 500 "NOT_READY".
func Healthcheck(funcs ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(funcs) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		for _, f := range funcs {
			if err := f(r.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
