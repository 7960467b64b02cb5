package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"catalogweb/pkg/correlationid"
)

// CorrelationID reads the correlation id from the request header or mints a
// new one, puts it in the request context and echoes it on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" {
				id = uuid.NewString()
			}

			ctx := correlationid.NewContext(r.Context(), id)
			w.Header().Set(correlationid.Header, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
