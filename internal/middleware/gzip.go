package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Compression распаковывает тела запросов в gzip и сжимает ответы
// перечисленных типов, если клиент их принимает.
func Compression(level int, types ...string) func(http.Handler) http.Handler {
	compress := chimw.Compress(level, types...)
	return func(next http.Handler) http.Handler {
		return DecompressRequest(compress(next))
	}
}

// DecompressRequest подменяет тело запроса с Content-Encoding: gzip распакованным.
func DecompressRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gr, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		defer gr.Close()

		r.Body = struct {
			io.Reader
			io.Closer
		}{gr, r.Body}
		r.Header.Del("Content-Encoding")
		r.Header.Del("Content-Length")
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}
