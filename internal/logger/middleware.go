package logger

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
)

// HTTPLogging создает middleware для логирования HTTP-запросов: каждому
// запросу присваивается свой ID, логгер с ним кладется в контекст запроса,
// паники обработчика перехватываются.
func HTTPLogging(log *slog.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := log.With("reqID", uuid.NewString(), "from", r.RemoteAddr, "method", r.Method, "url", r.URL.String())
		log.Debug("request received")

		w = &statusInterceptor{
			ResponseWriter: w,
			log:            log,
		}

		ctx := Context(r.Context(), log)
		r = r.WithContext(ctx)

		defer func() {
			if p := recover(); p != nil {
				log.Error("*** panic recovered ***",
					"panic", p,
					"stack", debug.Stack())
				http.Error(w, "internal error", 500)
			}
		}()

		h.ServeHTTP(w, r)
	})
}

// statusInterceptor логирует HTTP статусы и перехватывает ошибки записи
type statusInterceptor struct {
	http.ResponseWriter
	log    *slog.Logger
	status int // 0 = не установлен
}

func (si *statusInterceptor) WriteHeader(status int) {
	switch {
	case si.status == 0:
		si.status = status
		si.log.Debug("response status", "status", status)
		si.ResponseWriter.WriteHeader(status)

	case si.status != status:
		si.log.Warn("status code conflict", "origStatus", si.status, "newStatus", status)

	default:
		si.log.Warn("redundant WriteHeader call", "status", status)
	}
}

func (si *statusInterceptor) Write(b []byte) (int, error) {
	n, err := si.ResponseWriter.Write(b)
	if err != nil {
		si.log.Error("write failed", "error", err)
	}
	return n, err
}
