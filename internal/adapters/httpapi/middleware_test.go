package httpapi

import (
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type statusSink struct{ got []int }

func (s *statusSink) RecordHTTPStatus(code int) { s.got = append(s.got, code) }

func TestRecoverer_HidesPanicOutsideDevelopment(t *testing.T) {
	t.Parallel()

	for _, expose := range []bool{false, true} {
		core, logs := observer.New(zapcore.ErrorLevel)
		h := middleware.RequestID(NewRecoverer(zap.New(core), expose)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})))

		rec := serve(h, newRequestWithHeaders(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		er := decode[errorResponse](t, rec)
		require.Equal(t, "Something went wrong on the server!", er.Error)
		if expose {
			require.Equal(t, "boom", er.Message)
		} else {
			require.Equal(t, "Internal server error", er.Message)
		}
		require.NotNil(t, er.RequestID)
		require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	}
}

func TestRequestLogger_LevelsAndSubject(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	sink := &statusSink{}

	inner := http.NewServeMux()
	inner.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	inner.HandleFunc("/bad", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) })
	inner.HandleFunc("/fail", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) })

	h := NewRequestLogger(zap.New(core), sink)(NewDevAuthMiddleware("uid-dev")(inner))

	for _, p := range []string{"/ok", "/bad", "/fail"} {
		serve(h, newRequestWithHeaders(http.MethodGet, p, nil))
	}

	require.Equal(t, []int{200, 400, 502}, sink.got)
	entries := logs.FilterMessage("http_request").AllUntimed()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Equal(t, "uid-dev", entries[0].ContextMap()["subject"])
}

func TestStaticHandler_ServesFilesAndIndexFallback(t *testing.T) {
	t.Parallel()

	dir := fstest.MapFS{
		"index.html": {Data: []byte("<html>custom</html>")},
		"app.js":     {Data: []byte("console.log(1)")},
	}
	h := newStaticHandler(dir)

	rec := serve(h, newRequestWithHeaders(http.MethodGet, "/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "console.log(1)", rec.Body.String())

	rec = serve(h, newRequestWithHeaders(http.MethodGet, "/some/client/route", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "<html>custom</html>", rec.Body.String())

	rec = serve(newStaticHandler(fstest.MapFS{}), newRequestWithHeaders(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, string(defaultIndex), rec.Body.String())

	rec = serve(h, newRequestWithHeaders(http.MethodDelete, "/app.js", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
