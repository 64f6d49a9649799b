package middleware

// Тесты мидлваров HTTP-слоя profiles-service.
//
// Логи пишутся JSON-хендлером slog в буфер и разбираются построчно:
// так проверяется ровно то, что увидит сборщик логов.

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	logctx "github.com/pribylovaa/go-user-profiles/pkg/log"
)

// logRecords разбирает JSON-строки лога.
func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		rec := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec), "line=%s", line)
		out = append(out, rec)
	}

	return out
}

func envelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%s", rr.Body.String())

	return body.Error
}

func TestChain_OuterMiddlewareSeesResponseLast(t *testing.T) {
	t.Parallel()

	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.Header.Add("X-Trace", name)
				next.ServeHTTP(w, r)
				w.Header().Add("X-Trace", name)
			})
		}
	}

	var seen []string
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Values("X-Trace")
	})

	rr := httptest.NewRecorder()
	Chain(final, tag("outer"), tag("inner")).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, seen)
	require.Equal(t, []string{"inner", "outer"}, rr.Header().Values("X-Trace"))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(RequestIDFrom(r.Context())))
	})
	h := Chain(echo, RequestID())

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/1", nil))

		id := rr.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, id, rr.Body.String())
	})

	t.Run("forwarded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
		req.Header.Set(HeaderRequestID, "upstream-7")

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, "upstream-7", rr.Header().Get(HeaderRequestID))
		require.Equal(t, "upstream-7", rr.Body.String())
	})

	require.Empty(t, RequestIDFrom(context.Background()))
}

// Логгер из контекста обработчика уже несёт request_id, а итоговая запись
// содержит метод, путь, статус и размер ответа.
func TestLogging_RequestScopedLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logctx.From(r.Context()).With("op", "service/profiles/Apply").Info("payload applied", "user_id", "10")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"display":"<@10>"}`))
	})

	req := httptest.NewRequest(http.MethodPut, "/v1/profiles/10", nil)
	req.Header.Set(HeaderRequestID, "rid-10")
	Chain(final, RequestID(), Logging(logger)).ServeHTTP(httptest.NewRecorder(), req)

	recs := logRecords(t, &buf)
	require.Len(t, recs, 2)

	inner := recs[0]
	require.Equal(t, "payload applied", inner["msg"])
	require.Equal(t, "rid-10", inner["request_id"])
	require.Equal(t, "service/profiles/Apply", inner["op"])
	require.Equal(t, "10", inner["user_id"])

	access := recs[1]
	require.Equal(t, "http", access["msg"])
	require.Equal(t, "INFO", access["level"])
	require.Equal(t, "rid-10", access["request_id"])
	require.Equal(t, http.MethodPut, access["method"])
	require.Equal(t, "/v1/profiles/10", access["path"])
	require.EqualValues(t, http.StatusOK, access["status"])
	require.EqualValues(t, len(`{"display":"<@10>"}`), access["bytes"])
	require.Contains(t, access, "dur")
}

func TestLogging_StatusLevels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		level  string
	}{
		{"nothing written", func(http.ResponseWriter) {}, http.StatusOK, "INFO"},
		{"not found", func(w http.ResponseWriter) { w.WriteHeader(http.StatusNotFound) }, http.StatusNotFound, "INFO"},
		{"internal", func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }, http.StatusInternalServerError, "ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			final := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { tc.write(w) })

			Chain(final, Logging(slog.New(slog.NewJSONHandler(&buf, nil)))).
				ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/users/1", nil))

			recs := logRecords(t, &buf)
			require.Len(t, recs, 1)
			require.EqualValues(t, tc.status, recs[0]["status"])
			require.Equal(t, tc.level, recs[0]["level"])
		})
	}
}

func TestRecover_PanicBecomesInternalEnvelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	final := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("profile registry corrupted")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/1", nil)
	req.Header.Set(HeaderRequestID, "rid-panic")

	rr := httptest.NewRecorder()
	Chain(final, Logging(slog.New(slog.NewJSONHandler(&buf, nil))), Recover()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	env := envelope(t, rr)
	require.Equal(t, "internal", env["code"])
	require.Equal(t, "rid-panic", env["request_id"])
	require.NotContains(t, rr.Body.String(), "corrupted")

	// Причина паники остаётся только в логах.
	require.Contains(t, buf.String(), "profile registry corrupted")
}

func TestRecover_AbortHandlerIsRethrown(t *testing.T) {
	t.Parallel()

	final := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Chain(final, Recover()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

// Обработчик, который дождался истечения срока и ничего не ответил,
// превращается в 504 с request_id.
func TestTimeout_SilentHandlerGets504(t *testing.T) {
	t.Parallel()

	final := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	req := httptest.NewRequest(http.MethodPut, "/v1/profiles/1", nil)
	req.Header.Set(HeaderRequestID, "rid-slow")

	rr := httptest.NewRecorder()
	Chain(final, Timeout(20*time.Millisecond)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusGatewayTimeout, rr.Code)
	env := envelope(t, rr)
	require.Equal(t, "deadline_exceeded", env["code"])
	require.Equal(t, "rid-slow", env["request_id"])
}

// Ответ, уже записанный обработчиком, не перетирается даже после истечения срока.
func TestTimeout_WrittenResponseIsKept(t *testing.T) {
	t.Parallel()

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		<-r.Context().Done()
	})

	rr := httptest.NewRecorder()
	Chain(final, Timeout(10*time.Millisecond)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Empty(t, rr.Body.String())
}

func TestTimeout_Deadlines(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	var hasDeadline bool
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	})

	// Более ранний дедлайн клиента сохраняется.
	parent, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	parentDL, _ := parent.Deadline()

	Chain(final, Timeout(time.Minute)).ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/", nil).WithContext(parent))
	require.True(t, hasDeadline)
	require.Equal(t, parentDL, deadline)

	// Без дедлайна клиента ставится свой.
	Chain(final, Timeout(time.Minute)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, hasDeadline)
	require.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)

	// d <= 0 - no-op.
	Chain(final, Timeout(0)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, hasDeadline)
}

func TestStatusWriter_FirstStatusWins(t *testing.T) {
	t.Parallel()

	sw := newStatusWriter(httptest.NewRecorder())
	require.Equal(t, http.StatusOK, sw.code())

	sw.WriteHeader(http.StatusCreated)
	sw.WriteHeader(http.StatusInternalServerError)
	n, err := sw.Write([]byte("ok"))

	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, http.StatusCreated, sw.code())
	require.Equal(t, 2, sw.count)
}
