package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// jsonLogger пишет записи в buf одной JSON-строкой на запись.
func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	rec := map[string]any{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))

	return rec
}

// Так логирует consumer: user_id кладётся в контекст, op добавляет слой сервиса.
func TestWith_UserIDAndOpReachRecord(t *testing.T) {
	var buf bytes.Buffer
	root := Into(context.Background(), jsonLogger(&buf))

	ctx := With(root, "user_id", "80351110224678912")
	From(ctx).With("op", "service/profiles/Apply").Info("payload applied")

	rec := lastRecord(t, &buf)
	require.Equal(t, "80351110224678912", rec["user_id"])
	require.Equal(t, "service/profiles/Apply", rec["op"])

	// Родительский контекст атрибутов не получил.
	From(root).Info("consumer started")
	rec = lastRecord(t, &buf)
	require.NotContains(t, rec, "user_id")
	require.NotContains(t, rec, "op")
}

func TestWith_NoArgsKeepsContext(t *testing.T) {
	ctx := Into(context.Background(), jsonLogger(&bytes.Buffer{}))

	require.Equal(t, ctx, With(ctx))
}

// Без логгера или с мусором под ключом From отдаёт slog.Default().
// Тест меняет slog.Default(), поэтому без t.Parallel().
func TestFrom_FallsBackToDefault(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	var buf bytes.Buffer
	def := jsonLogger(&buf)
	slog.SetDefault(def)

	var nilLogger *slog.Logger
	for name, ctx := range map[string]context.Context{
		"empty":      context.Background(),
		"wrong type": context.WithValue(context.Background(), ctxKey{}, "not-a-logger"),
		"nil logger": context.WithValue(context.Background(), ctxKey{}, nilLogger),
	} {
		require.Equal(t, def, From(ctx), name)
	}

	// With поверх пустого контекста обогащает именно slog.Default().
	From(With(context.Background(), "op", "cmd/profiles-service/main")).Info("starting")
	require.Equal(t, "cmd/profiles-service/main", lastRecord(t, &buf)["op"])
}

func TestInto_KeepsDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ctx := With(parent, "user_id", "1")

	want, _ := parent.Deadline()
	got, ok := ctx.Deadline()
	require.True(t, ok)
	require.Equal(t, want, got)

	cancel()
	<-ctx.Done()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
