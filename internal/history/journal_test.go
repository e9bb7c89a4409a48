package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/comigor/homey-mcp/pkg/tools"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "calls.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	first := Entry{ID: uuid.NewString(), Tool: "list_devices", Arguments: "{}", Text: "[]", Duration: 15 * time.Millisecond, CreatedAt: base}
	second := Entry{ID: uuid.NewString(), Tool: "get_device", Arguments: `{"deviceId":"x"}`, IsError: true,
		Text: "Error: get device x: not found", CreatedAt: base.Add(time.Second)}
	require.NoError(t, j.Record(ctx, first))
	require.NoError(t, j.Record(ctx, second))

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []Entry{second, first}, all)

	latest, err := j.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, second.ID, latest[0].ID)
}

func TestJournal_ObserveCall(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	started := time.Date(2026, 10, 2, 8, 30, 0, 0, time.UTC)

	j.ObserveCall(ctx, tools.CallRecord{
		ID:        "call-1",
		Tool:      "set_capability",
		Arguments: map[string]any{"deviceId": "d1", "capability": "onoff", "value": true},
		Text:      "Successfully set onoff to true for device Lamp",
		StartedAt: started,
		Duration:  time.Second,
	})

	entries, err := j.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, "call-1", e.ID)
	require.Equal(t, "set_capability", e.Tool)
	require.JSONEq(t, `{"deviceId":"d1","capability":"onoff","value":true}`, e.Arguments)
	require.False(t, e.IsError)
	require.Equal(t, time.Second, e.Duration)
	require.True(t, started.Equal(e.CreatedAt))
}

func TestJournal_ObserveCallDuplicateIsSwallowed(t *testing.T) {
	j := openTestJournal(t)
	rec := tools.CallRecord{ID: "dup", Tool: "list_flows", StartedAt: time.Now()}

	j.ObserveCall(context.Background(), rec)
	j.ObserveCall(context.Background(), rec)

	entries, err := j.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing-dir", "calls.db"))
	require.Error(t, err)
}
