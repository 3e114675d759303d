package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangtimer/internal/adapter/secondary/clock"
	"hangtimer/internal/adapter/secondary/repository"
	"hangtimer/internal/adapter/secondary/store"
	"hangtimer/internal/domain"
	"hangtimer/internal/usecase"
)

var testConfig = domain.WorkoutConfig{WorkSeconds: 7, RestSeconds: 3, Reps: 2, Sets: 1}

type fixture struct {
	server  *Server
	session usecase.SessionUseCase
	clock   *clock.Fake
}

func newFixture(t *testing.T, start bool) *fixture {
	t.Helper()
	kv, err := store.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	presets := usecase.NewPresetUseCase(repository.NewKVRepository(kv))

	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	session := usecase.NewSessionUseCase(clk, nil, 10*time.Millisecond, "test",
		domain.BuildSequence(testConfig), domain.DefaultOptions())
	if start {
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		session.Start(ctx)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		server:  NewServer(session, presets, "127.0.0.1:0", log),
		session: session,
		clock:   clk,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var st stateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	return st
}

func TestServer_State(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	st := decodeState(t, rec)
	assert.Equal(t, "test", st.Title)
	assert.Equal(t, domain.StateIdle, st.Snapshot.State)
	assert.Equal(t, 7, st.Remaining)
	assert.Equal(t, 3, st.Snapshot.SegmentCount)
}

func TestServer_Sequence(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/v1/sequence", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var seq struct {
		TotalSeconds int `json:"totalSeconds"`
		Segments     []struct {
			Kind  string `json:"kind"`
			Label string `json:"label"`
		} `json:"segments"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&seq))
	assert.Equal(t, 17, seq.TotalSeconds)
	require.Len(t, seq.Segments, 3)
	assert.Equal(t, "work", seq.Segments[0].Kind)
	assert.Equal(t, "rest", seq.Segments[1].Kind)
}

func TestServer_Control(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/api/v1/control/start", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateRunning, decodeState(t, rec).Snapshot.State)

	rec = f.do(t, http.MethodPost, "/api/v1/control/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeState(t, rec).Snapshot.SegmentIndex)

	rec = f.do(t, http.MethodPost, "/api/v1/control/explode", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ControlBeforeStart(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/v1/control/toggle", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Config(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPut, "/api/v1/config",
		`{"prepareSeconds":5,"workSeconds":10,"restSeconds":5,"reps":3,"sets":2,"setRestSeconds":60}`)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.Equal(t, "Custom", st.Title)
	assert.Equal(t, 1+2*5+1, st.Snapshot.SegmentCount)

	tests := []struct {
		name string
		body string
	}{
		{"zero work", `{"workSeconds":0,"reps":1,"sets":1}`},
		{"negative rest", `{"workSeconds":5,"restSeconds":-1,"reps":1,"sets":1}`},
		{"unknown field", `{"workSeconds":5,"reps":1,"sets":1,"bogus":1}`},
		{"malformed", `{"workSeconds":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPut, "/api/v1/config", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_Presets(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/v1/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Preset
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, len(domain.BuiltinPresets()))

	rec = f.do(t, http.MethodPost, "/api/v1/presets",
		`{"name":"Mine","config":{"workSeconds":10,"restSeconds":5,"reps":4,"sets":2,"setRestSeconds":90}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved domain.Preset
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&saved))
	assert.Equal(t, "Mine", saved.Name)
	assert.False(t, saved.Builtin)

	rec = f.do(t, http.MethodPost, "/api/v1/presets/"+saved.ID+"/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mine", decodeState(t, rec).Title)

	rec = f.do(t, http.MethodPost, "/api/v1/presets", `{"name":"  ","config":{"workSeconds":10,"reps":1,"sets":1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	builtin := domain.BuiltinPresets()[0].ID
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodDelete, "/api/v1/presets/"+builtin, "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/v1/presets/"+saved.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/v1/presets/"+saved.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/v1/presets/nope/select", "").Code)
}

func TestServer_Workouts(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/v1/workouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Workout
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.NotEmpty(t, list)

	rec = f.do(t, http.MethodPost, "/api/v1/workouts/repeater-7-3/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.Equal(t, "Repeater 7/3", st.Title)
	require.NotNil(t, st.Snapshot.Segment)
	assert.Equal(t, domain.KindPrepare, st.Snapshot.Segment.Kind)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/v1/workouts/nope/select", "").Code)
}

func TestServer_Settings(t *testing.T) {
	f := newFixture(t, true)
	var notified domain.Settings
	f.server.OnSettingsChange(func(s domain.Settings) { notified = s })

	rec := f.do(t, http.MethodPut, "/api/v1/settings", `{"volume":2.5,"theme":"GONG","soundEnabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Settings
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 1.0, got.Volume)
	assert.Equal(t, domain.ThemeGong, got.Theme)
	assert.False(t, got.SoundEnabled)
	assert.Equal(t, got, notified)

	rec = f.do(t, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var again domain.Settings
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&again))
	assert.Equal(t, got, again)
}

func TestServer_RootAndHealth(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/ws")

	rec = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServer_CORSPreflight(t *testing.T) {
	f := newFixture(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/control/toggle", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_WebSocketStream(t *testing.T) {
	f := newFixture(t, true)
	ts := httptest.NewServer(f.server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first usecase.Update
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, usecase.UpdateSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, domain.StateIdle, first.Snapshot.State)

	require.NoError(t, conn.WriteJSON(controlMessage{Action: "start"}))

	var running usecase.Update
	for {
		require.NoError(t, conn.ReadJSON(&running))
		if running.Snapshot != nil && running.Snapshot.State == domain.StateRunning {
			break
		}
	}

	f.clock.Advance(20 * time.Millisecond)
	for {
		var u usecase.Update
		require.NoError(t, conn.ReadJSON(&u))
		if u.Type == usecase.UpdateEvent {
			require.NotNil(t, u.Event)
			assert.Equal(t, "segment-start:work", u.Event.Name())
			break
		}
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Join(errBadRequest, io.ErrUnexpectedEOF), http.StatusBadRequest},
		{domain.ErrInvalidReps, http.StatusBadRequest},
		{domain.ErrEmptyPresetName, http.StatusBadRequest},
		{domain.ErrWorkoutNotFound, http.StatusNotFound},
		{domain.ErrBuiltinPreset, http.StatusConflict},
		{usecase.ErrSessionStopped, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Contains(t, buf.String(), "status=418")
	assert.Contains(t, buf.String(), "path=/x")
}
