package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hangtimer/internal/domain"
	"hangtimer/internal/usecase"
)

const maxBodyBytes = 1 << 16

type stateResponse struct {
	Title     string          `json:"title"`
	Snapshot  domain.Snapshot `json:"snapshot"`
	Remaining int             `json:"remaining"`
	Status    string          `json:"status"`
}

type sequenceResponse struct {
	Title        string           `json:"title"`
	TotalSeconds int              `json:"totalSeconds"`
	Segments     []domain.Segment `json:"segments"`
}

type savePresetRequest struct {
	Name   string               `json:"name"`
	Config domain.WorkoutConfig `json:"config"`
}

type settingsRequest struct {
	SoundEnabled       *bool    `json:"soundEnabled"`
	Volume             *float64 `json:"volume"`
	Theme              *string  `json:"theme"`
	CountdownInPrepare *bool    `json:"countdownInPrepare"`
	CatchUp            *bool    `json:"catchUp"`
	PrepareSeconds     *int     `json:"prepareSeconds"`
}

func (s *Server) state(snap domain.Snapshot) stateResponse {
	return stateResponse{
		Title:     s.session.Title(),
		Snapshot:  snap,
		Remaining: snap.RemainingDisplay(),
		Status:    snap.String(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.state(s.session.Snapshot()))
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	seq := s.session.Sequence()
	respondJSON(w, http.StatusOK, sequenceResponse{
		Title:        s.session.Title(),
		TotalSeconds: domain.TotalSeconds(seq),
		Segments:     seq,
	})
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	action, err := usecase.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		respondError(w, err)
		return
	}
	snap, err := s.session.Do(action)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.state(snap))
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.WorkoutConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		respondError(w, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, err)
		return
	}
	snap, err := s.session.LoadConfig("Custom", cfg.Clamp())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.state(snap))
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.catalog.List())
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var req savePresetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	preset, err := s.catalog.Save(req.Name, req.Config)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, preset)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := s.catalog.Select(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	snap, err := s.session.LoadConfig(preset.Name, preset.Config)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.state(snap))
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.catalog.Workouts())
}

func (s *Server) handleSelectWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.catalog.Workout(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	snap, err := s.session.LoadWorkout(workout, s.catalog.Settings().PrepareSeconds)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.state(snap))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.catalog.Settings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	settings, err := s.catalog.UpdateSettings(func(st *domain.Settings) {
		if req.SoundEnabled != nil {
			st.SoundEnabled = *req.SoundEnabled
		}
		if req.Volume != nil {
			st.Volume = *req.Volume
		}
		if req.Theme != nil {
			st.Theme = strings.ToLower(*req.Theme)
		}
		if req.CountdownInPrepare != nil {
			st.CountdownInPrepare = *req.CountdownInPrepare
		}
		if req.CatchUp != nil {
			st.CatchUp = *req.CatchUp
		}
		if req.PrepareSeconds != nil {
			st.PrepareSeconds = *req.PrepareSeconds
		}
	})
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.session.ApplyOptions(usecase.EngineOptions(settings)); err != nil {
		s.log.Warn("apply engine options", "error", err)
	}
	if s.onChange != nil {
		s.onChange(settings)
	}
	respondJSON(w, http.StatusOK, settings)
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrInvalidWork),
		errors.Is(err, domain.ErrInvalidReps),
		errors.Is(err, domain.ErrInvalidSets),
		errors.Is(err, domain.ErrNegativeDuration),
		errors.Is(err, domain.ErrEmptyWorkout),
		errors.Is(err, domain.ErrEmptyPresetName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPresetNotFound), errors.Is(err, domain.ErrWorkoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBuiltinPreset):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrSessionStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
