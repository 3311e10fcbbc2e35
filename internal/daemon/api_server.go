package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"quickstart/internal/api"
	"quickstart/internal/config"
	"quickstart/internal/logging"
	"quickstart/internal/runid"
	"quickstart/internal/services"
	"quickstart/internal/validators"
	"quickstart/internal/wizard"
)

const (
	runCookieName = "quickstart_run"
	maxBodyBytes  = 1 << 20
)

type apiServer struct {
	bind     string
	token    string
	logger   *slog.Logger
	wizard   *wizard.Service
	statusFn func(context.Context) Status

	listener net.Listener
	server   *http.Server
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newAPIServer(cfg *config.Config, svc *wizard.Service, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		token:  cfg.Paths.APIToken,
		logger: logging.NewComponentLogger(logger, "api-server"),
		wizard: svc,
		done:   make(chan struct{}),
	}
	srv.server = &http.Server{
		Handler:           srv.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("POST /api/runs", s.handleNewRun)
	mux.HandleFunc("DELETE /api/runs/{run}", s.handleResetRun)
	mux.HandleFunc("GET /api/runs/{run}/steps", s.handleCatalog)
	mux.HandleFunc("GET /api/runs/{run}/steps/{step}", s.handleGetStep)
	mux.HandleFunc("POST /api/runs/{run}/steps/{step}", s.handleSubmitStep)
	mux.HandleFunc("DELETE /api/runs/{run}/steps/{step}", s.handleResetStep)
	mux.HandleFunc("POST /api/runs/{run}/final", s.handleFinalize)
	mux.HandleFunc("GET /api/runs/{run}/config.yml", s.handleDownload)
	mux.HandleFunc("POST /api/validate/{section}", s.handleValidate)
	return requestMiddleware(s.logger, authMiddleware(s.token, mux))
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
			s.shutdown()
		case <-s.done:
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.shutdown()
	s.wg.Wait()
}

func (s *apiServer) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	payload := api.DaemonStatus{Running: true}
	if s.statusFn != nil {
		st := s.statusFn(r.Context())
		payload = api.DaemonStatus{
			Running:      st.Running,
			PID:          st.PID,
			DatabasePath: st.DatabasePath,
			LockFilePath: st.LockFilePath,
			SchemaSource: st.SchemaSource,
			Address:      st.Address,
		}
	}

	runID := strings.TrimSpace(r.URL.Query().Get("run"))
	if runID == "" {
		if cookie, err := r.Cookie(runCookieName); err == nil {
			runID = cookie.Value
		}
	}
	if runID != "" {
		st, err := s.wizard.Status(r.Context(), runID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		canonical, _ := runid.Normalize(runID)
		run := api.FromRunStatus(canonical, st)
		payload.Run = &run
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// handleSession returns the run bound to the caller's cookie, creating one
// when the cookie is missing or unusable.
func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(runCookieName); err == nil {
		if id, err := runid.Normalize(cookie.Value); err == nil {
			s.setRunCookie(w, r, id)
			s.writeJSON(w, http.StatusOK, api.RunResponse{RunID: id})
			return
		}
	}
	s.handleNewRun(w, r)
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.wizard.Runs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []string{}
	}
	s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: runs})
}

func (s *apiServer) handleNewRun(w http.ResponseWriter, r *http.Request) {
	id, err := s.wizard.NewRun(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setRunCookie(w, r, id)
	s.writeJSON(w, http.StatusCreated, api.RunResponse{RunID: id, Created: true})
}

func (s *apiServer) handleResetRun(w http.ResponseWriter, r *http.Request) {
	if err := s.wizard.Reset(r.Context(), r.PathValue("run"), ""); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run")
	cat, err := s.wizard.Catalog(r.Context(), runID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	canonical, _ := runid.Normalize(runID)
	s.writeJSON(w, http.StatusOK, api.CatalogResponse{RunID: canonical, Steps: api.FromSteps(cat.Steps())})
}

func (s *apiServer) handleGetStep(w http.ResponseWriter, r *http.Request) {
	view, err := s.wizard.Step(r.Context(), r.PathValue("run"), r.PathValue("step"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStepView(view))
}

func (s *apiServer) handleSubmitStep(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sub, err := s.wizard.SubmitStep(r.Context(), r.PathValue("run"), r.PathValue("step"), fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setRunCookie(w, r, sub.Record.RunID)
	s.writeJSON(w, http.StatusOK, api.FromSubmission(sub))
}

func (s *apiServer) handleResetStep(w http.ResponseWriter, r *http.Request) {
	if err := s.wizard.Reset(r.Context(), r.PathValue("run"), r.PathValue("step")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleFinalize(w http.ResponseWriter, r *http.Request) {
	res, err := s.finalize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromFinalize(res))
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	res, err := s.finalize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "config.yml"}))
	w.Header().Set("X-Quickstart-Validation", string(res.Verdict.Status))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(res.Text)); err != nil {
		s.logger.Warn("config download interrupted", logging.Error(err))
	}
}

func (s *apiServer) finalize(r *http.Request) (*wizard.Result, error) {
	opts := wizard.FinalizeOptions{HeaderStyle: strings.TrimSpace(r.URL.Query().Get("header_style"))}
	return s.wizard.Finalize(r.Context(), r.PathValue("run"), opts)
}

func (s *apiServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := s.wizard.ValidateSection(r.Context(), r.PathValue("section"), validators.Credentials(fields))
	if errors.Is(result.Err, validators.ErrNoChecker) {
		s.writeError(w, r, services.Wrap(services.ErrNotFound, "api", "validate", result.Error, nil))
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromValidation(result))
}

// readFields decodes a submission body. JSON objects and urlencoded forms are
// accepted; JSON scalars are flattened to their form text and nested values
// are kept as compact JSON.
func readFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if err := r.ParseForm(); err != nil {
			return nil, services.Wrap(services.ErrValidation, "api", "decode form", "malformed form body", err)
		}
		fields := make(map[string]string, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		return fields, nil
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, services.Wrap(services.ErrValidation, "api", "decode json", "body must be a JSON object", err)
	}
	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case bool:
			fields[key] = strconv.FormatBool(v)
		case json.Number:
			fields[key] = v.String()
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "api", "decode json", "field "+key, err)
			}
			fields[key] = string(encoded)
		}
	}
	return fields, nil
}

func (s *apiServer) setRunCookie(w http.ResponseWriter, r *http.Request, runID string) {
	if runID == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     runCookieName,
		Value:    runID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	requestID, _ := services.RequestIDFromContext(r.Context())
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("api request failed", logging.String("path", r.URL.Path), logging.Error(err))
	} else {
		logger.Debug("api request rejected", logging.String("path", r.URL.Path), logging.Error(err))
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), RequestID: requestID})
}
