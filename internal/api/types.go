package api

import "quickstart/internal/sections"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Step describes one catalog entry.
type Step struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Position    string `json:"position"`
	Ordinal     int    `json:"ordinal"`
	Prev        string `json:"prev,omitempty"`
	Next        string `json:"next,omitempty"`
	Terminal    bool   `json:"terminal,omitempty"`
}

// Position is the result of navigating to a step.
type Position struct {
	Step       Step   `json:"step"`
	Progress   int    `json:"progress"`
	Prev       string `json:"prev,omitempty"`
	Next       string `json:"next,omitempty"`
	Redirected bool   `json:"redirected,omitempty"`
	Requested  string `json:"requested,omitempty"`
}

// CatalogResponse wraps the ordered steps of a run.
type CatalogResponse struct {
	RunID string `json:"runId"`
	Steps []Step `json:"steps"`
}

// Record is a stored section.
type Record struct {
	RunID       string            `json:"runId"`
	Section     string            `json:"section"`
	Stored      bool              `json:"stored"`
	Validated   bool              `json:"validated"`
	UserEntered bool              `json:"userEntered"`
	Data        *sections.Map     `json:"data,omitempty"`
	Form        map[string]string `json:"form,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
}

// StepResponse pairs a position with the data shown on it.
type StepResponse struct {
	Position Position `json:"position"`
	Record   Record   `json:"record"`
}

// FieldWarning reports a submitted field kept as text.
type FieldWarning struct {
	Field    string `json:"field"`
	Value    string `json:"value"`
	Expected string `json:"expected"`
}

// ValidationResult is the verdict of an external credential check.
type ValidationResult struct {
	Section   string        `json:"section"`
	Validated bool          `json:"validated"`
	Error     string        `json:"error,omitempty"`
	Timeout   bool          `json:"timeout,omitempty"`
	Metadata  *sections.Map `json:"metadata,omitempty"`
}

// Submission is the outcome of storing one step.
type Submission struct {
	Record   Record            `json:"record"`
	Next     Position          `json:"next"`
	Warnings []FieldWarning    `json:"warnings,omitempty"`
	Check    *ValidationResult `json:"check,omitempty"`
}

// Verdict is the schema validation outcome.
type Verdict struct {
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

// FinalizeResult is a rendered run.
type FinalizeResult struct {
	RunID    string   `json:"runId"`
	Verdict  Verdict  `json:"verdict"`
	Included []string `json:"included"`
	Omitted  []string `json:"omitted,omitempty"`
	Config   string   `json:"config"`
}

// RunResponse carries a run identity.
type RunResponse struct {
	RunID   string `json:"runId"`
	Created bool   `json:"created,omitempty"`
}

// RunListResponse lists stored runs.
type RunListResponse struct {
	Runs []string `json:"runs"`
}

// RunStatus summarizes the validated prerequisite sections of a run.
type RunStatus struct {
	RunID              string `json:"runId"`
	PlexValid          bool   `json:"plexValid"`
	TMDbValid          bool   `json:"tmdbValid"`
	MinimumSettings    bool   `json:"minimumSettings"`
	NotifiarrAvailable bool   `json:"notifiarrAvailable"`
	GotifyAvailable    bool   `json:"gotifyAvailable"`
}

// DaemonStatus aggregates server runtime information for API consumers.
type DaemonStatus struct {
	Running      bool       `json:"running"`
	PID          int        `json:"pid"`
	DatabasePath string     `json:"databasePath,omitempty"`
	LockFilePath string     `json:"lockFilePath"`
	SchemaSource string     `json:"schemaSource,omitempty"`
	Address      string     `json:"address,omitempty"`
	Run          *RunStatus `json:"run,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}
