package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"quickstart/internal/assemble"
	"quickstart/internal/catalog"
	"quickstart/internal/schema"
	"quickstart/internal/sections"
	"quickstart/internal/services"
	"quickstart/internal/settings"
	"quickstart/internal/validators"
	"quickstart/internal/wizard"
)

func TestFromRecordDerivesForm(t *testing.T) {
	data := sections.NewMap()
	data.Set("url", sections.StringValue("http://plex:32400"))
	data.Set("timeout", sections.IntValue(60))
	rec := settings.Record{
		RunID:       "brave-otter",
		Section:     "plex",
		Validated:   true,
		UserEntered: true,
		Data:        data,
		UpdatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	dto := FromRecord(rec)
	if !dto.Stored || !dto.Validated || !dto.UserEntered {
		t.Fatalf("unexpected flags: %+v", dto)
	}
	if dto.Form["plex_url"] != "http://plex:32400" || dto.Form["plex_timeout"] != "60" {
		t.Fatalf("unexpected form: %v", dto.Form)
	}
	if dto.UpdatedAt != "2024-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected timestamp %q", dto.UpdatedAt)
	}

	payload, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"data":{"url":"http://plex:32400","timeout":60}`) {
		t.Fatalf("expected ordered data, got %s", payload)
	}
}

func TestFromRecordAbsent(t *testing.T) {
	dto := FromRecord(settings.Record{RunID: "r", Section: "tmdb"})
	if dto.Stored || dto.Form != nil || dto.UpdatedAt != "" {
		t.Fatalf("expected empty record, got %+v", dto)
	}
}

func TestFromPositionCarriesRedirect(t *testing.T) {
	cat := catalog.Build(nil)
	pos := FromPosition(cat.Navigate("nonsense"))
	if !pos.Redirected || pos.Requested != "nonsense" {
		t.Fatalf("expected redirect, got %+v", pos)
	}
	if pos.Step.ID != cat.First().ID {
		t.Fatalf("expected first step, got %q", pos.Step.ID)
	}
}

func TestFromValidationFlagsTimeout(t *testing.T) {
	result := validators.Result{
		Section: "tmdb",
		Error:   "request timed out",
		Err:     &validators.ExternalValidationError{Section: "tmdb", Message: "request timed out", Timeout: true},
	}
	if dto := FromValidation(result); !dto.Timeout || dto.Validated {
		t.Fatalf("expected timeout verdict, got %+v", dto)
	}

	wrapped := validators.Result{Section: "plex", Err: services.Wrap(services.ErrTimeout, "validators", "plex", "slow", nil)}
	if dto := FromValidation(wrapped); !dto.Timeout {
		t.Fatalf("expected timeout from marker, got %+v", dto)
	}
}

func TestFromSubmissionWarnings(t *testing.T) {
	sub := &wizard.Submission{
		Record: settings.Record{RunID: "r", Section: "plex", Data: sections.NewMap()},
		Warnings: []*sections.InputNormalizationError{
			{Section: "plex", Field: "timeout", Value: "soon", Expected: "integer"},
		},
	}
	dto := FromSubmission(sub)
	if len(dto.Warnings) != 1 || dto.Warnings[0].Field != "timeout" {
		t.Fatalf("unexpected warnings: %+v", dto.Warnings)
	}
	if dto.Check != nil {
		t.Fatalf("expected no check, got %+v", dto.Check)
	}
}

func TestFromFinalize(t *testing.T) {
	res := &wizard.Result{
		RunID:     "r",
		Composite: &assemble.Composite{Document: sections.NewMap(), Included: []string{"plex"}, Omitted: []string{"tmdb"}},
		Verdict:   schema.Verdict{Status: schema.StatusInvalid, Path: "/tmdb", Message: "missing properties"},
		Text:      "plex: {}\n",
	}
	dto := FromFinalize(res)
	if dto.Verdict.Status != "invalid" || dto.Verdict.Path != "/tmdb" {
		t.Fatalf("unexpected verdict: %+v", dto.Verdict)
	}
	if len(dto.Included) != 1 || dto.Omitted[0] != "tmdb" || dto.Config != "plex: {}\n" {
		t.Fatalf("unexpected result: %+v", dto)
	}
}

func TestFromRunStatus(t *testing.T) {
	dto := FromRunStatus("r", wizard.Status{PlexValid: true, TMDbValid: true, GotifyAvailable: true})
	if !dto.MinimumSettings || dto.NotifiarrAvailable || !dto.GotifyAvailable {
		t.Fatalf("unexpected status: %+v", dto)
	}
}
