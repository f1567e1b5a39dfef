// Package api exposes the blend engine over HTTP. The surface is thin: it
// decodes a selection, calls the engine with the already-loaded rulebook and
// wraps the result in the ok/err envelope. Loading and validating the
// rulebook happens before the server starts, never per request.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"fabula/internal/bible"
	"fabula/internal/blend"
	"fabula/internal/logging"
)

// Server handles blend requests against one immutable rulebook value.
type Server struct {
	rules     bible.Rules
	schemas   bible.SchemaBank
	metaphors bible.MetaphorBank
	frames    bible.FrameBank
	log       *slog.Logger
	mux       *http.ServeMux
}

// NewServer wires the routes. The rulebook and banks are captured by value;
// hot reloads mean building a new Server.
func NewServer(rules bible.Rules, schemas bible.SchemaBank, metaphors bible.MetaphorBank, frames bible.FrameBank) *Server {
	s := &Server{
		rules:     rules,
		schemas:   schemas,
		metaphors: metaphors,
		frames:    frames,
		log:       logging.New("api"),
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /blend", s.handleBlend)
	s.mux.HandleFunc("GET /bible/blend_rules", s.handleBlendRules)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// envelope is the response wrapper every route uses.
type envelope struct {
	OK       bool     `json:"ok"`
	Data     any      `json:"data,omitempty"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body envelope) {
	if body.Warnings == nil {
		body.Warnings = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeErr(w http.ResponseWriter, status int, msgs ...string) {
	s.writeJSON(w, status, envelope{OK: false, Errors: msgs})
}

// BlendActive is the active-selection portion of a blend request.
type BlendActive struct {
	Schemas   []string          `json:"schemas"`
	Metaphors []string          `json:"metaphors"`
	Poles     map[string]string `json:"poles"`
	Gates     []string          `json:"gates"`
	FrameID   string            `json:"frame_id,omitempty"`
}

// BlendRequest is the POST /blend body. A top-level frame_id wins over the
// one inside active.
type BlendRequest struct {
	FrameID        string      `json:"frame_id,omitempty"`
	Active         BlendActive `json:"active"`
	ExplosionFired bool        `json:"explosion_fired"`
}

func (s *Server) handleBlend(w http.ResponseWriter, r *http.Request) {
	var req BlendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, http.StatusBadRequest, "invalid blend request: "+err.Error())
		return
	}

	frameID := req.FrameID
	if frameID == "" {
		frameID = req.Active.FrameID
	}

	sel := blend.Selection{
		Schemas:        req.Active.Schemas,
		Metaphors:      req.Active.Metaphors,
		Poles:          req.Active.Poles,
		Gates:          req.Active.Gates,
		FrameID:        frameID,
		ExplosionFired: req.ExplosionFired,
	}

	result := blend.Blend(sel, s.rules)
	s.log.Info("blend",
		"frame", frameID,
		"mappings", result.Decisions.Mappings,
		"accepted", result.Accepted,
		"score", result.ScoreFinal,
	)

	body := envelope{OK: true, Data: result}
	if len(result.Audit.Penalties) > 0 {
		body.Warnings = []string{"penalties_applied"}
	}
	s.writeJSON(w, http.StatusOK, body)
}

// rulesSummary is the summary block of GET /bible/blend_rules.
type rulesSummary struct {
	Version           string `json:"version"`
	VitalRelations    int    `json:"vital_relations"`
	Operators         int    `json:"operators"`
	PriorityRelations int    `json:"priority_relations"`
}

type rulesPayload struct {
	Summary rulesSummary `json:"summary"`
	Rules   bible.Rules  `json:"rules"`
}

func (s *Server) handleBlendRules(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("validate") != "" {
		if err := bible.ValidateRules(s.rules, s.frames, s.schemas, s.metaphors); err != nil {
			s.writeErr(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	s.writeJSON(w, http.StatusOK, envelope{OK: true, Data: rulesPayload{
		Summary: rulesSummary{
			Version:           s.rules.Version,
			VitalRelations:    len(s.rules.VitalRelations),
			Operators:         len(s.rules.Operators),
			PriorityRelations: len(s.rules.CounterpartMapping.Priority),
		},
		Rules: s.rules,
	}})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{OK: true})
}
