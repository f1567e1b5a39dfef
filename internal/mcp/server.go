// Package mcp exposes the blend engine as MCP tools over stdio, so editor
// agents can blend selections and inspect the curated rulebook directly.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"fabula/internal/bible"
	"fabula/internal/blend"
)

// Server wraps the MCP SDK server around one immutable rulebook.
type Server struct {
	MCPServer *sdkmcp.Server

	rules     bible.Rules
	schemas   bible.SchemaBank
	metaphors bible.MetaphorBank
	frames    bible.FrameBank
}

// NewServer creates the MCP server with blend and rulebook tools registered.
func NewServer(version string, rules bible.Rules, schemas bible.SchemaBank, metaphors bible.MetaphorBank, frames bible.FrameBank) *Server {
	s := &Server{
		rules:     rules,
		schemas:   schemas,
		metaphors: metaphors,
		frames:    frames,
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "fabula", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "blend",
		Description: "Blend an active selection of schemas/metaphors/poles/gates under the curated rulebook. Returns the full decision with audit trail.",
	}, s.handleBlend)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_blend_rules",
		Description: "Summarize the active blending rulebook: version, relations, operators, constraints.",
	}, s.handleGetRules)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_rules",
		Description: "Cross-validate the rulebook against the schema/metaphor/frame banks and report every problem found.",
	}, s.handleValidateRules)
}

// --- Tool input/output types ---

type blendInput struct {
	Schemas        []string          `json:"schemas,omitempty" jsonschema:"active schema ids"`
	Metaphors      []string          `json:"metaphors,omitempty" jsonschema:"active metaphor ids"`
	Poles          map[string]string `json:"poles,omitempty" jsonschema:"axis to raw pole value"`
	Gates          []string          `json:"gates,omitempty" jsonschema:"active gate ids"`
	FrameID        string            `json:"frame_id,omitempty" jsonschema:"active narrative frame"`
	ExplosionFired bool              `json:"explosion_fired,omitempty" jsonschema:"whether the tension-release event already happened"`
}

type getRulesInput struct{}

type getRulesOutput struct {
	Version        string `json:"version"`
	VitalRelations int    `json:"vital_relations"`
	Operators      int    `json:"operators"`
	MaxBlendDepth  int    `json:"max_blend_depth"`
	MaxOpsPerBlend int    `json:"max_ops_per_blend"`
	FrameOverrides int    `json:"frame_overrides"`
}

type validateRulesInput struct{}

type validateRulesOutput struct {
	Valid  bool   `json:"valid"`
	Detail string `json:"detail,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleBlend(_ context.Context, _ *sdkmcp.CallToolRequest, input blendInput) (*sdkmcp.CallToolResult, blend.Result, error) {
	sel := blend.Selection{
		Schemas:        input.Schemas,
		Metaphors:      input.Metaphors,
		Poles:          input.Poles,
		Gates:          input.Gates,
		FrameID:        input.FrameID,
		ExplosionFired: input.ExplosionFired,
	}
	return nil, blend.Blend(sel, s.rules), nil
}

func (s *Server) handleGetRules(_ context.Context, _ *sdkmcp.CallToolRequest, _ getRulesInput) (*sdkmcp.CallToolResult, getRulesOutput, error) {
	return nil, getRulesOutput{
		Version:        s.rules.Version,
		VitalRelations: len(s.rules.VitalRelations),
		Operators:      len(s.rules.Operators),
		MaxBlendDepth:  s.rules.Constraints.MaxBlendDepth,
		MaxOpsPerBlend: s.rules.Constraints.MaxOpsPerBlend,
		FrameOverrides: len(s.rules.FrameOverrides),
	}, nil
}

func (s *Server) handleValidateRules(_ context.Context, _ *sdkmcp.CallToolRequest, _ validateRulesInput) (*sdkmcp.CallToolResult, validateRulesOutput, error) {
	if err := bible.ValidateRules(s.rules, s.frames, s.schemas, s.metaphors); err != nil {
		return nil, validateRulesOutput{Valid: false, Detail: fmt.Sprintf("%v", err)}, nil
	}
	return nil, validateRulesOutput{Valid: true}, nil
}
