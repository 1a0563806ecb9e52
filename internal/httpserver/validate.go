package httpserver

import (
	"fmt"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

var validSchemas = map[string]bool{"hs92": true, "hs12": true, "sitc": true}
var validDirections = map[string]bool{"exports": true, "imports": true}
var validModes = map[string]bool{"goods": true, "services": true}
var validAgentModes = map[string]bool{
	string(agentstate.ModeAuto):        true,
	string(agentstate.ModeSQLOnly):     true,
	string(agentstate.ModeGraphQLSQL):  true,
	string(agentstate.ModeGraphQLOnly): true,
}

// validationError is a structured 422 (spec.md §6 "Invalid enum values on
// overrides produce HTTP 422 with a structured error").
type validationError struct {
	field string
	msg   string
}

func (e *validationError) Error() string { return e.msg }

// validateOverrides checks every override enum the request carries,
// returning the first violation found.
func validateOverrides(req ChatRequest) *validationError {
	if req.OverrideSchema != "" && !validSchemas[req.OverrideSchema] {
		return &validationError{
			field: "override_schema",
			msg:   fmt.Sprintf("override_schema must be one of hs92, hs12, sitc, got %q", req.OverrideSchema),
		}
	}
	if req.OverrideDirection != "" && !validDirections[req.OverrideDirection] {
		return &validationError{
			field: "override_direction",
			msg:   fmt.Sprintf("override_direction must be one of exports, imports, got %q", req.OverrideDirection),
		}
	}
	if req.OverrideMode != "" && !validModes[req.OverrideMode] {
		return &validationError{
			field: "override_mode",
			msg:   fmt.Sprintf("override_mode must be one of goods, services, got %q", req.OverrideMode),
		}
	}
	if req.OverrideAgentMode != "" && !validAgentModes[req.OverrideAgentMode] {
		return &validationError{
			field: "override_agent_mode",
			msg:   fmt.Sprintf("override_agent_mode must be one of auto, sql_only, graphql_sql, graphql_only, got %q", req.OverrideAgentMode),
		}
	}
	return nil
}
