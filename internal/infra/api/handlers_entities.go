package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const entityConfigSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["entity_type"],
  "additionalProperties": false,
  "properties": {
    "entity_type": {"type": "string", "minLength": 1, "maxLength": 50, "pattern": "\\S"},
    "is_active":   {"type": "boolean"},
    "priority":    {"type": "integer", "minimum": 0}
  }
}`

var entityConfigSchema = jsonschema.MustCompileString("entity_config.json", entityConfigSchemaJSON)

type entityConfigRequest struct {
	EntityType string `json:"entity_type"`
	IsActive   *bool  `json:"is_active"`
	Priority   *int   `json:"priority"`
}

func (s *Server) handleListEntityConfigs(w http.ResponseWriter, r *http.Request) {
	cfgs, err := s.configs.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]EntityConfigView, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, entityConfigView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertEntityConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, "request body required")
		return
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := entityConfigSchema.Validate(doc); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req entityConfigRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	active, priority := true, 1
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if req.Priority != nil {
		priority = *req.Priority
	}

	c, err := s.configs.Upsert(r.Context(), req.EntityType, active, priority)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entityConfigView(c))
}
