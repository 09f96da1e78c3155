package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	briefSchema := compile("brief.schema.json")
	actSchema := compile("act.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "character_name":"Amber Dynamics"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "character":"Amber Dynamics",
	  "scenario_digest":"deadbeef",
	  "game_params":{
	    "rounds":12,
	    "calendar_step_days":90,
	    "max_primary_actions":1,
	    "round_timeout_ms":30000,
	    "start_date":"2026-01-01"
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var brief any
	_ = json.Unmarshal([]byte(`{
	  "type":"BRIEF",
	  "protocol_version":"1.0",
	  "round":3,
	  "character":"Amber Dynamics",
	  "summary":{"character":"Amber Dynamics","round":3,"digest":"Round 3 recap."},
	  "deadline_ms":30000
	}`), &brief)
	validate(briefSchema, brief)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "round":3,
	  "character":"Amber Dynamics",
	  "actions":[{
	    "kind":"CREATE_RESEARCH_PROJECT",
	    "create_project":{
	      "project_id":"P1",
	      "topic":"autonomous swarms",
	      "committed_capital":800,
	      "committed_technical_capability":10,
	      "committed_human":30,
	      "estimated_duration_rounds":3
	    }
	  }],
	  "messages":[{"to":"Blue Azure","body":"Interested in a joint venture?"}]
	}`), &act)
	validate(actSchema, act)

	var esp any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "round":4,
	  "character":"Blue Azure",
	  "actions":[{"kind":"ESPIONAGE","espionage":{"target":"Amber Dynamics","focus_area":"budget"}}]
	}`), &esp)
	validate(actSchema, esp)
}
