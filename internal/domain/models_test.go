package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTableNames_MatchLegacySchema(t *testing.T) {
	if got := (User{}).TableName(); got != "users" {
		t.Fatalf("User table = %q", got)
	}
	if got := (Prompt{}).TableName(); got != "prompts" {
		t.Fatalf("Prompt table = %q", got)
	}
	if got := (Response{}).TableName(); got != "reponses_prompts" {
		t.Fatalf("Response table = %q", got)
	}
	if got := (Vote{}).TableName(); got != "votes" {
		t.Fatalf("Vote table = %q", got)
	}
}

func TestUserJSON_NeverExposesPassword(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Name: "A", Email: "a@example.com", PasswordHash: "$2a$10$secret"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "password") {
		t.Fatalf("password material leaked: %s", b)
	}
}

func TestPromptJSON_UsesLegacyWireNames(t *testing.T) {
	b, err := json.Marshal(Prompt{Title: "t", Scenario: "s", Tone: "x", Message: "m", FreshStart: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"reaction"`, `"cas"`, `"ton"`, `"nouveaudepart"`, `"idUser"`} {
		if !strings.Contains(string(b), key) {
			t.Fatalf("missing wire key %s in %s", key, b)
		}
	}
}
