package minify

import (
	"strings"
	"testing"
)

func TestScriptMinifies(t *testing.T) {
	transform := NewScript()
	src := "// comment\nvar answer = 42;\n\nfunction  greet ( name ) {\n  return 'hi ' + name;\n}\n"

	out, err := transform(src)
	if err != nil {
		t.Fatalf("minify failed: %v", err)
	}
	if len(out) >= len(src) {
		t.Fatalf("expected smaller output, got %d >= %d", len(out), len(src))
	}
	if strings.Contains(out, "// comment") {
		t.Fatalf("line comment should be removed: %s", out)
	}
	if !strings.Contains(out, "answer=42") {
		t.Fatalf("expected declaration to survive: %s", out)
	}
}

func TestScriptReturnsParseErrors(t *testing.T) {
	transform := NewScript()
	if _, err := transform("function broken( {"); err == nil {
		t.Fatalf("invalid script should fail instead of passing through")
	}
}
