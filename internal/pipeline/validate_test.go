package pipeline

import (
	"testing"

	"rca-agent/internal/extract"
)

func validatorForTest() *Analyzer {
	return &Analyzer{logger: quietLogger()}
}

func fixMap(summary string, steps ...any) map[string]any {
	return map[string]any{"summary": summary, "steps": steps}
}

func solutionMap(msg string) map[string]any {
	return map[string]any{
		"error_message":       msg,
		"immediate_fix":       fixMap("now", "step 1"),
		"permanent_fix":       fixMap("later", "step 2"),
		"preventive_measures": fixMap("never again", "step 3"),
	}
}

func TestBuildResponse_RepairsErrorRecords(t *testing.T) {
	n := extract.Normalized{
		Errors: []any{
			map[string]any{"error_message": "db down", "error_type": "SystemError", "timestamp": "2024-01-15T10:00:00Z"},
			map[string]any{"error_type": "ConfigError"},
			map[string]any{"error_message": "no type given"},
			map[string]any{},
		},
		Solutions: []any{},
	}

	resp := validatorForTest().buildResponse(n)
	if len(resp.Errors) != 4 {
		t.Fatalf("expected all 4 error records kept, got %d", len(resp.Errors))
	}

	full := resp.Errors[0]
	if full.ErrorMessage != "db down" || full.ErrorType != "SystemError" {
		t.Errorf("complete record altered: %+v", full)
	}
	if full.Timestamp == nil || *full.Timestamp != "2024-01-15T10:00:00Z" {
		t.Error("timestamp lost on complete record")
	}

	if resp.Errors[1].ErrorMessage != "Unknown error" {
		t.Errorf("missing message not repaired: %q", resp.Errors[1].ErrorMessage)
	}
	if resp.Errors[2].ErrorType != "UnknownError" {
		t.Errorf("missing type not repaired: %q", resp.Errors[2].ErrorType)
	}
	if resp.Errors[3].ErrorMessage != "Unknown error" || resp.Errors[3].ErrorType != "UnknownError" {
		t.Error("empty record not fully repaired")
	}
	if resp.Errors[1].Timestamp != nil {
		t.Error("absent timestamp must stay null, not become a placeholder")
	}
}

func TestBuildResponse_DropsNonObjectErrors(t *testing.T) {
	n := extract.Normalized{
		Errors:    []any{"just a string", 42, map[string]any{"error_message": "real"}},
		Solutions: []any{},
	}

	resp := validatorForTest().buildResponse(n)
	if len(resp.Errors) != 1 {
		t.Fatalf("expected only the object record, got %d", len(resp.Errors))
	}
	if resp.Errors[0].ErrorMessage != "real" {
		t.Error("wrong record survived")
	}
}

func TestBuildResponse_DropsMalformedSolutionsKeepsRest(t *testing.T) {
	missingFix := solutionMap("broken one")
	delete(missingFix, "permanent_fix")

	badSteps := solutionMap("bad steps")
	badSteps["immediate_fix"] = map[string]any{"summary": "ok", "steps": "not a list"}

	noMessage := solutionMap("")

	n := extract.Normalized{
		Errors: []any{},
		Solutions: []any{
			solutionMap("good one"),
			missingFix,
			badSteps,
			noMessage,
			"not an object",
			solutionMap("another good one"),
		},
	}

	resp := validatorForTest().buildResponse(n)
	if len(resp.PossibleSolutions) != 2 {
		t.Fatalf("expected 2 surviving solutions, got %d", len(resp.PossibleSolutions))
	}
	if resp.PossibleSolutions[0].ErrorMessage != "good one" ||
		resp.PossibleSolutions[1].ErrorMessage != "another good one" {
		t.Error("surviving solutions out of order")
	}
}

func TestBuildResponse_NeverGrows(t *testing.T) {
	n := extract.Normalized{
		Errors:    []any{map[string]any{}, map[string]any{}, "bad"},
		Solutions: []any{solutionMap("a"), "bad", solutionMap("b")},
	}

	resp := validatorForTest().buildResponse(n)
	if len(resp.Errors) > len(n.Errors) {
		t.Error("validation added error records")
	}
	if len(resp.PossibleSolutions) > len(n.Solutions) {
		t.Error("validation added solution records")
	}
}

// A solution whose error_message matches nothing in errors is still kept.
func TestBuildResponse_KeepsOrphanSolutions(t *testing.T) {
	n := extract.Normalized{
		Errors:    []any{map[string]any{"error_message": "timeout", "error_type": "TimeoutError"}},
		Solutions: []any{solutionMap("completely unrelated message")},
	}

	resp := validatorForTest().buildResponse(n)
	if len(resp.PossibleSolutions) != 1 {
		t.Error("orphan solution should be kept")
	}
}

func TestBuildResponse_SkipsNonStringSteps(t *testing.T) {
	sol := solutionMap("mixed steps")
	sol["immediate_fix"] = map[string]any{
		"summary": "mixed",
		"steps":   []any{"keep me", 42, map[string]any{"no": "way"}, "and me"},
	}

	resp := validatorForTest().buildResponse(extract.Normalized{
		Errors:    []any{},
		Solutions: []any{sol},
	})
	if len(resp.PossibleSolutions) != 1 {
		t.Fatal("solution with mixed step types should survive")
	}
	steps := resp.PossibleSolutions[0].ImmediateFix.Steps
	if len(steps) != 2 || steps[0] != "keep me" || steps[1] != "and me" {
		t.Errorf("unexpected steps: %v", steps)
	}
}

func TestBuildResponse_CarriesSearchKeywords(t *testing.T) {
	sol := solutionMap("kw")
	sol["search_keywords"] = "golang nil pointer dereference"

	resp := validatorForTest().buildResponse(extract.Normalized{
		Errors:    []any{},
		Solutions: []any{sol},
	})
	if got := resp.PossibleSolutions[0].SearchKeywords; got != "golang nil pointer dereference" {
		t.Errorf("search keywords lost: %q", got)
	}
}
