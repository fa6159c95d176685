package gemini

import (
	"testing"

	"google.golang.org/genai"
)

func TestTranslate_ToolCallWinsOverContent(t *testing.T) {
	t.Parallel()
	ev := translate(&genai.LiveServerMessage{
		ToolCall: &genai.LiveServerToolCall{
			FunctionCalls: []*genai.FunctionCall{
				{ID: "c1", Name: "list_events", Args: map[string]any{"days": float64(1)}},
			},
		},
	})
	if ev == nil || len(ev.ToolCalls) != 1 {
		t.Fatalf("ev = %+v", ev)
	}
	if ev.ToolCalls[0].Name != "list_events" || ev.ToolCalls[0].ID != "c1" {
		t.Fatalf("call = %+v", ev.ToolCalls[0])
	}
}

func TestTranslate_StreamingChunkIsPartial(t *testing.T) {
	t.Parallel()
	ev := translate(&genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: "Sure, checking"}},
			},
		},
	})
	if ev == nil || ev.Content == nil {
		t.Fatalf("ev = %+v", ev)
	}
	if !ev.Partial {
		t.Fatalf("streaming chunk not marked partial")
	}
	if ev.Content.Parts[0].Text != "Sure, checking" {
		t.Fatalf("text = %q", ev.Content.Parts[0].Text)
	}
}

func TestTranslate_FinalAggregateIsNotPartial(t *testing.T) {
	t.Parallel()
	ev := translate(&genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			GenerationComplete: true,
			ModelTurn: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: "Sure, checking your calendar now."}},
			},
		},
	})
	if ev == nil || ev.Partial {
		t.Fatalf("final aggregate marked partial: %+v", ev)
	}
}

func TestTranslate_TurnBoundaries(t *testing.T) {
	t.Parallel()
	ev := translate(&genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{TurnComplete: true},
	})
	if ev == nil || !ev.TurnComplete || ev.Interrupted {
		t.Fatalf("ev = %+v", ev)
	}

	ev = translate(&genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{Interrupted: true},
	})
	if ev == nil || !ev.Interrupted {
		t.Fatalf("ev = %+v", ev)
	}
}

func TestTranslate_SetupAcknowledgementIsDropped(t *testing.T) {
	t.Parallel()
	if ev := translate(&genai.LiveServerMessage{
		SetupComplete: &genai.LiveServerSetupComplete{},
	}); ev != nil {
		t.Fatalf("ev = %+v, want nil", ev)
	}
	if ev := translate(nil); ev != nil {
		t.Fatalf("ev = %+v, want nil", ev)
	}
}

func TestUserTurnIsExplicitlyComplete(t *testing.T) {
	t.Parallel()
	in := userTurn("what's on my calendar?")
	if in.TurnComplete == nil || !*in.TurnComplete {
		t.Fatalf("TurnComplete = %v, want pointer to true", in.TurnComplete)
	}
	if len(in.Turns) != 1 || in.Turns[0].Role != genai.RoleUser {
		t.Fatalf("turns = %+v", in.Turns)
	}
	if got := in.Turns[0].Parts[0].Text; got != "what's on my calendar?" {
		t.Fatalf("text = %q", got)
	}
}

func TestCalendarDeclarationsCoverRegistry(t *testing.T) {
	t.Parallel()
	decls := calendarDeclarations()
	if len(decls) != 7 {
		t.Fatalf("declared %d tools, want 7", len(decls))
	}
	seen := map[string]bool{}
	for _, d := range decls {
		if d.Name == "" {
			t.Fatalf("unnamed declaration: %+v", d)
		}
		if seen[d.Name] {
			t.Fatalf("duplicate declaration %q", d.Name)
		}
		seen[d.Name] = true
		if d.Parameters == nil || d.Parameters.Type != genai.TypeObject {
			t.Fatalf("%s: parameters must be an object schema", d.Name)
		}
		for _, req := range d.Parameters.Required {
			if _, ok := d.Parameters.Properties[req]; !ok {
				t.Fatalf("%s: required field %q not declared", d.Name, req)
			}
		}
	}
}
