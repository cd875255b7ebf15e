package agents

import (
	"context"
	"strings"
	"testing"

	"tribunal/internal/adapters/ai"
	"tribunal/pkg/errors"
)

func TestTextMentionCondition(t *testing.T) {
	cond := TextMentionCondition{Phrase: TerminationPhrase}

	if !cond.ShouldTerminate(Turn{Content: "FINAL VERDICT: STRONG performance"}) {
		t.Error("Expected termination on exact phrase")
	}

	if !cond.ShouldTerminate(Turn{Content: "summary first, then FINAL VERDICT: MIXED performance, done"}) {
		t.Error("Expected termination on phrase anywhere in the text")
	}

	if cond.ShouldTerminate(Turn{Content: "final verdict: strong performance"}) {
		t.Error("Match must be case-sensitive")
	}

	if cond.ShouldTerminate(Turn{Content: "no verdict yet"}) {
		t.Error("Expected no termination without the phrase")
	}
}

func TestConversation_PhraseTermination(t *testing.T) {
	a := &scriptedParticipant{name: "SentimentAnalyst", lines: []string{"The company performance is STRONG"}}
	b := &scriptedParticipant{name: "TechnicalAnalyst", lines: []string{"The company performance is STRONG"}}
	c := &scriptedParticipant{name: "Orchestrator", lines: []string{"FINAL VERDICT: STRONG performance"}}

	conv := NewConversation([]Participant{a, b, c}, TextMentionCondition{Phrase: TerminationPhrase}, 12)

	result, err := conv.Run(context.Background(), "analyze AAPL")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Reason != TerminationPhraseMatched {
		t.Errorf("Expected reason %q, got %q", TerminationPhraseMatched, result.Reason)
	}

	if result.Turns != 3 {
		t.Errorf("Expected exactly 3 turns, got %d", result.Turns)
	}

	if len(result.Transcript) != 3 {
		t.Fatalf("Expected 3 transcript entries, got %d", len(result.Transcript))
	}

	if !strings.Contains(result.FinalUtterance(), "FINAL VERDICT") {
		t.Errorf("Final utterance should carry the verdict, got %q", result.FinalUtterance())
	}
}

func TestConversation_BudgetExhausted(t *testing.T) {
	a := &scriptedParticipant{name: "A", lines: []string{"still thinking"}}
	b := &scriptedParticipant{name: "B", lines: []string{"me too"}}

	conv := NewConversation([]Participant{a, b}, TextMentionCondition{Phrase: TerminationPhrase}, 5)

	result, err := conv.Run(context.Background(), "task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Reason != TerminationBudgetExhausted {
		t.Errorf("Expected reason %q, got %q", TerminationBudgetExhausted, result.Reason)
	}

	if result.Turns != 5 {
		t.Errorf("Expected exactly 5 turns, got %d", result.Turns)
	}
}

func TestConversation_MidCycleTermination(t *testing.T) {
	a := &scriptedParticipant{name: "A", lines: []string{"opening"}}
	b := &scriptedParticipant{name: "B", lines: []string{"FINAL VERDICT: POOR performance"}}
	c := &scriptedParticipant{name: "C", lines: []string{"should never speak"}}

	conv := NewConversation([]Participant{a, b, c}, TextMentionCondition{Phrase: TerminationPhrase}, 9)

	result, err := conv.Run(context.Background(), "task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Turns != 2 {
		t.Errorf("Expected termination mid-cycle after 2 turns, got %d", result.Turns)
	}

	if c.calls != 0 {
		t.Errorf("Third participant should not have spoken, got %d calls", c.calls)
	}
}

func TestConversation_RoundRobinOrder(t *testing.T) {
	a := &scriptedParticipant{name: "A"}
	b := &scriptedParticipant{name: "B"}
	c := &scriptedParticipant{name: "C"}

	conv := NewConversation([]Participant{a, b, c}, nil, 7)

	result, err := conv.Run(context.Background(), "task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"A", "B", "C", "A", "B", "C", "A"}
	if len(result.Transcript) != len(want) {
		t.Fatalf("Expected %d turns, got %d", len(want), len(result.Transcript))
	}

	for i, turn := range result.Transcript {
		if turn.Speaker != want[i] {
			t.Errorf("Turn %d: expected speaker %q, got %q", i+1, want[i], turn.Speaker)
		}
	}
}

func TestConversation_ParticipantsSeeTranscript(t *testing.T) {
	a := &scriptedParticipant{name: "A", lines: []string{"first"}}
	b := &scriptedParticipant{name: "B", lines: []string{"second"}}

	conv := NewConversation([]Participant{a, b}, nil, 2)

	if _, err := conv.Run(context.Background(), "task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(a.seen) != 1 || a.seen[0] != 0 {
		t.Errorf("First speaker should see an empty transcript, saw lengths %v", a.seen)
	}

	if len(b.seen) != 1 || b.seen[0] != 1 {
		t.Errorf("Second speaker should see one prior turn, saw lengths %v", b.seen)
	}
}

func TestConversation_TurnErrorPropagates(t *testing.T) {
	a := &scriptedParticipant{name: "A", lines: []string{"fine"}}
	b := &scriptedParticipant{name: "B", err: errors.New("provider unreachable")}

	conv := NewConversation([]Participant{a, b}, nil, 4)

	result, err := conv.Run(context.Background(), "task")
	if err == nil {
		t.Fatal("Expected error from failing participant")
	}

	if result != nil {
		t.Error("Result should be nil on turn error")
	}

	if !strings.Contains(err.Error(), "turn 2 (B)") {
		t.Errorf("Error should name the failing turn and speaker, got %q", err.Error())
	}
}

func TestConversation_OnTurnCallback(t *testing.T) {
	a := &scriptedParticipant{name: "A", lines: []string{"one"}}
	b := &scriptedParticipant{name: "B", lines: []string{"two"}}

	conv := NewConversation([]Participant{a, b}, nil, 2)

	var indices []int
	var speakers []string
	conv.OnTurn = func(index int, turn Turn) {
		indices = append(indices, index)
		speakers = append(speakers, turn.Speaker)
	}

	if _, err := conv.Run(context.Background(), "task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(indices) != 2 || indices[0] != 0 || indices[1] != 1 {
		t.Errorf("Expected callback indices [0 1], got %v", indices)
	}

	if speakers[0] != "A" || speakers[1] != "B" {
		t.Errorf("Expected callback speakers [A B], got %v", speakers)
	}
}

func TestConversation_UsageAccumulates(t *testing.T) {
	a := &scriptedParticipant{name: "A", usage: ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
	b := &scriptedParticipant{name: "B", usage: ai.Usage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30}}

	conv := NewConversation([]Participant{a, b}, nil, 2)

	result, err := conv.Run(context.Background(), "task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Usage.TotalTokens != 45 {
		t.Errorf("Expected 45 total tokens, got %d", result.Usage.TotalTokens)
	}

	if result.Usage.PromptTokens != 30 || result.Usage.CompletionTokens != 15 {
		t.Errorf("Unexpected usage split: %+v", result.Usage)
	}
}

func TestConversation_RequiresParticipants(t *testing.T) {
	conv := NewConversation(nil, nil, 3)

	if _, err := conv.Run(context.Background(), "task"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty participant list, got %v", err)
	}
}

func TestConversation_DefaultMaxTurns(t *testing.T) {
	a := &scriptedParticipant{name: "A"}

	conv := NewConversation([]Participant{a}, nil, 0)

	result, err := conv.Run(context.Background(), "task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Turns != defaultMaxTurns {
		t.Errorf("Expected default budget of %d turns, got %d", defaultMaxTurns, result.Turns)
	}
}

func TestRunResult_FinalUtteranceEmpty(t *testing.T) {
	result := &RunResult{}

	if result.FinalUtterance() != "" {
		t.Errorf("Empty transcript should yield empty final utterance, got %q", result.FinalUtterance())
	}
}

// scriptedParticipant replays canned lines and records the transcript
// lengths it was shown.
type scriptedParticipant struct {
	name  string
	lines []string
	usage ai.Usage
	err   error

	calls int
	seen  []int
}

func (p *scriptedParticipant) Name() string { return p.name }

func (p *scriptedParticipant) Respond(_ context.Context, _ string, transcript Transcript) (string, ai.Usage, error) {
	p.seen = append(p.seen, len(transcript))
	if p.err != nil {
		return "", ai.Usage{}, p.err
	}

	line := "nothing to add"
	if p.calls < len(p.lines) {
		line = p.lines[p.calls]
	}
	p.calls++

	return line, p.usage, nil
}
