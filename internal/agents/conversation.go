// Package agents implements the round-robin analysis conversation: three
// prompt-configured participants take turns producing utterances, optionally
// calling gateway tools, until one of them emits the termination phrase or
// the turn budget runs out.
package agents

import (
	"context"
	"strings"
	"time"

	"tribunal/internal/adapters/ai"
	"tribunal/internal/metrics"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// TerminationPhrase is the literal substring that ends a conversation when
// it appears anywhere in an utterance.
const TerminationPhrase = "FINAL VERDICT"

const defaultMaxTurns = 6

// Turn is a single utterance in the conversation.
type Turn struct {
	Speaker string
	Content string
}

// Transcript is the ordered record of turns for one analysis run.
type Transcript []Turn

// TerminationReason explains why a conversation stopped.
type TerminationReason string

const (
	// TerminationPhraseMatched means an utterance contained the termination phrase.
	TerminationPhraseMatched TerminationReason = "phrase_matched"
	// TerminationBudgetExhausted means the turn budget ran out before the phrase appeared.
	TerminationBudgetExhausted TerminationReason = "budget_exhausted"
)

// TerminationCondition decides whether an utterance ends the conversation.
type TerminationCondition interface {
	ShouldTerminate(turn Turn) bool
}

// TextMentionCondition terminates when the utterance contains Phrase.
// The match is a case-sensitive substring check, anywhere in the text.
type TextMentionCondition struct {
	Phrase string
}

func (c TextMentionCondition) ShouldTerminate(turn Turn) bool {
	return strings.Contains(turn.Content, c.Phrase)
}

// Participant produces the next utterance given the task and the running
// transcript. Implementations complete any nested tool round-trips before
// returning.
type Participant interface {
	Name() string
	Respond(ctx context.Context, task string, transcript Transcript) (string, ai.Usage, error)
}

// RunResult is the outcome of one conversation run.
type RunResult struct {
	Transcript Transcript
	Reason     TerminationReason
	Turns      int
	Usage      ai.Usage
	Duration   time.Duration
}

// FinalUtterance returns the last turn's content, or "" for an empty transcript.
// Under TerminationBudgetExhausted it may not contain a verdict at all.
func (r *RunResult) FinalUtterance() string {
	if len(r.Transcript) == 0 {
		return ""
	}
	return r.Transcript[len(r.Transcript)-1].Content
}

// Conversation drives participants in fixed round-robin order. Turns are
// strictly sequential; the termination condition is checked after every
// utterance, so a match stops the loop even mid-cycle.
type Conversation struct {
	participants []Participant
	condition    TerminationCondition
	maxTurns     int

	// OnTurn, when set, is invoked after each utterance lands (before the
	// termination check). Used to stream turns to the CLI.
	OnTurn func(index int, turn Turn)

	log *logger.Logger
}

// NewConversation builds a conversation over the given participants. A nil
// condition means only the turn budget terminates the loop.
func NewConversation(participants []Participant, condition TerminationCondition, maxTurns int) *Conversation {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	return &Conversation{
		participants: participants,
		condition:    condition,
		maxTurns:     maxTurns,
		log:          logger.Component("conversation"),
	}
}

// Run executes the loop until termination and returns the full transcript.
// A turn error aborts the run and propagates; the transcript accumulated so
// far is discarded with it.
func (c *Conversation) Run(ctx context.Context, task string) (*RunResult, error) {
	if len(c.participants) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "conversation requires at least one participant")
	}

	start := time.Now()
	c.log.Infof("Starting conversation: participants=%d max_turns=%d", len(c.participants), c.maxTurns)

	result := &RunResult{Transcript: make(Transcript, 0, c.maxTurns)}

	for i := 0; i < c.maxTurns; i++ {
		participant := c.participants[i%len(c.participants)]

		utterance, usage, err := participant.Respond(ctx, task, result.Transcript)
		if err != nil {
			return nil, errors.Wrapf(err, "turn %d (%s) failed", i+1, participant.Name())
		}

		turn := Turn{Speaker: participant.Name(), Content: utterance}
		result.Transcript = append(result.Transcript, turn)
		result.Turns++
		result.Usage.Add(usage)

		c.log.Debugf("Turn %d/%d: speaker=%s chars=%d", i+1, c.maxTurns, turn.Speaker, len(turn.Content))

		if c.OnTurn != nil {
			c.OnTurn(i, turn)
		}

		if c.condition != nil && c.condition.ShouldTerminate(turn) {
			result.Reason = TerminationPhraseMatched
			return c.finish(result, start), nil
		}
	}

	result.Reason = TerminationBudgetExhausted
	return c.finish(result, start), nil
}

func (c *Conversation) finish(result *RunResult, start time.Time) *RunResult {
	result.Duration = time.Since(start)

	c.log.Infof("Conversation complete: reason=%s turns=%d duration=%v tokens=%d",
		result.Reason, result.Turns, result.Duration, result.Usage.TotalTokens)
	metrics.RecordConversation(string(result.Reason), result.Turns)

	return result
}
