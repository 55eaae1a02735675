package windowing

import "github.com/anthropics/anthropic-sdk-go"

// Stats summarizes one window preparation.
type Stats struct {
	Total          int
	Budget         int
	IncludedTurns  int
	SkippedTurns   int
	DroppedLeading int
	// OverBudgetNewest is set when the newest turn alone exceeds Budget.
	// That turn is still sent.
	OverBudgetNewest bool
}

// Span is a turn as the half-open message range [Start, End).
type Span struct {
	Start, End int
}

// SplitTurns groups msgs into turns. Messages before the first text-bearing
// user message belong to no turn and are reported via the first span's Start.
func SplitTurns(msgs []anthropic.MessageParam) []Span {
	var spans []Span
	for i, m := range msgs {
		if !startsTurn(m) {
			continue
		}
		if n := len(spans); n > 0 {
			spans[n-1].End = i
		}
		spans = append(spans, Span{Start: i, End: len(msgs)})
	}
	return spans
}

func startsTurn(m anthropic.MessageParam) bool {
	if m.Role != anthropic.MessageParamRoleUser {
		return false
	}
	for _, blk := range m.Content {
		if blk.OfToolResult != nil {
			return false
		}
	}
	return len(m.Content) > 0
}

// PrepareSendWindow returns the newest whole turns of msgs whose estimated
// size fits budget. A budget <= 0 disables trimming. The newest turn is
// always included.
func PrepareSendWindow(msgs []anthropic.MessageParam, budget int) ([]anthropic.MessageParam, Stats) {
	spans := SplitTurns(msgs)
	if budget <= 0 || len(spans) == 0 {
		total := 0
		for _, m := range msgs {
			total += EstimateMessage(m)
		}
		return msgs, Stats{Total: total, Budget: budget, IncludedTurns: len(spans)}
	}

	total, start, included := 0, len(msgs), 0
	for i := len(spans) - 1; i >= 0; i-- {
		cost := 0
		for _, m := range msgs[spans[i].Start:spans[i].End] {
			cost += EstimateMessage(m)
		}
		if included > 0 && total+cost > budget {
			break
		}
		total += cost
		start = spans[i].Start
		included++
	}

	return msgs[start:], Stats{
		Total:            total,
		Budget:           budget,
		IncludedTurns:    included,
		SkippedTurns:     len(spans) - included,
		DroppedLeading:   spans[0].Start,
		OverBudgetNewest: included == 1 && total > budget,
	}
}
