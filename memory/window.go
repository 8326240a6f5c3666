package memory

import (
	"github.com/tiktoken-go/tokenizer"

	"github.com/hupe1980/agentrelay/core"
)

// WindowPolicy selects the slice of persisted history sent to the model. The
// input is never mutated; policies return a (possibly shorter) view built
// from whole messages.
//
// All policies are pair-safe: a tool-call message and its tool-result
// messages are treated as one indivisible unit, so a window never exposes an
// orphaned half of a tool exchange to the provider.
type WindowPolicy interface {
	Apply(msgs []core.Message) []core.Message
}

// FullBuffer sends the entire history unmodified.
type FullBuffer struct{}

// Compile-time assertions.
var (
	_ WindowPolicy = FullBuffer{}
	_ WindowPolicy = (*LastKWindow)(nil)
	_ WindowPolicy = (*TokenBudgetWindow)(nil)
)

// Apply implements WindowPolicy.
func (FullBuffer) Apply(msgs []core.Message) []core.Message { return msgs }

// LastKWindow keeps system messages plus the most recent K non-system units.
// A unit is either a standalone message or a tool exchange (the assistant
// tool-call message together with its tool results).
type LastKWindow struct {
	K int
}

// Apply implements WindowPolicy.
func (w *LastKWindow) Apply(msgs []core.Message) []core.Message {
	if w.K <= 0 {
		return msgs
	}

	system, units := segment(msgs)
	if len(units) > w.K {
		units = units[len(units)-w.K:]
	}

	return flatten(system, units)
}

// TokenBudgetWindow keeps system messages plus as many of the most recent
// units as fit into Budget tokens, counted with the cl100k_base encoding.
// At least the most recent unit is always kept even if it alone exceeds the
// budget, since an empty context is never useful.
type TokenBudgetWindow struct {
	Budget int
	codec  tokenizer.Codec
}

// NewTokenBudgetWindow creates a token-counting window policy.
func NewTokenBudgetWindow(budget int) (*TokenBudgetWindow, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &TokenBudgetWindow{Budget: budget, codec: codec}, nil
}

// Apply implements WindowPolicy.
func (w *TokenBudgetWindow) Apply(msgs []core.Message) []core.Message {
	if w.Budget <= 0 {
		return msgs
	}

	system, units := segment(msgs)

	spent := 0
	for _, m := range system {
		spent += w.countTokens(m)
	}

	// Walk units newest to oldest, keeping whole units while they fit.
	keep := len(units)
	for i := len(units) - 1; i >= 0; i-- {
		cost := 0
		for _, m := range units[i] {
			cost += w.countTokens(m)
		}
		if spent+cost > w.Budget && i < len(units)-1 {
			break
		}
		spent += cost
		keep = i
	}

	return flatten(system, units[keep:])
}

func (w *TokenBudgetWindow) countTokens(m core.Message) int {
	text := m.Text()
	if text == "" {
		text = m.Preview(0)
	}
	ids, _, err := w.codec.Encode(text)
	if err != nil {
		// Fall back to a byte heuristic rather than dropping the message.
		return len(text) / 4
	}
	return len(ids)
}

// segment splits the history into system messages and ordered units, where a
// unit is one message or one complete tool exchange.
func segment(msgs []core.Message) (system []core.Message, units [][]core.Message) {
	i := 0
	for i < len(msgs) {
		m := msgs[i]

		if m.Role == core.RoleSystem {
			system = append(system, m)
			i++
			continue
		}

		if len(m.ToolCalls()) > 0 {
			unit := []core.Message{m}
			j := i + 1
			for j < len(msgs) && msgs[j].Role == core.RoleTool {
				unit = append(unit, msgs[j])
				j++
			}
			units = append(units, unit)
			i = j
			continue
		}

		units = append(units, []core.Message{m})
		i++
	}
	return system, units
}

func flatten(system []core.Message, units [][]core.Message) []core.Message {
	out := make([]core.Message, 0, len(system))
	out = append(out, system...)
	for _, unit := range units {
		out = append(out, unit...)
	}
	return out
}
