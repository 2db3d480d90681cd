package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tbxark/cardioagent/types"
)

type Keywords struct {
	Affirm  []string
	Decline []string
}

type LocalCommandParser struct {
	ResetKeywords []string
	StepKeywords  map[types.Step]Keywords
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		ResetKeywords: []string{"menu", "inicio", "início", "recomeçar"},
		StepKeywords: map[types.Step]Keywords{
			types.StepIdle: {
				Affirm:  []string{"sim", "vamos", "ok"},
				Decline: []string{"não", "negativo"},
			},
			types.StepConfirmSummary: {
				Affirm:  []string{"sim", "confirmo", "ok"},
				Decline: []string{"não", "nao"},
			},
		},
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsReset reports whether answer restarts the conversation from any step.
func (p *LocalCommandParser) IsReset(answer string) bool {
	return slices.Contains(p.ResetKeywords, normalize(answer))
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, req *types.ToolRequest) (Command, error) {
	normalized := normalize(req.MessagePair.Answer)
	if slices.Contains(p.ResetKeywords, normalized) {
		return Reset, nil
	}
	keywords, ok := p.StepKeywords[req.Step]
	if !ok {
		return None, fmt.Errorf("no keywords for step %s: %w", req.Step, ErrUnrecognized)
	}
	if slices.Contains(keywords.Affirm, normalized) {
		return Affirm, nil
	}
	if slices.Contains(keywords.Decline, normalized) {
		return Decline, nil
	}
	return None, ErrUnrecognized
}

type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

func (p *FailbackCommandParser) ParseCommand(ctx context.Context, req *types.ToolRequest) (Command, error) {
	lastErr := ErrUnrecognized
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, req)
		if err == nil {
			return cmd, nil
		}
		lastErr = err
	}
	return None, lastErr
}
