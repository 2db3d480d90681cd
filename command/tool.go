package command

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/cardioagent/structured"
	"github.com/tbxark/cardioagent/types"
)

const (
	parseIntentToolName        = "classify_answer_intent"
	parseIntentToolDescription = "Classify the user's answer to a yes/no question of a cardiovascular risk assessment as affirm, decline or none."
)

type parseIntentInput struct {
	Intent Command `json:"intent" jsonschema:"required,enum=affirm,enum=decline,enum=none,description=The user's intent"`
}

// ToolBasedCommandParser classifies free-form answers with a tool-calling
// model. It only handles the idle and confirmation steps.
type ToolBasedCommandParser struct {
	chain *structured.Chain[*types.ToolRequest, parseIntentInput]
}

func NewToolBasedCommandParser(chatModel model.ToolCallingChatModel) (*ToolBasedCommandParser, error) {
	chain, err := structured.NewChain[*types.ToolRequest, parseIntentInput](
		chatModel,
		buildParseIntentPrompt,
		parseIntentToolName,
		parseIntentToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedCommandParser{chain: chain}, nil
}

func (p *ToolBasedCommandParser) ParseCommand(ctx context.Context, req *types.ToolRequest) (Command, error) {
	if req.Step != types.StepIdle && req.Step != types.StepConfirmSummary {
		return None, fmt.Errorf("step %s: %w", req.Step, ErrUnrecognized)
	}
	result, err := p.chain.Invoke(ctx, req)
	if err != nil {
		return None, err
	}
	switch result.Intent {
	case Affirm, Decline, None:
		return result.Intent, nil
	case "":
		return None, fmt.Errorf("empty intent returned by %s", parseIntentToolName)
	default:
		return None, fmt.Errorf("unexpected intent %q returned by %s", result.Intent, parseIntentToolName)
	}
}

func buildParseIntentPrompt(ctx context.Context, req *types.ToolRequest) ([]*schema.Message, error) {
	message, err := types.FormatToolRequest(req)
	if err != nil {
		return nil, fmt.Errorf("convert to prompt message failed: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You assist a Brazilian Portuguese chatbot that collects clinical data for a cardiovascular risk assessment.

The assistant asked the user a yes/no question. Decide what the user's answer means, always reading it together with the assistant's question.

Choose exactly one intent:
- affirm: the user clearly agrees, e.g. "claro", "pode ser", "bora", "pode enviar".
- decline: the user clearly refuses or wants to stop, e.g. "agora não", "prefiro não", "quero sair".
- none: anything else, including questions, greetings and unrelated text.

Call the '%s' tool with the result.`, parseIntentToolName)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(message),
	}, nil
}
