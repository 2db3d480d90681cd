package command

import (
	"context"
	"errors"

	"github.com/tbxark/cardioagent/types"
)

type Command string

const (
	Affirm  Command = "affirm"
	Decline Command = "decline"
	Reset   Command = "reset"
	None    Command = "none"
)

// ErrUnrecognized is returned by a parser that could not classify the
// answer, so that a fail-back chain moves on to the next parser.
var ErrUnrecognized = errors.New("answer not recognized")

type Parser interface {
	ParseCommand(ctx context.Context, req *types.ToolRequest) (Command, error)
}
