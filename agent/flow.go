package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbxark/cardioagent/command"
	"github.com/tbxark/cardioagent/dialogue"
	"github.com/tbxark/cardioagent/patch"
	"github.com/tbxark/cardioagent/predict"
	"github.com/tbxark/cardioagent/rationale"
	"github.com/tbxark/cardioagent/types"
)

// Predictor returns the classifier verdict for a complete payload.
type Predictor interface {
	Predict(ctx context.Context, payload types.Payload) (*types.Prediction, error)
}

// Flow is the assessment state machine.
type Flow struct {
	predictor Predictor
	parser    command.Parser
	local     *command.LocalCommandParser
	sessions  *SessionStore
	turns     *keyedMutex
}

// NewFlow builds a flow. A nil parser recognizes keywords only and a nil
// store keeps sessions in memory.
func NewFlow(predictor Predictor, parser command.Parser, sessions *SessionStore) *Flow {
	local := command.NewLocalCommandParser()
	if parser == nil {
		parser = local
	}
	if sessions == nil {
		sessions = NewSessionStore(NewMemoryCache[*Session](0))
	}
	return &Flow{
		predictor: predictor,
		parser:    parser,
		local:     local,
		sessions:  sessions,
		turns:     newKeyedMutex(),
	}
}

func (f *Flow) Sessions() *SessionStore {
	return f.sessions
}

// Invoke runs one turn for the session routed by ctx and persists it.
// Turns of the same session run one at a time.
func (f *Flow) Invoke(ctx context.Context, req *Request) (*Response, error) {
	key, _ := SessionKeyFromContext(ctx)
	unlock := f.turns.Lock(key)
	defer unlock()

	sess, err := f.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if req.ResetStep {
		sess.Step = types.StepIdle
	}
	resp, err := f.Advance(ctx, sess, req.UserInput)
	if err != nil {
		return nil, err
	}
	if err := f.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return resp, nil
}

// Advance applies one user answer to sess.
func (f *Flow) Advance(ctx context.Context, sess *Session, raw string) (*Response, error) {
	text := normalizeInput(raw)
	slog.Debug("Advancing session", "session", sess.ID, "step", sess.Step, "input", text)

	if f.local.IsReset(text) {
		sess.Restart()
		return f.reply(sess, dialogue.Greeting), nil
	}

	switch {
	case sess.Step == types.StepIdle:
		return f.handleIdle(ctx, sess, text), nil
	case sess.Step == types.StepConfirmSummary:
		return f.handleConfirm(ctx, sess, text), nil
	case sess.Step.IsField():
		return f.handleField(sess, text), nil
	default:
		slog.Warn("Unknown step, restarting", "session", sess.ID, "step", sess.Step)
		sess.Restart()
		return f.reply(sess, dialogue.Greeting), nil
	}
}

func (f *Flow) intent(ctx context.Context, sess *Session, text string) command.Command {
	req := &types.ToolRequest{
		Step: sess.Step,
		MessagePair: types.MessagePair{
			Question: sess.LatestQuestion,
			Answer:   text,
		},
	}
	if sess.Step == types.StepConfirmSummary {
		req.Missing = sess.Record.Missing()
	}
	cmd, err := f.parser.ParseCommand(ctx, req)
	if err != nil {
		if !errors.Is(err, command.ErrUnrecognized) {
			slog.Warn("Failed to parse command", "session", sess.ID, "error", err)
		}
		return command.None
	}
	slog.Debug("Parsed command", "session", sess.ID, "step", sess.Step, "command", cmd)
	return cmd
}

func (f *Flow) handleIdle(ctx context.Context, sess *Session, text string) *Response {
	switch f.intent(ctx, sess, text) {
	case command.Affirm:
		sess.Restart()
		sess.Step = types.StepAge
		return f.reply(sess, dialogue.Start())
	case command.Decline:
		sess.Restart()
		sess.Closed = true
		resp := f.reply(sess, dialogue.Farewell)
		resp.Ended = true
		return resp
	case command.Reset:
		sess.Restart()
		return f.reply(sess, dialogue.Greeting)
	default:
		return f.reply(sess, dialogue.IdleReprompt)
	}
}

func (f *Flow) handleConfirm(ctx context.Context, sess *Session, text string) *Response {
	switch f.intent(ctx, sess, text) {
	case command.Affirm:
		return f.submit(ctx, sess)
	case command.Decline, command.Reset:
		sess.Restart()
		return f.reply(sess, dialogue.Greeting)
	default:
		return f.reply(sess, dialogue.ConfirmReprompt)
	}
}

func (f *Flow) handleField(sess *Session, text string) *Response {
	step := sess.Step
	parse, ok := fieldParsers[step]
	if !ok {
		return f.handleError(sess, fmt.Errorf("no parser for step %s", step))
	}
	value, err := parse(text)
	if err != nil {
		var vErr *types.ValidationError
		if errors.As(err, &vErr) {
			slog.Debug("Rejected answer", "session", sess.ID, "step", step, "pointer", vErr.JSONPointer)
			return f.reply(sess, vErr.Message)
		}
		return f.handleError(sess, err)
	}

	allowed, err := writablePaths(step)
	if err != nil {
		return f.handleError(sess, err)
	}
	pointer := step.Pointer()
	record, err := patch.Write(sess.Record, allowed, pointer, value)
	if err != nil {
		return f.handleError(sess, fmt.Errorf("failed to store %s: %w", pointer, err))
	}
	sess.Record = record
	sess.Step = sess.Record.NextMissing(step)
	slog.Debug("Stored answer", "session", sess.ID, "pointer", pointer, "next", sess.Step)
	return f.reply(sess, dialogue.Advance(step, sess.Record))
}

func (f *Flow) submit(ctx context.Context, sess *Session) *Response {
	payload, err := predict.PayloadFromRecord(sess.Record)
	if err != nil {
		var missing *types.MissingFieldsError
		if errors.As(err, &missing) {
			return f.resumeAtMissing(sess, missing)
		}
		return f.handleError(sess, err)
	}
	if f.predictor == nil {
		return f.reply(sess, dialogue.FormatFailure(errors.New("nenhum serviço de predição configurado")))
	}

	pred, err := f.predictor.Predict(ctx, payload)
	if err != nil {
		slog.Warn("Prediction failed", "session", sess.ID, "error", err)
		return f.reply(sess, dialogue.FormatFailure(err))
	}
	slog.Info("Prediction received", "session", sess.ID, "label", pred.Label, "high_risk", pred.HighRisk())

	sess.Step = types.StepIdle
	return f.reply(sess, dialogue.BuildResult(pred, rationale.Explain(payload, pred)))
}

// resumeAtMissing sends the conversation back to the first missing field.
func (f *Flow) resumeAtMissing(sess *Session, missing *types.MissingFieldsError) *Response {
	for _, step := range types.FieldSteps() {
		if !sess.Record.Has(step) {
			sess.Step = step
			break
		}
	}
	names := make([]string, 0, len(missing.Missing))
	for _, field := range missing.Missing {
		names = append(names, field.DisplayName)
	}
	msg := fmt.Sprintf("⚠️ Ainda faltam dados para enviar à API: %s.\n\n%s", strings.Join(names, ", "), dialogue.Prompt(sess.Step))
	return f.reply(sess, msg)
}

func (f *Flow) reply(sess *Session, message string) *Response {
	sess.LatestQuestion = message
	return &Response{
		Message: message,
		Step:    sess.Step,
	}
}

func (f *Flow) handleError(sess *Session, err error) *Response {
	slog.Error("Failed to process answer", "session", sess.ID, "step", sess.Step, "error", err)
	message := fmt.Sprintf("Desculpe, ocorreu um problema ao processar sua resposta: %s", err.Error())
	return &Response{
		Message: message,
		Step:    sess.Step,
	}
}
