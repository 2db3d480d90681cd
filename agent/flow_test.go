package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/cardioagent/dialogue"
	"github.com/tbxark/cardioagent/types"
)

type fakePredictor struct {
	errs     []error
	pred     *types.Prediction
	payloads []types.Payload
}

func (p *fakePredictor) Predict(ctx context.Context, payload types.Payload) (*types.Prediction, error) {
	p.payloads = append(p.payloads, payload)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return nil, err
	}
	return p.pred, nil
}

var answers = []struct {
	step   types.Step
	answer string
}{
	{types.StepAge, "54"},
	{types.StepSex, "Masculino"},
	{types.StepChestPain, "ATA"},
	{types.StepRestingBP, "130"},
	{types.StepCholesterol, "220"},
	{types.StepFastingBS, "não"},
	{types.StepRestingECG, "normal"},
	{types.StepMaxHR, "150"},
	{types.StepExang, "nao"},
	{types.StepOldpeak, "1,5"},
	{types.StepSTSlope, "up"},
}

func advance(t *testing.T, f *Flow, sess *Session, input string) *Response {
	t.Helper()
	resp, err := f.Advance(context.Background(), sess, input)
	if err != nil {
		t.Fatalf("advance %q: %v", input, err)
	}
	return resp
}

func fillRecord(t *testing.T, f *Flow, sess *Session) *Response {
	t.Helper()
	resp := advance(t, f, sess, "sim")
	if resp.Step != types.StepAge {
		t.Fatalf("expected age step, got %s", resp.Step)
	}
	for _, a := range answers {
		if sess.Step != a.step {
			t.Fatalf("expected step %s, got %s", a.step, sess.Step)
		}
		resp = advance(t, f, sess, a.answer)
	}
	return resp
}

func TestFlowEndToEnd(t *testing.T) {
	t.Parallel()
	prob := 0.12
	predictor := &fakePredictor{pred: &types.Prediction{Prediction: float64(0), Label: "BAIXO_RISCO", ProbabilityPositive: &prob}}
	f := NewFlow(predictor, nil, nil)
	sess := NewSession("s1")

	resp := advance(t, f, sess, "sim")
	if resp.Message != dialogue.Start() || sess.Step != types.StepAge {
		t.Fatalf("unexpected start: %+v", resp)
	}
	resp = advance(t, f, sess, "54")
	if sess.Step != types.StepSex || *sess.Record.Age != 54 || !strings.Contains(resp.Message, "54 anos") {
		t.Fatalf("unexpected age turn: %+v record=%+v", resp, sess.Record)
	}
	resp = advance(t, f, sess, "masculino")
	if sess.Step != types.StepChestPain || *sess.Record.Sex != types.SexMale || !strings.Contains(resp.Message, "Masculino") {
		t.Fatalf("unexpected sex turn: %+v", resp)
	}

	for _, a := range answers[2:] {
		resp = advance(t, f, sess, a.answer)
	}
	if sess.Step != types.StepConfirmSummary || !strings.HasPrefix(resp.Message, "✅ Resumo dos dados informados") {
		t.Fatalf("expected summary, got %s: %q", sess.Step, resp.Message)
	}

	resp = advance(t, f, sess, "sim")
	if sess.Step != types.StepIdle || resp.Ended {
		t.Fatalf("expected idle after result, got %+v", resp)
	}
	if !strings.Contains(resp.Message, "🟢 BAIXO RISCO CARDÍACO") || !strings.Contains(resp.Message, "12.00%") {
		t.Errorf("unexpected result: %q", resp.Message)
	}
	if len(predictor.payloads) != 1 {
		t.Fatalf("expected one prediction call, got %d", len(predictor.payloads))
	}
	want := types.Payload{
		Age: 54, Sex: "M", ChestPainType: "ATA", RestingBP: 130, Cholesterol: 220, FastingBS: 0,
		RestingECG: "Normal", MaxHR: 150, Exang: 0, Oldpeak: 1.5, STSlope: "Up",
	}
	if predictor.payloads[0] != want {
		t.Errorf("payload = %+v, want %+v", predictor.payloads[0], want)
	}

	resp = advance(t, f, sess, "sim")
	if sess.Step != types.StepAge || sess.Record.Has(types.StepAge) {
		t.Errorf("new assessment should start with an empty record: %+v", sess)
	}
}

func TestFlowResetFromEveryStep(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, nil)
	for _, step := range types.Steps() {
		for _, word := range []string{"menu", "inicio", "início", "recomeçar", "MENU"} {
			age := 40
			sess := &Session{ID: "r", Step: step, Record: types.Record{Age: &age}}
			resp := advance(t, f, sess, word)
			if sess.Step != types.StepIdle || resp.Step != types.StepIdle {
				t.Errorf("%s/%s: expected idle, got %s", step, word, sess.Step)
			}
			if sess.Record.Has(types.StepAge) {
				t.Errorf("%s/%s: record should be cleared", step, word)
			}
			if resp.Message != dialogue.Greeting {
				t.Errorf("%s/%s: expected greeting, got %q", step, word, resp.Message)
			}
		}
	}
}

func TestFlowInvalidInputKeepsState(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, nil)
	invalid := map[types.Step][]string{
		types.StepAge:         {"0", "121", "abc", ""},
		types.StepSex:         {"x"},
		types.StepChestPain:   {"dor"},
		types.StepRestingBP:   {"49", "251"},
		types.StepCholesterol: {"79", "701"},
		types.StepFastingBS:   {"talvez"},
		types.StepRestingECG:  {"ruim"},
		types.StepMaxHR:       {"59", "203"},
		types.StepExang:       {"?"},
		types.StepOldpeak:     {"-0.1", "10.1", "x"},
		types.StepSTSlope:     {"sideways"},
	}
	for step, inputs := range invalid {
		for _, input := range inputs {
			age := 33
			sess := &Session{ID: "i", Step: step}
			if step != types.StepAge {
				sess.Record.Age = &age
			}
			before := sess.Record
			resp := advance(t, f, sess, input)
			if sess.Step != step {
				t.Errorf("%s %q: step moved to %s", step, input, sess.Step)
			}
			if sess.Record != before {
				t.Errorf("%s %q: record changed", step, input)
			}
			if !strings.HasPrefix(resp.Message, "⚠️") {
				t.Errorf("%s %q: expected validation message, got %q", step, input, resp.Message)
			}
		}
	}
}

func TestFlowIdle(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, nil)

	sess := NewSession("idle")
	resp := advance(t, f, sess, "talvez")
	if resp.Message != dialogue.IdleReprompt || sess.Step != types.StepIdle {
		t.Errorf("expected re-prompt, got %+v", resp)
	}
	resp = advance(t, f, sess, "Não")
	if !resp.Ended || resp.Message != dialogue.Farewell || sess.Step != types.StepIdle {
		t.Errorf("expected farewell, got %+v", resp)
	}
	resp = advance(t, f, sess, "vamos")
	if sess.Step != types.StepAge || sess.Closed {
		t.Errorf("a closed session can start again: %+v", sess)
	}
}

func TestFlowMarkupIsIgnored(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, nil)
	for _, input := range []string{"<b>sim</b>", "<script>alert(1)</script>", "sim</p>", "ok <img src=x>"} {
		sess := NewSession("m")
		resp := advance(t, f, sess, input)
		if sess.Step != types.StepIdle || resp.Message != dialogue.IdleReprompt {
			t.Errorf("%q: expected markup to be neutralized, got %+v", input, resp)
		}
	}
	sess := &Session{ID: "m", Step: types.StepAge}
	advance(t, f, sess, "<b>54</b>")
	if sess.Step != types.StepAge || sess.Record.Has(types.StepAge) {
		t.Errorf("markup must not be stored: %+v", sess)
	}
}

func TestFlowPredictionFailureRetry(t *testing.T) {
	t.Parallel()
	predictor := &fakePredictor{
		errs: []error{errors.New("Falha ao chamar a API em http://localhost:8000/predict: connection refused")},
		pred: &types.Prediction{Prediction: float64(1), Label: "ALTO_RISCO"},
	}
	f := NewFlow(predictor, nil, nil)
	sess := NewSession("retry")
	fillRecord(t, f, sess)

	resp := advance(t, f, sess, "sim")
	if sess.Step != types.StepConfirmSummary {
		t.Fatalf("failure should stay at confirmation, got %s", sess.Step)
	}
	if !strings.Contains(resp.Message, "http://localhost:8000/predict") || !strings.Contains(resp.Message, "tentar novamente") {
		t.Errorf("unexpected failure message: %q", resp.Message)
	}
	if len(sess.Record.Missing()) != 0 {
		t.Fatalf("record must be kept after a failure")
	}

	resp = advance(t, f, sess, "sim")
	if sess.Step != types.StepIdle || !strings.Contains(resp.Message, "🔴 ALTO RISCO CARDÍACO") {
		t.Errorf("retry should succeed, got %s: %q", sess.Step, resp.Message)
	}
	if len(predictor.payloads) != 2 || predictor.payloads[0] != predictor.payloads[1] {
		t.Errorf("retry should resend the same payload: %+v", predictor.payloads)
	}
}

func TestFlowConfirmation(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, nil)
	sess := NewSession("c")
	fillRecord(t, f, sess)

	resp := advance(t, f, sess, "quem sabe")
	if sess.Step != types.StepConfirmSummary || resp.Message != dialogue.ConfirmReprompt {
		t.Errorf("expected confirmation re-prompt, got %+v", resp)
	}
	resp = advance(t, f, sess, "nao")
	if sess.Step != types.StepIdle || resp.Message != dialogue.Greeting || sess.Record.Has(types.StepAge) {
		t.Errorf("decline should restart: %+v %+v", resp, sess.Record)
	}
}

func TestFlowIncompleteRecordResumes(t *testing.T) {
	t.Parallel()
	predictor := &fakePredictor{}
	f := NewFlow(predictor, nil, nil)
	age := 50
	sess := &Session{ID: "x", Step: types.StepConfirmSummary, Record: types.Record{Age: &age}}
	resp := advance(t, f, sess, "sim")
	if sess.Step != types.StepSex || len(predictor.payloads) != 0 {
		t.Fatalf("expected resume at sex without calling the API, got %s", sess.Step)
	}
	if !strings.Contains(resp.Message, dialogue.Prompt(types.StepSex)) {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestFlowSummaryAndPayloadRoundTrip(t *testing.T) {
	t.Parallel()
	predictor := &fakePredictor{pred: &types.Prediction{Label: "ALTO_RISCO"}}
	f := NewFlow(predictor, nil, nil)
	sess := NewSession("round-trip")

	var resp *Response
	for _, input := range []string{"sim", "54", "M", "ASY", "140", "289", "não", "normal", "150", "não", "1.5", "Flat"} {
		resp = advance(t, f, sess, input)
	}
	if sess.Step != types.StepConfirmSummary {
		t.Fatalf("expected confirm_summary, got %s", sess.Step)
	}
	for _, want := range []string{
		"👤 Idade: 54",
		"🚻 Sexo: Masculino",
		"ASY (Assintomática)",
		"(mmHg - RestingBP): 140",
		"🧬 Colesterol (mg/dL): 289",
		"🍽️ Jejum (FastingBS): Não",
		"⚡ ECG em repouso (RestingECG): Normal",
		"(bpm - MaxHR): 150",
		"💢 Angina durante exercício (Exang): Não",
		"📉 Oldpeak (mV): 1.5",
		"Flat (plano)",
	} {
		if !strings.Contains(resp.Message, want) {
			t.Errorf("summary missing %q:\n%s", want, resp.Message)
		}
	}

	advance(t, f, sess, "sim")
	if len(predictor.payloads) != 1 {
		t.Fatalf("expected one submission, got %d", len(predictor.payloads))
	}
	want := types.Payload{
		Age: 54, Sex: "M", ChestPainType: "ASY", RestingBP: 140.0, Cholesterol: 289, FastingBS: 0,
		RestingECG: "Normal", MaxHR: 150, Exang: 0, Oldpeak: 1.5, STSlope: "Flat",
	}
	if got := predictor.payloads[0]; got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
}

func TestFlowResumeSkipsCollectedFields(t *testing.T) {
	t.Parallel()
	predictor := &fakePredictor{pred: &types.Prediction{Label: "BAIXO_RISCO"}}
	f := NewFlow(predictor, nil, nil)
	age, bp, chol, hr := 50, 120, 200, 160
	chest, ecg, slope := types.ChestPainNonAnginal, types.ECGNormal, types.SlopeUp
	no := false
	sess := &Session{ID: "x", Step: types.StepConfirmSummary, Record: types.Record{
		Age: &age, ChestPainType: &chest, RestingBP: &bp, Cholesterol: &chol, FastingBS: &no,
		RestingECG: &ecg, MaxHR: &hr, Exang: &no, STSlope: &slope,
	}}

	advance(t, f, sess, "sim")
	if sess.Step != types.StepSex {
		t.Fatalf("expected resume at sex, got %s", sess.Step)
	}
	resp := advance(t, f, sess, "F")
	if sess.Step != types.StepOldpeak || !strings.Contains(resp.Message, dialogue.Prompt(types.StepOldpeak)) {
		t.Fatalf("expected jump to oldpeak, got %s: %q", sess.Step, resp.Message)
	}
	resp = advance(t, f, sess, "0,5")
	if sess.Step != types.StepConfirmSummary || !strings.HasPrefix(resp.Message, "✅ Resumo dos dados informados") {
		t.Fatalf("expected summary, got %s: %q", sess.Step, resp.Message)
	}
	advance(t, f, sess, "sim")
	if sess.Step != types.StepIdle || len(predictor.payloads) != 1 {
		t.Errorf("expected one submission, got step %s and %d calls", sess.Step, len(predictor.payloads))
	}
}

func TestFlowInvokeSessions(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, NewSessionStore(NewMemoryCache[*Session](0)))
	ctxA := WithSessionKey(context.Background(), "a")
	ctxB := WithSessionKey(context.Background(), "b")

	if _, err := f.Invoke(ctxA, &Request{UserInput: "sim"}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if _, err := f.Invoke(ctxA, &Request{UserInput: "54"}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	resp, err := f.Invoke(ctxB, &Request{UserInput: "54"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if resp.Step != types.StepIdle {
		t.Errorf("session b should be independent, got %s", resp.Step)
	}

	sess, err := f.Sessions().Load(ctxA)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.Step != types.StepSex || sess.Record.Age == nil || sess.UpdatedAt.IsZero() {
		t.Errorf("unexpected stored session: %+v", sess)
	}

	resp, err = f.Invoke(ctxA, &Request{UserInput: "x", ResetStep: true})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if resp.Step != types.StepIdle || resp.Message != dialogue.IdleReprompt {
		t.Errorf("reset step should evaluate the answer at idle, got %+v", resp)
	}

	if _, err := f.Invoke(context.Background(), &Request{UserInput: "sim"}); !errors.Is(err, ErrNoSessionKey) {
		t.Errorf("expected ErrNoSessionKey, got %v", err)
	}
}

func TestFlowInvokeSerializesSameSession(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, NewSessionStore(NewMemoryCache[*Session](0)))
	ctx := WithSessionKey(context.Background(), "double-submit")
	if _, err := f.Invoke(ctx, &Request{UserInput: "sim"}); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Invoke(ctx, &Request{UserInput: "54"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("invoke: %v", err)
	}

	sess, err := f.Sessions().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.Step != types.StepSex || sess.Record.Age == nil || *sess.Record.Age != 54 {
		t.Errorf("one answer should win and the rest be rejected at sex, got %+v", sess)
	}
	if n := f.turns.size(); n != 0 {
		t.Errorf("expected released turn locks, %d left", n)
	}
}

func TestAgentRun(t *testing.T) {
	t.Parallel()
	f := NewFlow(&fakePredictor{}, nil, nil)
	a := NewAgent("cardio", "assessment", f)
	ctx := WithSessionKey(context.Background(), "cli")

	iter := a.Run(ctx, &adk.AgentInput{Messages: []adk.Message{schema.UserMessage("não")}})
	event, ok := iter.Next()
	if !ok {
		t.Fatal("expected an event")
	}
	if event.Err != nil {
		t.Fatalf("unexpected error: %v", event.Err)
	}
	msg, err := event.Output.MessageOutput.GetMessage()
	if err != nil || msg.Content != dialogue.Farewell {
		t.Fatalf("unexpected message: %v %v", msg, err)
	}
	if event.Action == nil || !event.Action.Exit {
		t.Error("farewell should exit")
	}
	if _, ok := iter.Next(); ok {
		t.Error("expected a single event")
	}

	iter = a.Run(ctx, &adk.AgentInput{})
	event, ok = iter.Next()
	if !ok || event.Err == nil {
		t.Error("expected an error event for empty input")
	}
}
