package predict

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/cardioagent/types"
)

func ptr[T any](v T) *T { return &v }

func samplePatient() types.Patient {
	return types.Patient{
		Age: 54, Sex: types.SexMale, ChestPainType: types.ChestPainAtypicalAngina,
		RestingBP: 130, Cholesterol: 220, FastingBS: false, RestingECG: types.ECGNormal,
		MaxHR: 150, Exang: false, Oldpeak: 1.5, STSlope: types.SlopeUp,
	}
}

func TestBuildPayloadWireNames(t *testing.T) {
	t.Parallel()
	raw, err := sonic.Marshal(BuildPayload(samplePatient()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := sonic.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"Age": float64(54), "Sex": "M", "ChestPainType": "ATA", "RestingBP": float64(130),
		"Cholesterol": float64(220), "FastingBS": float64(0), "RestingECG": "Normal",
		"MaxHR": float64(150), "Exang": float64(0), "Oldpeak": 1.5, "ST_Slope": "Up",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v (%T), want %v", k, got[k], got[k], v)
		}
	}
}

func TestPayloadFromRecordBlocksIncomplete(t *testing.T) {
	t.Parallel()
	_, err := PayloadFromRecord(types.Record{Age: ptr(54)})
	var missing *types.MissingFieldsError
	if !errors.As(err, &missing) || len(missing.Missing) != 10 {
		t.Fatalf("expected 10 missing fields, got %v", err)
	}

	p := samplePatient()
	full := types.Record{
		Age: &p.Age, Sex: &p.Sex, ChestPainType: &p.ChestPainType, RestingBP: &p.RestingBP,
		Cholesterol: &p.Cholesterol, FastingBS: ptr(true), RestingECG: &p.RestingECG,
		MaxHR: &p.MaxHR, Exang: ptr(true), Oldpeak: &p.Oldpeak, STSlope: &p.STSlope,
	}
	payload, err := PayloadFromRecord(full)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.FastingBS != 1 || payload.Exang != 1 || payload.Oldpeak != 1.5 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestPredictOK(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"ST_Slope":"Up"`) {
			t.Errorf("unexpected body: %s", body)
		}
		_, _ = io.WriteString(w, `{"prediction":1,"label":"ALTO_RISCO","probability_positive":0.87,"warnings":["colesterol alto"]}`)
	}))
	defer srv.Close()

	pred, err := NewClient(srv.URL, time.Second).Predict(context.Background(), BuildPayload(samplePatient()))
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if pred.Label != "ALTO_RISCO" || pred.ProbabilityPositive == nil || *pred.ProbabilityPositive != 0.87 {
		t.Errorf("unexpected prediction: %+v", pred)
	}
	if !pred.HighRisk() || len(pred.Warnings) != 1 {
		t.Errorf("unexpected prediction: %+v", pred)
	}
}

func TestPredictNumericOnly(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"prediction":0}`)
	}))
	defer srv.Close()

	pred, err := NewClient(srv.URL, time.Second).Predict(context.Background(), BuildPayload(samplePatient()))
	if err != nil {
		t.Fatalf("a bare numeric prediction is a valid verdict: %v", err)
	}
	if pred.HighRisk() {
		t.Errorf("prediction 0 should be low risk: %+v", pred)
	}
}

func TestPredictFailures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}, "503"},
		{"malformed", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "not json")
		}, "decode response"},
		{"empty object", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{}`)
		}, "missing label and prediction"},
		{"null", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `null`)
		}, "missing label and prediction"},
		{"error body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"error":"model not loaded"}`)
		}, "missing label and prediction"},
	}
	for _, c := range cases {
		srv := httptest.NewServer(c.handler)
		_, err := NewClient(srv.URL, time.Second).Predict(context.Background(), BuildPayload(samplePatient()))
		srv.Close()

		var pErr *Error
		if !errors.As(err, &pErr) {
			t.Fatalf("%s: expected *Error, got %v", c.name, err)
		}
		msg := err.Error()
		if !strings.Contains(msg, "Falha ao chamar a API em "+srv.URL) || !strings.Contains(msg, c.want) {
			t.Errorf("%s: unexpected message %q", c.name, msg)
		}
	}
}

func TestPredictUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/predict"
	srv.Close()

	_, err := NewClient(url, time.Second).Predict(context.Background(), BuildPayload(samplePatient()))
	if err == nil || !strings.Contains(err.Error(), url) {
		t.Fatalf("expected error naming %s, got %v", url, err)
	}
}

func TestPredictTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Predict(context.Background(), BuildPayload(samplePatient()))
	var pErr *Error
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *Error on timeout, got %v", err)
	}
}
