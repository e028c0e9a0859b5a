package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestClient(t *testing.T, opts ...connect.ClientOption) *EvalClient {
	t.Helper()
	srv, err := New()
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Stop()
	})
	return NewEvalClient(ts.Client(), ts.URL, opts...)
}

func field(msg *structpb.Struct, name string) *structpb.Value {
	return msg.GetFields()[name]
}

func TestEvaluate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		source   string
		output   string
		value    string
		wantErr  string
		wantLine float64
	}{
		{name: "print", source: "print 1 add 2", output: "3\n"},
		{name: "trailing expression", source: "print \"a\"\n[1, 2]", output: "a\n", value: "[1, 2]"},
		{name: "syntax error", source: "print (1", wantErr: "Error: expected", wantLine: 1},
		{name: "runtime error", source: "print 1\nprint missing", output: "1\n", wantErr: "undefined variable 'missing'", wantLine: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := client.Evaluate(ctx, tc.source, "")
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got := field(res, "output").GetStringValue(); got != tc.output {
				t.Errorf("output = %q, want %q", got, tc.output)
			}
			if got := field(res, "value").GetStringValue(); got != tc.value {
				t.Errorf("value = %q, want %q", got, tc.value)
			}
			gotErr := field(res, "error").GetStringValue()
			if tc.wantErr == "" {
				if gotErr != "" {
					t.Errorf("unexpected error %q", gotErr)
				}
				return
			}
			if !strings.Contains(gotErr, tc.wantErr) {
				t.Errorf("error = %q, want it to contain %q", gotErr, tc.wantErr)
			}
			if got := field(res, "line").GetNumberValue(); got != tc.wantLine {
				t.Errorf("line = %v, want %v", got, tc.wantLine)
			}
		})
	}
}

func TestEvaluateIsolatedWithoutSession(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Evaluate(ctx, "define x to 1", ""); err != nil {
		t.Fatal(err)
	}
	res, err := client.Evaluate(ctx, "print x", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(field(res, "error").GetStringValue(), "undefined variable 'x'") {
		t.Errorf("global leaked between one-shot evaluations: %v", res)
	}
}

func TestEvaluateRejects(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Evaluate(ctx, "", "")
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("empty source: code = %v, want InvalidArgument", connect.CodeOf(err))
	}

	_, err = client.Evaluate(ctx, "print 1", "no-such-session")
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("unknown session: code = %v, want NotFound", connect.CodeOf(err))
	}
}

func TestSessionPersistence(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id, err := client.CreateSession(ctx, "scratch")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	steps := []struct {
		source string
		output string
		value  string
	}{
		{"define x to 2\nprint x", "2\n", ""},
		{"function triple(n)\n    return n multiply 3", "", ""},
		{"triple(x)", "", "6"},
		{"x to x add 1\nprint x", "3\n", ""},
	}
	for _, step := range steps {
		res, err := client.Evaluate(ctx, step.source, id)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", step.source, err)
		}
		if msg := field(res, "error").GetStringValue(); msg != "" {
			t.Fatalf("Evaluate(%q): %s", step.source, msg)
		}
		if got := field(res, "output").GetStringValue(); got != step.output {
			t.Errorf("Evaluate(%q) output = %q, want %q", step.source, got, step.output)
		}
		if got := field(res, "value").GetStringValue(); got != step.value {
			t.Errorf("Evaluate(%q) value = %q, want %q", step.source, got, step.value)
		}
		if got := field(res, "session").GetStringValue(); got != id {
			t.Errorf("session = %q, want %q", got, id)
		}
	}

	if err := client.DestroySession(ctx, id); err != nil {
		t.Fatalf("DestroySession: %v", err)
	}
	if _, err := client.Evaluate(ctx, "print x", id); connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("evaluate after destroy: err = %v, want NotFound", err)
	}
	err = client.DestroySession(ctx, id)
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) || connectErr.Code() != connect.CodeNotFound {
		t.Errorf("second destroy: err = %v, want NotFound", err)
	}
}

func TestCheckSyntax(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.CheckSyntax(ctx, "if true\n    print 1\n")
	if err != nil {
		t.Fatal(err)
	}
	if !field(res, "valid").GetBoolValue() {
		t.Errorf("valid program reported invalid: %v", res)
	}

	res, err = client.CheckSyntax(ctx, "print 1\nprint \"open")
	if err != nil {
		t.Fatal(err)
	}
	if field(res, "valid").GetBoolValue() {
		t.Error("unterminated string reported valid")
	}
	if got := field(res, "line").GetNumberValue(); got != 2 {
		t.Errorf("line = %v, want 2", got)
	}

	if _, err := client.CheckSyntax(ctx, ""); connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("empty source: code = %v", connect.CodeOf(err))
	}
}

func TestEvaluateOverGRPCWeb(t *testing.T) {
	client := newTestClient(t, connect.WithGRPCWeb())
	res, err := client.Evaluate(context.Background(), "print \"web\"", "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := field(res, "output").GetStringValue(); got != "web\n" {
		t.Errorf("output = %q", got)
	}
}
