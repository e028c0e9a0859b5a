package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chazu/hlang/cache"
	"github.com/chazu/hlang/compiler"
	"github.com/chazu/hlang/vm"
)

// Procedure names of the evaluation service. Requests and responses are
// google.protobuf.Struct messages.
const (
	EvalServiceName         = "hlang.v1.EvalService"
	EvaluateProcedure       = "/" + EvalServiceName + "/Evaluate"
	CheckSyntaxProcedure    = "/" + EvalServiceName + "/CheckSyntax"
	CreateSessionProcedure  = "/" + EvalServiceName + "/CreateSession"
	DestroySessionProcedure = "/" + EvalServiceName + "/DestroySession"
)

type (
	structRequest  = connect.Request[structpb.Struct]
	structResponse = connect.Response[structpb.Struct]
)

// EvalService implements the evaluation service handlers.
type EvalService struct {
	worker    *Worker
	sessions  *SessionStore
	programs  *cache.Programs
	newInterp InterpreterFactory
}

// NewEvalService creates an EvalService.
func NewEvalService(worker *Worker, sessions *SessionStore, programs *cache.Programs, newInterp InterpreterFactory) *EvalService {
	return &EvalService{
		worker:    worker,
		sessions:  sessions,
		programs:  programs,
		newInterp: newInterp,
	}
}

// Register mounts every procedure of the service on mux.
func (s *EvalService) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(EvaluateProcedure, connect.NewUnaryHandler(EvaluateProcedure, s.Evaluate, opts...))
	mux.Handle(CheckSyntaxProcedure, connect.NewUnaryHandler(CheckSyntaxProcedure, s.CheckSyntax, opts...))
	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, s.CreateSession, opts...))
	mux.Handle(DestroySessionProcedure, connect.NewUnaryHandler(DestroySessionProcedure, s.DestroySession, opts...))
}

// Evaluate runs a program, in a session when "session" is set or in a fresh
// interpreter otherwise. The response carries the printed "output", the
// "value" of a trailing expression, and "error" and "line" on failure.
func (s *EvalService) Evaluate(ctx context.Context, req *structRequest) (*structResponse, error) {
	source := stringField(req.Msg, "source")
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	var session *Session
	if id := stringField(req.Msg, "session"); id != "" {
		var ok bool
		if session, ok = s.sessions.Get(id); !ok {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", id))
		}
	}

	res, err := s.worker.Do(ctx, func() (any, error) {
		if session != nil {
			session.out.Reset()
			return s.evaluate(session.interp, session.out, source), nil
		}
		out := &bytes.Buffer{}
		return s.evaluate(s.newInterp(out), out, source), nil
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	fields := res.(map[string]any)
	if session != nil {
		fields["session"] = session.ID
	}
	return newStructResponse(fields)
}

// CheckSyntax tokenizes and parses source without running it.
func (s *EvalService) CheckSyntax(ctx context.Context, req *structRequest) (*structResponse, error) {
	source := stringField(req.Msg, "source")
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	fields := map[string]any{"valid": true}
	if _, err := s.programs.Parse(source); err != nil {
		fields["valid"] = false
		addError(fields, err)
	}
	return newStructResponse(fields)
}

// CreateSession opens a session with an optional "name".
func (s *EvalService) CreateSession(ctx context.Context, req *structRequest) (*structResponse, error) {
	session := s.sessions.Create(stringField(req.Msg, "name"))
	return newStructResponse(map[string]any{
		"session": session.ID,
		"name":    session.Name,
	})
}

// DestroySession closes the session named by "session".
func (s *EvalService) DestroySession(ctx context.Context, req *structRequest) (*structResponse, error) {
	id := stringField(req.Msg, "session")
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session is required"))
	}
	if !s.sessions.Destroy(id) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", id))
	}
	return newStructResponse(map[string]any{"session": id})
}

// evaluate parses and runs source. Must be called on the worker goroutine.
func (s *EvalService) evaluate(in *vm.Interpreter, out *bytes.Buffer, source string) map[string]any {
	fields := map[string]any{}
	program, err := s.programs.Parse(source)
	if err == nil {
		var value vm.Value
		var ok bool
		value, ok, err = in.Execute(program)
		if ok {
			fields["value"] = vm.Stringify(value)
		}
	}
	fields["output"] = out.String()
	if err != nil {
		addError(fields, err)
	}
	return fields
}

// addError records a language error and the line it occurred on.
func addError(fields map[string]any, err error) {
	fields["error"] = err.Error()
	var syntaxErr *compiler.SyntaxError
	var runtimeErr *vm.RuntimeError
	switch {
	case errors.As(err, &syntaxErr):
		fields["line"] = syntaxErr.Line
	case errors.As(err, &runtimeErr):
		fields["line"] = runtimeErr.Line
	}
}

func stringField(msg *structpb.Struct, name string) string {
	return msg.GetFields()[name].GetStringValue()
}

func newStructResponse(fields map[string]any) (*structResponse, error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}
