package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// EvalClient calls an evaluation service over Connect, gRPC or gRPC-Web
// depending on the client options.
type EvalClient struct {
	evaluate       *connect.Client[structpb.Struct, structpb.Struct]
	checkSyntax    *connect.Client[structpb.Struct, structpb.Struct]
	createSession  *connect.Client[structpb.Struct, structpb.Struct]
	destroySession *connect.Client[structpb.Struct, structpb.Struct]
}

// NewEvalClient creates a client for the service at baseURL.
func NewEvalClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *EvalClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &EvalClient{
		evaluate:       connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+EvaluateProcedure, opts...),
		checkSyntax:    connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+CheckSyntaxProcedure, opts...),
		createSession:  connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+CreateSessionProcedure, opts...),
		destroySession: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+DestroySessionProcedure, opts...),
	}
}

// Evaluate runs source, in session when it is not empty.
func (c *EvalClient) Evaluate(ctx context.Context, source, session string) (*structpb.Struct, error) {
	return call(ctx, c.evaluate, map[string]any{"source": source, "session": session})
}

// CheckSyntax validates source without running it.
func (c *EvalClient) CheckSyntax(ctx context.Context, source string) (*structpb.Struct, error) {
	return call(ctx, c.checkSyntax, map[string]any{"source": source})
}

// CreateSession opens a session and returns its id.
func (c *EvalClient) CreateSession(ctx context.Context, name string) (string, error) {
	res, err := call(ctx, c.createSession, map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	return stringField(res, "session"), nil
}

// DestroySession closes a session.
func (c *EvalClient) DestroySession(ctx context.Context, session string) error {
	_, err := call(ctx, c.destroySession, map[string]any{"session": session})
	return err
}

func call(ctx context.Context, client *connect.Client[structpb.Struct, structpb.Struct], fields map[string]any) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	res, err := client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
