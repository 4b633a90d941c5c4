package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type recordingLogger struct {
	nopLogger
	msgs []string
	args [][]any
}

func (r *recordingLogger) Debug(_ context.Context, msg string, args ...any) {
	r.msgs = append(r.msgs, msg)
	r.args = append(r.args, args)
}

func TestLoggingInterceptor_PassesThroughAndLogs(t *testing.T) {
	log := &recordingLogger{}
	s := &GRPCServer{logger: log}

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	h := func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}
	if len(log.msgs) != 1 || log.msgs[0] != "grpc call" {
		t.Fatalf("unexpected log lines: %v", log.msgs)
	}
	if log.args[0][1] != info.FullMethod || log.args[0][3] != codes.OK.String() {
		t.Fatalf("unexpected log args: %v", log.args[0])
	}
}

func TestLoggingInterceptor_KeepsHandlerError(t *testing.T) {
	log := &recordingLogger{}
	s := &GRPCServer{logger: log}

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	h := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	}

	_, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if log.args[0][3] != codes.NotFound.String() {
		t.Fatalf("unexpected code in log: %v", log.args[0])
	}
}
