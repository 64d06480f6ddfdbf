package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "wiki.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = PagesLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != pagesModule {
		t.Fatalf("expected module %s, got %v", pagesModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != pagesModule {
		t.Fatalf("expected module field %s, got %v", pagesModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestWithPageContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}

	WithPageContext(rec, " docs/intro ", "")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	if rec.fields[0][fieldPageURL] != "docs/intro" {
		t.Fatalf("expected trimmed page url, got %v", rec.fields[0])
	}
	if _, ok := rec.fields[0][fieldPageOp]; ok {
		t.Fatalf("expected empty action to be skipped, got %v", rec.fields[0])
	}
}

func TestContextFieldsMergeAndCopy(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithFields(ctx, map[string]any{"remote": "127.0.0.1"})

	fields := ContextFields(ctx)
	if fields[fieldRequestID] != "req-1" || fields["remote"] != "127.0.0.1" {
		t.Fatalf("unexpected context fields: %v", fields)
	}

	fields["remote"] = "mutated"
	if ContextFields(ctx)["remote"] != "127.0.0.1" {
		t.Fatal("expected ContextFields to return a copy")
	}
	if RequestID(ctx) != "req-1" {
		t.Fatalf("expected request id req-1, got %q", RequestID(ctx))
	}
	if RequestID(context.Background()) != "" {
		t.Fatal("expected empty request id on bare context")
	}
}
