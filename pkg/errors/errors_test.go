package errors

import (
	"testing"
)

func TestWarnRoutesToZerologSink(t *testing.T) {
	var received []error
	SetZerologWarnFunc(func(w error) { received = append(received, w) })
	defer SetZerologWarnFunc(nil)

	// 明示的なハンドラが未設定なら、zerologシンクが警告を受け取る。
	Warn(NewConvergenceWarning("elastic_net", 100, ""))

	if len(received) != 1 {
		t.Fatalf("zerolog sink received %d warnings, want 1", len(received))
	}
	if _, ok := received[0].(*ConvergenceWarning); !ok {
		t.Errorf("sink received %T, want *ConvergenceWarning", received[0])
	}
}

func TestWarnExplicitHandlerOverridesSink(t *testing.T) {
	var sink, handled []error
	SetZerologWarnFunc(func(w error) { sink = append(sink, w) })
	defer SetZerologWarnFunc(nil)

	SetWarningHandler(func(w error) { handled = append(handled, w) })
	defer SetWarningHandler(nil)

	Warn(NewCoverageWarning("penalty=1", 1, 5))

	if len(handled) != 1 {
		t.Fatalf("explicit handler received %d warnings, want 1", len(handled))
	}
	if len(sink) != 0 {
		t.Errorf("zerolog sink received %d warnings, want 0 while a handler is set", len(sink))
	}

	// ハンドラをnilに戻すとzerologルーティングが復活する。
	SetWarningHandler(nil)
	Warn(NewCoverageWarning("penalty=1", 2, 5))
	if len(sink) != 1 {
		t.Errorf("zerolog sink received %d warnings after handler reset, want 1", len(sink))
	}
}

func TestWarningMessages(t *testing.T) {
	tests := []struct {
		name    string
		warning error
		want    string
	}{
		{
			name:    "convergence with message",
			warning: NewConvergenceWarning("elastic_net", 50, "config penalty=1"),
			want:    "elastic_net failed to converge after 50 iterations: config penalty=1",
		},
		{
			name:    "coverage",
			warning: NewCoverageWarning("penalty=1", 2, 5),
			want:    "config penalty=1 has metrics for only 3 of 5 folds and is excluded from selection",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.warning.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
