package scheduling

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestInfrastructureErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"deadline exceeded", context.DeadlineExceeded, CodeValidationTimedOut},
		{"cancelled", context.Canceled, CodeValidationTimedOut},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), CodeValidationTimedOut},
		{"generic failure", errors.New("connection refused"), CodeDependencyUnavailable},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			re := InfrastructureError(tc.err, "store call failed")
			if re.Code != tc.want {
				t.Fatalf("code = %s, want %s", re.Code, tc.want)
			}
			if !errors.Is(re, tc.err) {
				t.Fatalf("wrapped error not reachable via errors.Is")
			}
		})
	}
}
