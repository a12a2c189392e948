package llm

import (
	"context"
	"errors"
	"testing"
)

func TestConfigured(t *testing.T) {
	fake := ClientFunc(func(ctx context.Context, prompt string) (string, error) { return "{}", nil })
	tests := []struct {
		name   string
		client Client
		want   bool
	}{
		{name: "nil", client: nil, want: false},
		{name: "placeholder", client: PlaceholderClient{}, want: false},
		{name: "placeholder pointer", client: &PlaceholderClient{}, want: false},
		{name: "func", client: fake, want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Configured(tt.client); got != tt.want {
				t.Fatalf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaceholderReturnsNotConfigured(t *testing.T) {
	_, err := PlaceholderClient{}.Complete(context.Background(), "prompt")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
