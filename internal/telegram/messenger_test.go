package telegram_test

import (
	"reflect"
	"testing"

	"sonarrbot/internal/telegram"
)

func TestPairRows(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		want    [][]string
	}{
		{
			name:    "even count pairs cleanly",
			options: []string{"a", "b", "c", "d"},
			want:    [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:    "odd count leaves a lone trailing row",
			options: []string{"a", "b", "c"},
			want:    [][]string{{"a", "b"}, {"c"}},
		},
		{
			name:    "single option",
			options: []string{"a"},
			want:    [][]string{{"a"}},
		},
		{
			name:    "empty",
			options: nil,
			want:    [][]string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := telegram.PairRows(tc.options)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("PairRows(%v) = %v, want %v", tc.options, got, tc.want)
			}
		})
	}
}

func TestSingleRows(t *testing.T) {
	got := telegram.SingleRows([]string{"/tv", "/anime"})
	want := [][]string{{"/tv"}, {"/anime"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SingleRows = %v, want %v", got, want)
	}
}
