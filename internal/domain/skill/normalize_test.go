package skill

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "trim and lower", in: []string{"  Go ", "PostgreSQL"}, want: []string{"go", "postgresql"}},
		{name: "comma joined", in: []string{"Go, Docker,,  AWS"}, want: []string{"go", "docker", "aws"}},
		{name: "dedupe keeps first position", in: []string{"docker", "Go", "DOCKER", "go,docker"}, want: []string{"docker", "go"}},
		{name: "only blanks", in: []string{" ", ",", " , ,"}, want: []string{}},
		{name: "inner whitespace kept", in: []string{"Machine  Learning"}, want: []string{"machine  learning"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"Go, Rust", " rust ", "SQL"},
		{"a,b,c", "C", "B", "a"},
		{},
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("Normalize not idempotent for %q (-once +twice):\n%s", in, diff)
		}
	}
}

func TestMerge(t *testing.T) {
	merged, added := Merge([]string{"go", "sql"}, []string{"docker", "go", "aws"})
	if diff := cmp.Diff([]string{"go", "sql", "docker", "aws"}, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"docker", "aws"}, added); diff != "" {
		t.Fatalf("added mismatch (-want +got):\n%s", diff)
	}

	merged, added = Merge([]string{"go"}, []string{"go"})
	if diff := cmp.Diff([]string{"go"}, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
	if len(added) != 0 {
		t.Fatalf("expected nothing added, got %v", added)
	}
}
