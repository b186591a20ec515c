package middleware

import (
	"reflect"
	"testing"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a@x.com", []string{"a@x.com"}},
		{"a@x.com, b@y.com", []string{"a@x.com", "b@y.com"}},
		{" a@x.com ,, b@y.com ,", []string{"a@x.com", "b@y.com"}},
	}
	for _, tt := range tests {
		if got := parseCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContains(t *testing.T) {
	list := []string{"admin@x.com", "ops@x.com"}
	if !contains(list, "ops@x.com") {
		t.Error("expected ops@x.com to be found")
	}
	if contains(list, "user@x.com") {
		t.Error("did not expect user@x.com to be found")
	}
	if contains(nil, "anything") {
		t.Error("empty list contains nothing")
	}
}
