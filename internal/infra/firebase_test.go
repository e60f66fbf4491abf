package infra

import "testing"

func TestCallerFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
		want   Caller
	}{
		{"empty", map[string]interface{}{}, Caller{UID: "u1", Plan: "free"}},
		{"email and plan", map[string]interface{}{"email": "a@b.c", "plan": "pro"}, Caller{UID: "u1", Email: "a@b.c", Plan: "pro"}},
		{"wrong types", map[string]interface{}{"email": 42, "plan": true}, Caller{UID: "u1", Plan: "free"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CallerFromClaims("u1", tt.claims); *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}
