package main

import (
	"encoding/json"
	"testing"
)

func TestCompileJQ(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		payload   string
		expectErr bool
		want      interface{}
	}{
		{
			name:    "identity",
			expr:    ".",
			payload: `[{"hash": "0xaaa"}]`,
			want:    []interface{}{map[string]interface{}{"hash": "0xaaa"}},
		},
		{
			name:    "length of history array",
			expr:    "length",
			payload: `[{"hash": "0xaaa"}, {"hash": "0xbbb"}]`,
			want:    2,
		},
		{
			name:    "project hashes",
			expr:    "[.[].hash]",
			payload: `[{"hash": "0xaaa"}, {"hash": "0xbbb"}]`,
			want:    []interface{}{"0xaaa", "0xbbb"},
		},
		{
			name:    "filter by field",
			expr:    `[.[] | select(.possible_spam == true)] | length`,
			payload: `[{"possible_spam": true}, {"possible_spam": false}]`,
			want:    1,
		},
		{
			name:      "invalid expression",
			expr:      ".[",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := compileJQ(tt.expr)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var payload interface{}
			if err := json.Unmarshal([]byte(tt.payload), &payload); err != nil {
				t.Fatalf("failed to parse payload: %v", err)
			}

			iter := code.Run(payload)
			v, ok := iter.Next()
			if !ok {
				t.Fatal("expected a result")
			}
			if err, isErr := v.(error); isErr {
				t.Fatalf("jq evaluation failed: %v", err)
			}

			got, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("failed to marshal result: %v", err)
			}
			want, err := json.Marshal(tt.want)
			if err != nil {
				t.Fatalf("failed to marshal expectation: %v", err)
			}
			if string(got) != string(want) {
				t.Fatalf("got %s, want %s", got, want)
			}
		})
	}
}
