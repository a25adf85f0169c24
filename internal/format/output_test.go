package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	ID   string   `json:"nodeId"`
	Tags []string `json:"tags"`
}

func TestWrite(t *testing.T) {
	v := map[string]any{"data": []sample{{ID: "c1", Tags: []string{"a&b"}}}}
	cases := []struct {
		format string
		pretty bool
		want   string
	}{
		{format: "", want: `{"data":[{"nodeId":"c1","tags":["a&b"]}]}` + "\n"},
		{format: "json", pretty: true, want: "{\n  \"data\": [\n    {\n      \"nodeId\": \"c1\",\n      \"tags\": [\n        \"a&b\"\n      ]\n    }\n  ]\n}\n"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := Write(&buf, v, tc.format, tc.pretty); err != nil {
			t.Fatalf("Write(%q): %v", tc.format, err)
		}
		if buf.String() != tc.want {
			t.Fatalf("Write(%q) = %q, want %q", tc.format, buf.String(), tc.want)
		}
	}
}

func TestWrite_YAMLUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{ID: "c1", Tags: []string{"x"}}, "yaml", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "nodeId: c1") || strings.Contains(out, "id:") {
		t.Fatalf("unexpected yaml: %q", out)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, 1, "edn", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
