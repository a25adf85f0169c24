package main

import (
	"reflect"
	"testing"
)

const testPostID = "665f1c2e9b1d4a0012ab34cd"

func TestRewriteDirectThreadArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"feedview"},
			want: []string{"feedview"},
		},
		{
			name: "bare post id",
			in:   []string{"feedview", testPostID},
			want: []string{"feedview", "thread", testPostID},
		},
		{
			name: "post url",
			in:   []string{"feedview", "https://feed.example.com/posts/" + testPostID},
			want: []string{"feedview", "thread", testPostID},
		},
		{
			name: "post id after value flag",
			in:   []string{"feedview", "--config", "./feedview.toml", testPostID},
			want: []string{"feedview", "--config", "./feedview.toml", "thread", testPostID},
		},
		{
			name: "post id after equals flag",
			in:   []string{"feedview", "--config=./feedview.toml", testPostID},
			want: []string{"feedview", "--config=./feedview.toml", "thread", testPostID},
		},
		{
			name: "post id after bool flag",
			in:   []string{"feedview", "--pretty", testPostID},
			want: []string{"feedview", "--pretty", "thread", testPostID},
		},
		{
			name: "post id after double dash",
			in:   []string{"feedview", "--", testPostID},
			want: []string{"feedview", "--", "thread", testPostID},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"feedview", "comments", "list", testPostID},
			want: []string{"feedview", "comments", "list", testPostID},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"feedview", "wat"},
			want: []string{"feedview", "wat"},
		},
		{
			name: "url without post path not rewritten",
			in:   []string{"feedview", "https://feed.example.com/users/" + testPostID},
			want: []string{"feedview", "https://feed.example.com/users/" + testPostID},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectThreadArgs(append([]string(nil), tt.in...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
