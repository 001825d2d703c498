package filesystem

import (
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home := UserHomeDir()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "absolute", in: "/var/lib/panel.db", want: "/var/lib/panel.db"},
		{name: "home", in: "~/data/history.db", want: filepath.Join(home, "data", "history.db")},
		{name: "relative", in: "./a/../b", want: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAppPath(t *testing.T) {
	want := filepath.Join(UserHomeDir(), AppDirName, "config.yaml")
	if got := AppPath("config.yaml"); got != want {
		t.Errorf("AppPath() = %q, want %q", got, want)
	}
}
