package posts

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Trimmed  Title ", "trimmed--title"},
		{"Go 1.22: What's New?", "go-122-whats-new"},
		{"already-a-slug", "already-a-slug"},
		{"Symbols £$% here", "symbols--here"},
	}
	for _, c := range cases {
		if got := Slugify(c.title); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}
