package orgs

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "acme", "acme"},
		{"uppercase", "Acme", "acme"},
		{"spaces", "Acme Inc", "acme-inc"},
		{"punctuation", "Acme, Inc.", "acme-inc"},
		{"collapses runs", "Acme --  Inc", "acme-inc"},
		{"leading and trailing junk", "  !!Acme!!  ", "acme"},
		{"digits", "Team 42", "team-42"},
		{"unicode stripped", "Café Ltd", "caf-ltd"},
		{"all junk", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
