package phone

import "testing"

func TestTelHref(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "  ", want: ""},
		{name: "international", input: "+46 8-123 456 78", want: "tel:+46812345678"},
		{name: "unparseable keeps digits", input: "(12) 3-4", want: "tel:1234"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TelHref(tc.input); got != tc.want {
				t.Fatalf("TelHref(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
