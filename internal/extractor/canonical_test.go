// internal/extractor/canonical_test.go
package extractor

import "testing"

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "scheme and host lowercased",
			in:   "HTTPS://CDN.Example.COM/Image.JPG",
			want: "https://cdn.example.com/Image.JPG",
		},
		{
			name: "default port dropped",
			in:   "https://example.com:443/a.png",
			want: "https://example.com/a.png",
		},
		{
			name: "fragment dropped",
			in:   "https://example.com/a.png#section",
			want: "https://example.com/a.png",
		},
		{
			name: "tracking parameters stripped",
			in:   "https://example.com/a.png?utm_source=x&utm_medium=y&fbclid=abc",
			want: "https://example.com/a.png",
		},
		{
			name: "resolution parameters survive",
			in:   "https://example.com/a.png?w=2560&quality=90",
			want: "https://example.com/a.png?quality=90&w=2560",
		},
		{
			name: "mixed query keeps non-tracking keys sorted",
			in:   "https://example.com/a.png?utm_campaign=z&h=1440&w=2560",
			want: "https://example.com/a.png?h=1440&w=2560",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.in); got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeduplicatorAdmit(t *testing.T) {
	d := NewDeduplicator(nil)

	if !d.Admit("https://example.com/a.png") {
		t.Fatal("first URL must be admitted")
	}
	if d.Admit("HTTPS://EXAMPLE.COM/a.png?utm_source=feed") {
		t.Error("canonically equal URL must be suppressed")
	}
	if !d.Admit("https://example.com/a.png?w=2560") {
		t.Error("URL with a resolution parameter is a distinct asset")
	}
}
