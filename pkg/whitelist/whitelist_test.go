package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "amazon.com", "amazon.com"},
		{"www stripped", "www.amazon.com", "amazon.com"},
		{"uppercase", "WWW.Amazon.COM", "amazon.com"},
		{"surrounding space", "  ebay.de ", "ebay.de"},
		{"trailing dot", "etsy.com.", "etsy.com"},
		{"only inner www kept", "shop.www.example.com", "shop.www.example.com"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https", "https://www.amazon.com/dp/B000?x=1", "amazon.com"},
		{"port", "http://localhost:8080/page", "localhost"},
		{"subdomain", "https://smile.amazon.co.uk/", "smile.amazon.co.uk"},
		{"no scheme", "www.walmart.com/ip/123", "walmart.com"},
		{"bad escape falls back", "https://target.com/%zz", "target.com"},
		{"bare host", "costco.com", "costco.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainFromURL(tt.in))
		})
	}
}

func TestDefault(t *testing.T) {
	w := Default()
	assert.Equal(t, 21, w.Len())
	assert.Equal(t, "google.com", w.Domains()[0])
	assert.Equal(t, "aliexpress.com", w.Domains()[20])
	assert.True(t, w.Contains("WWW.AMAZON.DE"))
}

func TestIsWhitelisted(t *testing.T) {
	w := New("amazon.com", "shop.example.org")

	tests := []struct {
		domain string
		want   bool
	}{
		{"amazon.com", true},
		{"www.amazon.com", true},
		{"smile.amazon.com", true},
		{"example.org", true}, // parent of an entry
		{"notamazon.com", false},
		{"amazon.com.evil.net", false},
		{"ebay.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, w.IsWhitelisted(tt.domain))
		})
	}
}

func TestAddRemove(t *testing.T) {
	w := New()
	assert.True(t, w.Add("www.Etsy.com"))
	assert.False(t, w.Add("etsy.com"))
	assert.False(t, w.Add("  "))
	assert.True(t, w.Add("target.com"))
	assert.Equal(t, []string{"etsy.com", "target.com"}, w.Domains())

	assert.True(t, w.Remove("WWW.ETSY.COM"))
	assert.False(t, w.Remove("etsy.com"))
	assert.Equal(t, []string{"target.com"}, w.Domains())

	d := w.Domains()
	d[0] = "mutated"
	assert.Equal(t, []string{"target.com"}, w.Domains())
}
