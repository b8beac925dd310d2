// Package whitelist decides which sites get annotated.
package whitelist

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/idna"
)

var defaults = []string{
	"google.com",
	"amazon.com",
	"amazon.co.uk",
	"amazon.de",
	"amazon.fr",
	"amazon.it",
	"amazon.es",
	"amazon.ca",
	"amazon.com.au",
	"amazon.co.jp",
	"ebay.com",
	"ebay.co.uk",
	"ebay.de",
	"walmart.com",
	"target.com",
	"bestbuy.com",
	"costco.com",
	"alibaba.com",
	"shopify.com",
	"etsy.com",
	"aliexpress.com",
}

// Normalize lowercases a host name and strips a leading "www.".
// Internationalized names are converted to their ASCII form.
func Normalize(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimSuffix(d, ".")
	if ascii, err := idna.Lookup.ToASCII(d); err == nil && ascii != "" {
		d = ascii
	}
	d = strings.ToLower(d)
	return strings.TrimPrefix(d, "www.")
}

// DomainFromURL returns the normalized host of raw. Strings that do not parse
// as an absolute URL are cut at the first slash after an optional scheme.
func DomainFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		return Normalize(u.Hostname())
	}

	host := raw
	for _, scheme := range []string{"https://", "http://"} {
		if len(host) >= len(scheme) && strings.EqualFold(host[:len(scheme)], scheme) {
			host = host[len(scheme):]
			break
		}
	}
	host, _, _ = strings.Cut(host, "/")
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return Normalize(host)
}

// Whitelist is an ordered set of normalized domains.
type Whitelist struct {
	domains []string
}

// New builds a Whitelist from domains, normalizing and dropping empties and duplicates.
func New(domains ...string) *Whitelist {
	w := &Whitelist{}
	for _, d := range domains {
		w.Add(d)
	}
	return w
}

// Default returns the whitelist used until the user stores their own.
func Default() *Whitelist {
	return New(defaults...)
}

// Contains reports whether domain is an entry, after normalization.
func (w *Whitelist) Contains(domain string) bool {
	return slices.Contains(w.domains, Normalize(domain))
}

// IsWhitelisted reports whether a page on domain should be annotated: it
// matches an entry exactly, is a subdomain of one, or is a parent of one.
func (w *Whitelist) IsWhitelisted(domain string) bool {
	d := Normalize(domain)
	if d == "" {
		return false
	}
	for _, entry := range w.domains {
		if d == entry ||
			strings.HasSuffix(d, "."+entry) ||
			strings.HasSuffix(entry, "."+d) {
			return true
		}
	}
	return false
}

// Add appends domain and reports whether it was new.
func (w *Whitelist) Add(domain string) bool {
	d := Normalize(domain)
	if d == "" || slices.Contains(w.domains, d) {
		return false
	}
	w.domains = append(w.domains, d)
	return true
}

// Remove deletes domain and reports whether it was present.
func (w *Whitelist) Remove(domain string) bool {
	d := Normalize(domain)
	i := slices.Index(w.domains, d)
	if i < 0 {
		return false
	}
	w.domains = slices.Delete(w.domains, i, i+1)
	return true
}

// Domains returns a copy of the entries in insertion order.
func (w *Whitelist) Domains() []string {
	return slices.Clone(w.domains)
}

// Len returns the number of entries.
func (w *Whitelist) Len() int {
	return len(w.domains)
}
