package pricing

import (
	"strings"
)

const ebaySearchURL = "https://www.ebay.com/sch/i.html"

// BuildAffiliateURL returns an eBay search link for "name platform" tagged with a campaign id.
// The campaign id comes from configuration and is appended as is.
func BuildAffiliateURL(name, platform, affiliateID string) string {
	return ebaySearchURL + "?_nkw=" + encodeComponent(name+" "+platform) + "&_sacat=0&campid=" + affiliateID
}

// encodeComponent percent-encodes s as a URI component. Letters, digits and -_.!~*'() pass
// through; everything else is escaped byte by byte as UTF-8.
func encodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if componentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func componentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
