package crawl

import (
	"net/url"

	"github.com/fwojciec/arachne"
)

// ShortLocation shortens loc for progress output. Locations of one crawl
// usually share a host, so only the path and query are kept, and long
// paths are cut from the left to keep the informative end.
func ShortLocation(loc arachne.Location, maxLen int) string {
	s := string(loc)
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = u.EscapedPath()
		if s == "" {
			s = "/"
		}
		if u.RawQuery != "" {
			s += "?" + u.RawQuery
		}
	}
	return truncateLeft(s, maxLen)
}

func truncateLeft(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		// Too short for the "..." prefix.
		return s[len(s)-maxLen:]
	}
	return "..." + s[len(s)-maxLen+3:]
}
