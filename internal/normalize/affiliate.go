package normalize

import (
	"net/url"
	"strconv"
	"time"
)

// TrackingLink wraps a raw product URL in the network's click-redirect
// endpoint for sources that hand out plain URLs instead of pre-built
// affiliate links.
func TrackingLink(productURL, affCode string, now time.Time) string {
	unique := strconv.FormatInt(now.UnixMilli(), 10)
	return "https://event.2performant.com/events/click?ad_type=quicklink" +
		"&aff_code=" + url.QueryEscape(affCode) +
		"&unique=" + unique +
		"&redirect_to=" + url.QueryEscape(productURL)
}
