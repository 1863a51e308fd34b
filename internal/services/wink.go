package services

import (
	"fmt"
	"html"
	"net/url"
)

// WinkSearchURL builds a search link for the title on the streaming partner.
func WinkSearchURL(baseURL, title string) string {
	if title == "" {
		return ""
	}
	return fmt.Sprintf("%s/search?q=%s", baseURL, url.QueryEscape(title))
}

// WinkCaption formats the streaming partner block appended to a candidate
// caption. Empty when no link could be built.
func WinkCaption(title, winkURL string) string {
	if winkURL == "" {
		return ""
	}
	return fmt.Sprintf("📺 <b>Watch on Wink:</b>\n<a href=\"%s\">🔍 Find %s on Wink</a>", winkURL, html.EscapeString(title))
}
