// SPDX-License-Identifier: MIT

package validate

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrURLRequired is returned for an absent or blank URL.
	ErrURLRequired = errors.New("url is required")
	// ErrNotVideoURL is returned for malformed or non-platform URLs.
	ErrNotVideoURL = errors.New("not a youtube video url")
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Hosts serving watch pages with a ?v= parameter or a recognised path form.
var watchHosts = map[string]struct{}{
	"youtube.com":              {},
	"www.youtube.com":          {},
	"m.youtube.com":            {},
	"music.youtube.com":        {},
	"gaming.youtube.com":       {},
	"youtube-nocookie.com":     {},
	"www.youtube-nocookie.com": {},
}

var shortHosts = map[string]struct{}{
	"youtu.be":     {},
	"www.youtu.be": {},
}

var idPathPrefixes = []string{"/embed/", "/v/", "/shorts/", "/live/", "/e/"}

// VideoID extracts the platform video id from a watch, short or embed URL.
func VideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrURLRequired
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrNotVideoURL
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return "", ErrNotVideoURL
	}

	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case hasHost(shortHosts, host):
		id = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	case hasHost(watchHosts, host):
		id = u.Query().Get("v")
		if id == "" {
			for _, prefix := range idPathPrefixes {
				if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
					id = strings.SplitN(rest, "/", 2)[0]
					break
				}
			}
		}
	default:
		return "", ErrNotVideoURL
	}

	// Ids are sometimes pasted with trailing junk ("abcdefghijk&feature=share").
	if len(id) > 11 {
		id = id[:11]
	}
	if !videoIDPattern.MatchString(id) {
		return "", ErrNotVideoURL
	}
	return id, nil
}

// VideoURL reports why raw is not an acceptable video URL, or nil.
func VideoURL(raw string) error {
	_, err := VideoID(raw)
	return err
}

// IsVideoURL reports whether raw is an acceptable video URL.
func IsVideoURL(raw string) bool {
	return VideoURL(raw) == nil
}

func hasHost(set map[string]struct{}, host string) bool {
	_, ok := set[host]
	return ok
}

// SanitizeURL removes user info and query parameters for safe logging.
func SanitizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	parsedURL.RawQuery = ""
	return parsedURL.String()
}
