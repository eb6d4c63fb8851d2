// internal/pkg/imageurl/imageurl.go
package imageurl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	driveFilePath = regexp.MustCompile(`^/file/d/([A-Za-z0-9_-]+)`)
	imgurID       = regexp.MustCompile(`^/([A-Za-z0-9]{5,10})$`)
)

// Normalize rewrites share links from a few third-party hosts into URLs
// that can be used directly as an <img> source. Unknown hosts pass through.
func Normalize(raw, placeholder string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return placeholder
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "drive.google.com":
		return googleDrive(u, raw)
	case "dropbox.com":
		return dropbox(u)
	case "imgur.com", "m.imgur.com":
		return imgur(u, raw)
	case "github.com":
		return github(u, raw)
	default:
		return raw
	}
}

// googleDrive turns /file/d/<id>/view and /open?id=<id> into a thumbnail URL
func googleDrive(u *url.URL, raw string) string {
	id := ""
	if m := driveFilePath.FindStringSubmatch(u.Path); m != nil {
		id = m[1]
	} else if u.Path == "/open" || u.Path == "/uc" {
		id = u.Query().Get("id")
	}
	if id == "" {
		return raw
	}
	return "https://drive.google.com/thumbnail?id=" + url.QueryEscape(id) + "&sz=w1000"
}

// dropbox swaps the preview flag for the raw file flag
func dropbox(u *url.URL) string {
	q := u.Query()
	q.Del("dl")
	q.Set("raw", "1")
	out := *u
	out.RawQuery = q.Encode()
	return out.String()
}

// imgur maps a single-image page to its direct i.imgur.com file
func imgur(u *url.URL, raw string) string {
	m := imgurID.FindStringSubmatch(u.Path)
	if m == nil {
		return raw
	}
	return "https://i.imgur.com/" + m[1] + ".jpg"
}

// github maps /<owner>/<repo>/blob/<ref>/<path> to raw.githubusercontent.com
func github(u *url.URL, raw string) string {
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 5)
	if len(parts) < 5 || parts[2] != "blob" {
		return raw
	}
	return "https://raw.githubusercontent.com/" + path.Join(parts[0], parts[1], parts[3], parts[4])
}

// NormalizeAll rewrites every URL in list
func NormalizeAll(list []string, placeholder string) []string {
	out := make([]string, 0, len(list))
	for _, raw := range list {
		if n := Normalize(raw, ""); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 && placeholder != "" {
		out = append(out, placeholder)
	}
	return out
}
