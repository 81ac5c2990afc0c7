package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

const baseURL = "https://www.gravatar.com/avatar/"

// Options control the size and fallback image of a Gravatar URL
type Options struct {
	Size    int
	Default string
	Rating  string
}

// DefaultOptions matches the 200px identicon used for member profiles
var DefaultOptions = Options{Size: 200, Default: "identicon", Rating: "g"}

// Hash returns the md5 hex digest of the normalized email
func Hash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// URL builds the avatar URL for email
func URL(email string, opts Options) string {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions.Size
	}
	if opts.Default == "" {
		opts.Default = DefaultOptions.Default
	}
	if opts.Rating == "" {
		opts.Rating = DefaultOptions.Rating
	}

	q := "s=" + strconv.Itoa(opts.Size) +
		"&d=" + url.QueryEscape(opts.Default) +
		"&r=" + url.QueryEscape(opts.Rating)
	return baseURL + Hash(email) + "?" + q
}
