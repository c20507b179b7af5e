package core

import (
	"net/url"
	"regexp"
	"strings"
)

// wwwPrefix matches "www." and numbered variants such as "www2.".
var wwwPrefix = regexp.MustCompile(`^www\d*\.`)

// ExtractDomain reduces a website URL to its bare domain: lowercased host,
// leading www prefix removed, port dropped.
//
//	https://www.Example.com:8443/path -> example.com
//
// Absent input, unparsable URLs and URLs without a host yield an absent value.
func ExtractDomain(raw NullString) NullString {
	if !raw.Valid {
		return NullString{}
	}

	u, err := url.Parse(strings.TrimSpace(raw.String))
	if err != nil {
		return NullString{}
	}

	host := strings.ToLower(u.Hostname())
	host = wwwPrefix.ReplaceAllString(host, "")

	return ToNullString(host)
}
