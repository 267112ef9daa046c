package platform

import (
	"regexp"
	"strings"
)

const (
	minSubdomainLen = 3
	maxSubdomainLen = 63
	shortSuffix     = "-org"
)

var (
	nonAlnumRun    = regexp.MustCompile(`[^a-z0-9]+`)
	subdomainLabel = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,61}[a-z0-9])?$`)
)

// GenerateSubdomain converts an organization name into a DNS label.
//
//	"Acme, Inc!!" -> "acme-inc"
//	"A"           -> "a-org"
//
// Runs of characters outside [a-z0-9] collapse to a single hyphen, names
// shorter than three characters get an "-org" suffix and names longer than
// 63 are cut and re-trimmed.
func GenerateSubdomain(orgName string) string {
	slug := strings.ToLower(orgName)
	slug = nonAlnumRun.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) < minSubdomainLen {
		slug = strings.TrimPrefix(slug+shortSuffix, "-")
	}
	if len(slug) > maxSubdomainLen {
		slug = strings.TrimRight(slug[:maxSubdomainLen], "-")
	}

	return slug
}

// IsValidSubdomain reports whether s is a label GenerateSubdomain could have produced.
func IsValidSubdomain(s string) bool {
	return len(s) >= minSubdomainLen && subdomainLabel.MatchString(s) && !strings.Contains(s, "--")
}

// SiteName is the bench site identifier for a subdomain. Production sites live
// under the parent domain, everything else under .localhost.
func SiteName(subdomain, parentDomain string, production bool) string {
	if production {
		return subdomain + "." + parentDomain
	}
	return subdomain + ".localhost"
}

// SiteURL is the public URL recorded in the tenant directory.
func SiteURL(siteName string, production bool) string {
	if production {
		return "https://" + siteName
	}
	return "http://" + siteName
}
