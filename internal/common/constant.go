// Package common contains shared constants and sentinel errors used across
// ProjectShelf components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// SocialPlatforms lists the platforms a profile may link to, in display order.
var SocialPlatforms = []string{
	"twitter",
	"instagram",
	"linkedin",
	"github",
	"dribbble",
	"behance",
	"website",
}
