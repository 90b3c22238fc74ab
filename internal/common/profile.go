package common

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Profile field limits, in characters. Client and server check the same values.
const (
	MaxDisplayNameLength = 80
	MaxTitleLength       = 120
	MaxBioLength         = 2000
	MaxURLLength         = 512
)

// RegisterProfileRules adds the profile validation aliases to v:
//
//	profile_display_name, profile_title, profile_bio  length limits
//	profile_url                                       absolute URL, MaxURLLength
//	profile_avatar                                    object key, MaxURLLength
//	social_platform                                   one of SocialPlatforms
func RegisterProfileRules(v *validator.Validate) {
	v.RegisterAlias("profile_display_name", fmt.Sprintf("max=%d", MaxDisplayNameLength))
	v.RegisterAlias("profile_title", fmt.Sprintf("max=%d", MaxTitleLength))
	v.RegisterAlias("profile_bio", fmt.Sprintf("max=%d", MaxBioLength))
	v.RegisterAlias("profile_url", fmt.Sprintf("url,max=%d", MaxURLLength))
	v.RegisterAlias("profile_avatar", fmt.Sprintf("max=%d", MaxURLLength))
	v.RegisterAlias("social_platform", "oneof="+strings.Join(SocialPlatforms, " "))
}
