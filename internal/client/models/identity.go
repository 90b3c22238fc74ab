// Package models defines client-side data models used by the ProjectShelf CLI.
package models

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/go-playground/validator/v10"
)

// SocialLinks maps a platform name (see common.SocialPlatforms) to a profile URL.
type SocialLinks map[string]string

// Identity is the signed-in user's profile as the client knows it. It is the
// value persisted in the durable slot and published to gate observers.
type Identity struct {
	ID            string      `json:"id" validate:"required"`
	Email         string      `json:"email" validate:"required,email"`
	Username      string      `json:"username" validate:"required"`
	DisplayName   string      `json:"displayName" validate:"profile_display_name"`
	Title         string      `json:"title,omitempty" validate:"profile_title"`
	Bio           string      `json:"bio,omitempty" validate:"profile_bio"`
	Avatar        string      `json:"avatar,omitempty" validate:"profile_avatar"`
	SocialLinks   SocialLinks `json:"socialLinks,omitempty" validate:"omitempty,dive,keys,social_platform,endkeys,profile_url"`
	EmailVerified bool        `json:"emailVerified"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// ProfilePatch carries the fields a profile update may change. Nil pointers
// leave the field alone. SocialLinks entries are merged per platform and an
// empty URL removes the platform.
type ProfilePatch struct {
	DisplayName *string           `validate:"omitempty,profile_display_name"`
	Title       *string           `validate:"omitempty,profile_title"`
	Bio         *string           `validate:"omitempty,profile_bio"`
	Avatar      *string           `validate:"omitempty,profile_avatar"`
	SocialLinks map[string]string `validate:"omitempty,dive,keys,social_platform,endkeys,omitempty,profile_url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	common.RegisterProfileRules(v)
	return v
}

// ErrInvalidIdentity reports an identity missing its id, email or username.
var ErrInvalidIdentity = errors.New("identity is missing required fields")

// Present reports whether the identity satisfies the minimum shape every
// current identity must have.
func (i *Identity) Present() bool {
	return i != nil && i.ID != "" && i.Email != "" && i.Username != ""
}

// Clone returns a deep copy.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.SocialLinks = maps.Clone(i.SocialLinks)
	return &c
}

// Apply returns a copy of i with the patch merged in and UpdatedAt set to now.
func (i *Identity) Apply(p ProfilePatch, now time.Time) *Identity {
	out := i.Clone()
	if p.DisplayName != nil {
		out.DisplayName = *p.DisplayName
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Bio != nil {
		out.Bio = *p.Bio
	}
	if p.Avatar != nil {
		out.Avatar = *p.Avatar
	}
	if len(p.SocialLinks) > 0 {
		if out.SocialLinks == nil {
			out.SocialLinks = SocialLinks{}
		}
		for platform, url := range p.SocialLinks {
			if url == "" {
				delete(out.SocialLinks, platform)
				continue
			}
			out.SocialLinks[platform] = url
		}
		if len(out.SocialLinks) == 0 {
			out.SocialLinks = nil
		}
	}
	out.UpdatedAt = now
	return out
}

// Validate checks field formats. The returned error lists every offending
// field as "field: rule".
func (i *Identity) Validate() error {
	if !i.Present() {
		return ErrInvalidIdentity
	}
	return describe(validate.Struct(i))
}

// Validate checks only the fields the patch sets. An empty social link URL
// is allowed since it removes the platform.
func (p ProfilePatch) Validate() error {
	return describe(validate.Struct(p))
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.ActualTag()))
	}
	return errors.New(strings.Join(parts, ", "))
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Title == nil && p.Bio == nil && p.Avatar == nil && len(p.SocialLinks) == 0
}

// Name is the display name, falling back to the username.
func (i *Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Username
}

// Completeness is the share of optional profile fields filled in, 0 to 100.
func (i *Identity) Completeness() int {
	filled := 0
	for _, ok := range []bool{i.DisplayName != "", i.Title != "", i.Bio != "", i.Avatar != "", len(i.SocialLinks) > 0} {
		if ok {
			filled++
		}
	}
	return filled * 20
}
