// Package models defines server-side records persisted in PostgreSQL.
package models

import (
	"maps"
	"time"
)

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID            string
	Email         string
	Username      string
	DisplayName   string
	Title         string
	Bio           string
	Avatar        string
	SocialLinks   map[string]string
	EmailVerified bool
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfilePatch lists the profile fields to change; nil leaves a field as is.
// The validate aliases come from common.RegisterProfileRules.
// SocialLinks merge per platform and an empty URL removes the platform.
type ProfilePatch struct {
	DisplayName *string           `json:"display_name" validate:"omitempty,profile_display_name"`
	Title       *string           `json:"title" validate:"omitempty,profile_title"`
	Bio         *string           `json:"bio" validate:"omitempty,profile_bio"`
	Avatar      *string           `json:"avatar" validate:"omitempty,profile_avatar"`
	SocialLinks map[string]string `json:"social_links" validate:"omitempty,dive,keys,social_platform,endkeys,omitempty,profile_url"`
}

// Apply merges p into u and stamps UpdatedAt with now.
func (u *User) Apply(p ProfilePatch, now time.Time) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if len(p.SocialLinks) > 0 {
		links := maps.Clone(u.SocialLinks)
		if links == nil {
			links = make(map[string]string, len(p.SocialLinks))
		}
		for platform, url := range p.SocialLinks {
			if url == "" {
				delete(links, platform)
				continue
			}
			links[platform] = url
		}
		u.SocialLinks = links
	}
	u.UpdatedAt = now
}
