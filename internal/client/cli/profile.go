package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrijs2005/projectshelf/internal/client/models"
	"github.com/dmitrijs2005/projectshelf/internal/client/session"
	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/dmitrijs2005/projectshelf/internal/filex"
	"github.com/dmitrijs2005/projectshelf/internal/netx"
)

// MaxAvatarBytes bounds avatar uploads.
const MaxAvatarBytes = 5 << 20

var (
	ErrUnknownField = errors.New("unknown profile field")
	ErrNotAnImage   = errors.New("file is not an image")
)

var uploadFn = netx.UploadToPresignedURL

// current returns the identity a guarded command runs for. It may have gone
// away since the gate decided, when the web preview signed out meanwhile.
func (a *App) current() (*models.Identity, error) {
	id := a.store.State().Identity
	if id == nil {
		return nil, session.ErrNotAuthenticated
	}
	return id, nil
}

// WhoAmI prints the current identity.
func (a *App) WhoAmI(ctx context.Context) error {
	id := a.store.State().Identity
	if id == nil {
		printlnFn("Not signed in")
		return nil
	}
	verified := "unverified"
	if id.EmailVerified {
		verified = "verified"
	}
	printlnFn(fmt.Sprintf("%s <%s> (%s)", id.Username, id.Email, verified))
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context) error {
		id, err := a.current()
		if err != nil {
			return err
		}
		printlnFn("Welcome back,", id.Name())
		if id.Title != "" {
			printlnFn(id.Title)
		}
		if !id.EmailVerified {
			printlnFn("Please verify your email address.")
		}
		printlnFn(fmt.Sprintf("Profile %d%% complete.", id.Completeness()))
		if id.Completeness() < 100 {
			printlnFn("Run 'onboarding' to finish setting up.")
		}
		return nil
	})
}

// Onboarding walks through the profile fields. Empty answers keep the
// current value.
func (a *App) Onboarding(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context) error {
		var patch models.ProfilePatch

		ask := func(label string) (*string, error) {
			v, err := getSimpleText(a.reader, label, a.out)
			if err != nil || v == "" {
				return nil, err
			}
			return &v, nil
		}

		var err error
		if patch.DisplayName, err = ask("Display name"); err != nil {
			return err
		}
		if patch.Title, err = ask("Professional title"); err != nil {
			return err
		}
		bio, err := GetMultiline(a.reader, "Short bio", a.out)
		if err != nil {
			return err
		}
		if bio != "" {
			patch.Bio = &bio
		}
		for _, platform := range common.SocialPlatforms {
			url, err := ask(platform + " URL")
			if err != nil {
				return err
			}
			if url != nil {
				if patch.SocialLinks == nil {
					patch.SocialLinks = map[string]string{}
				}
				patch.SocialLinks[platform] = *url
			}
		}

		if patch.IsEmpty() {
			printlnFn("Nothing to update")
			return nil
		}
		if err := a.store.UpdateProfile(ctx, patch); err != nil {
			return err
		}
		printlnFn("Profile saved")
		return nil
	})
}

// Profile prints the profile, or sets one field: profile <field> [value...].
// An empty value clears the field.
func (a *App) Profile(ctx context.Context, args []string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		if len(args) == 0 {
			id, err := a.current()
			if err != nil {
				return err
			}
			printProfile(id)
			return nil
		}

		patch, err := patchFor(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if err := a.store.UpdateProfile(ctx, patch); err != nil {
			return err
		}
		printlnFn("Profile saved")
		return nil
	})
}

func patchFor(field, value string) (models.ProfilePatch, error) {
	var p models.ProfilePatch
	switch strings.ToLower(field) {
	case "name", "displayname", "display_name":
		p.DisplayName = &value
	case "title":
		p.Title = &value
	case "bio":
		p.Bio = &value
	default:
		platform := strings.ToLower(field)
		if !slices.Contains(common.SocialPlatforms, platform) {
			return p, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		p.SocialLinks = map[string]string{platform: value}
	}
	return p, nil
}

func printProfile(id *models.Identity) {
	printlnFn("Username:    ", id.Username)
	printlnFn("Email:       ", id.Email)
	printlnFn("Display name:", id.DisplayName)
	printlnFn("Title:       ", id.Title)
	printlnFn("Bio:         ", id.Bio)
	printlnFn("Avatar:      ", id.Avatar)
	for _, p := range common.SocialPlatforms {
		if url, ok := id.SocialLinks[p]; ok {
			printlnFn(fmt.Sprintf("%-13s %s", p+":", url))
		}
	}
}

// Avatar uploads an image file and makes it the profile avatar.
func (a *App) Avatar(ctx context.Context, args []string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		if len(args) != 1 {
			printlnFn("Usage: avatar <file>")
			return nil
		}

		data, err := filex.ReadLimited(args[0], MaxAvatarBytes)
		if err != nil {
			return err
		}
		contentType := http.DetectContentType(data)
		if !strings.HasPrefix(contentType, "image/") {
			return fmt.Errorf("%w: %s", ErrNotAnImage, contentType)
		}

		key, url, err := a.api.AvatarUploadURL(ctx, contentType)
		if err != nil {
			return err
		}
		if err := uploadFn(ctx, url, contentType, data); err != nil {
			return err
		}

		if err := a.store.UpdateProfile(ctx, models.ProfilePatch{Avatar: &key}); err != nil {
			return err
		}
		printlnFn("Avatar updated")
		return nil
	})
}

// Serve starts the web preview in the background.
func (a *App) Serve(ctx context.Context) error {
	addr, err := a.web.Start(ctx, a.config.WebAddr)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Web preview at http://%s", addr))
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	printlnFn("Server is reachable")
	return nil
}
