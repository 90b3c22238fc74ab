package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/projectshelf/internal/client/client"
	"github.com/dmitrijs2005/projectshelf/internal/client/session"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type upload struct {
	url, contentType string
	body             []byte
}

func stubUpload(t *testing.T, err error) *upload {
	t.Helper()
	got := &upload{}
	orig := uploadFn
	uploadFn = func(_ context.Context, url, contentType string, body []byte) error {
		got.url, got.contentType, got.body = url, contentType, body
		return err
	}
	t.Cleanup(func() { uploadFn = orig })
	return got
}

func TestWhoAmI(t *testing.T) {
	out := captureOutput(t)
	a := signedInApp(t, &fakeAPI{}, "")
	require.NoError(t, a.WhoAmI(context.Background()))
	require.Contains(t, out.String(), "alice <a@x.com> (verified)")
}

func TestDashboard_SignedIn(t *testing.T) {
	out := captureOutput(t)
	a := signedInApp(t, &fakeAPI{}, "")

	require.NoError(t, a.Dashboard(context.Background()))
	require.Contains(t, out.String(), "Welcome back, alice")
	require.Contains(t, out.String(), "Profile 0% complete.")
	require.NotContains(t, out.String(), "verify your email")
}

func TestDashboard_SignedOutGoesToLogin(t *testing.T) {
	out := captureOutput(t)
	stubInputs(t, []string{"a@x.com"}, []string{"pw"})

	a := newTestApp(t, &fakeAPI{}, "")
	a.store.Initialize(context.Background())

	require.NoError(t, a.Dashboard(context.Background()))
	require.Contains(t, out.String(), "Please sign in first.")
	require.NotContains(t, out.String(), "Welcome back")
	require.True(t, a.isLoggedIn())
}

func TestOnboarding(t *testing.T) {
	out := captureOutput(t)
	// display name, title, then one answer per platform; the bio comes from the reader
	stubInputs(t, []string{"Alice", "", "", "", "", "https://github.com/alice", "", "", ""}, nil)

	api := &fakeAPI{}
	a := signedInApp(t, api, "Designs things.\n\n")

	require.NoError(t, a.Onboarding(context.Background()))
	require.NotNil(t, api.lastPatch)
	require.Equal(t, "Alice", *api.lastPatch.DisplayName)
	require.Nil(t, api.lastPatch.Title)
	require.Equal(t, "Designs things.", *api.lastPatch.Bio)
	require.Equal(t, map[string]string{"github": "https://github.com/alice"}, api.lastPatch.SocialLinks)

	id := a.store.State().Identity
	require.Equal(t, "Alice", id.DisplayName)
	require.Equal(t, "https://github.com/alice", id.SocialLinks["github"])
	require.Contains(t, out.String(), "Profile saved")
}

func TestOnboarding_NothingToUpdate(t *testing.T) {
	out := captureOutput(t)
	stubInputs(t, []string{"", "", "", "", "", "", "", "", ""}, nil)

	api := &fakeAPI{}
	a := signedInApp(t, api, "\n")

	require.NoError(t, a.Onboarding(context.Background()))
	require.Nil(t, api.lastPatch)
	require.Contains(t, out.String(), "Nothing to update")
}

func TestProfile_SetTitleKeepsVerification(t *testing.T) {
	captureOutput(t)
	api := &fakeAPI{}
	a := signedInApp(t, api, "")
	before := a.store.State().Identity

	require.NoError(t, a.Profile(context.Background(), []string{"title", "Product", "Designer"}))

	after := a.store.State().Identity
	require.Equal(t, "Product Designer", after.Title)
	require.Equal(t, before.EmailVerified, after.EmailVerified)
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestProfile_Print(t *testing.T) {
	out := captureOutput(t)
	a := signedInApp(t, &fakeAPI{}, "")
	require.NoError(t, a.Profile(context.Background(), nil))
	require.Contains(t, out.String(), "a@x.com")
}

func TestProfile_UnknownField(t *testing.T) {
	captureOutput(t)
	a := signedInApp(t, &fakeAPI{}, "")
	err := a.Profile(context.Background(), []string{"myspace", "x"})
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestProfile_Rejected(t *testing.T) {
	captureOutput(t)
	api := &fakeAPI{updateErr: client.ErrValidation}
	a := signedInApp(t, api, "")

	err := a.Profile(context.Background(), []string{"bio", "hello"})
	require.ErrorIs(t, err, session.ErrValidation)
	require.Empty(t, a.store.State().Identity.Bio)
}

func TestPatchFor(t *testing.T) {
	p, err := patchFor("Name", "Al")
	require.NoError(t, err)
	require.Equal(t, "Al", *p.DisplayName)

	p, err = patchFor("website", "")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"website": ""}, p.SocialLinks)
}

func TestAvatar_Uploads(t *testing.T) {
	out := captureOutput(t)
	got := stubUpload(t, nil)

	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	api := &fakeAPI{uploadKey: "avatars/u1/abc", uploadURL: "https://s3.local/put"}
	a := signedInApp(t, api, "")

	require.NoError(t, a.Avatar(context.Background(), []string{path}))
	require.Equal(t, "image/png", api.lastContentType)
	require.Equal(t, "https://s3.local/put", got.url)
	require.Equal(t, "image/png", got.contentType)
	require.Equal(t, pngHeader, got.body)
	require.Equal(t, "avatars/u1/abc", a.store.State().Identity.Avatar)
	require.Contains(t, out.String(), "Avatar updated")
}

func TestAvatar_RejectsNonImage(t *testing.T) {
	captureOutput(t)
	stubUpload(t, nil)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	api := &fakeAPI{}
	a := signedInApp(t, api, "")

	require.ErrorIs(t, a.Avatar(context.Background(), []string{path}), ErrNotAnImage)
	require.Empty(t, api.lastContentType)
}

func TestAvatar_UploadFailureKeepsProfile(t *testing.T) {
	captureOutput(t)
	stubUpload(t, errors.New("upload failed: 403 Forbidden"))

	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	api := &fakeAPI{uploadKey: "k", uploadURL: "u"}
	a := signedInApp(t, api, "")

	require.ErrorContains(t, a.Avatar(context.Background(), []string{path}), "403")
	require.Nil(t, api.lastPatch)
	require.Empty(t, a.store.State().Identity.Avatar)
}

func TestAvatar_Usage(t *testing.T) {
	out := captureOutput(t)
	a := signedInApp(t, &fakeAPI{}, "")
	require.NoError(t, a.Avatar(context.Background(), nil))
	require.Contains(t, out.String(), "Usage: avatar <file>")
}

func TestServeAndPing(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, &fakeAPI{}, "")

	require.NoError(t, a.Serve(context.Background()))
	require.Contains(t, out.String(), "Web preview at http://127.0.0.1:")
	require.Error(t, a.Serve(context.Background()))

	require.NoError(t, a.Ping(context.Background()))
	require.Contains(t, out.String(), "Server is reachable")

	a.api.(*fakeAPI).pingErr = client.ErrUnavailable
	require.ErrorIs(t, a.Ping(context.Background()), client.ErrUnavailable)
}
