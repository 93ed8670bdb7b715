package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"case insensitive", []string{"A", "a"}, []string{"a"}},
		{"trim", []string{"A", " a "}, []string{"a"}},
		{"keeps first occurrence", []string{"Go", "db", "GO", " DB"}, []string{"go", "db"}},
		{"already normal", []string{"x", "y"}, []string{"x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeTags(got), "normalize must be idempotent")
		})
	}
}

func TestValidatorDocumentInput(t *testing.T) {
	v := NewValidator()
	desc := "ok"

	valid := DocumentInput{
		Type:  DocumentTypeLink,
		Link:  "https://x.com",
		Title: "Example",
		Tags:  []string{"a", "go-lang", "db_1"},
	}
	assert.NoError(t, v.Struct(&valid))

	ftp := valid
	ftp.Link = "ftp://files.example.com/a.txt"
	assert.NoError(t, v.Struct(&ftp))

	bad := DocumentInput{
		Type:        "Podcast",
		Link:        "mailto:someone@example.com",
		Title:       "ab",
		Description: &desc,
		Tags:        []string{"ok", "not ok"},
	}
	err := v.Struct(&bad)
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "type")
	assert.Contains(t, verr.Fields, "link")
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "description")
	assert.Contains(t, verr.Fields, "tags[1]")
	assert.NotContains(t, verr.Fields, "tags[0]")
}

func TestValidatorPatches(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(&DocumentPatch{}))
	assert.NoError(t, v.Struct(&ProfilePatch{}))

	short := "ab"
	err := v.Struct(&DocumentPatch{Title: &short})
	require.Error(t, err)
	assert.Contains(t, err.(*ValidationError).Fields, "title")

	notURL := "not a url"
	err = v.Struct(&ProfilePatch{SocialLinks: &SocialLinks{X: &notURL, Whatsapp: &notURL}})
	require.Error(t, err)
	fields := err.(*ValidationError).Fields
	assert.Contains(t, fields, "socialLinks.XLink")
	assert.NotContains(t, fields, "socialLinks.Whatsapp")

	err = v.Struct(&Visibility{})
	require.Error(t, err)
	assert.Contains(t, err.(*ValidationError).Fields, "publicProfile")

	off := false
	assert.NoError(t, v.Struct(&Visibility{PublicProfile: &off}))
}

func TestValidatorCredentials(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(&Credentials{Username: "alice1", Password: "password1"}))

	err := v.Struct(&Credentials{Username: "al", Password: "short"})
	require.Error(t, err)
	fields := err.(*ValidationError).Fields
	assert.Equal(t, "should be at least 5 chars", fields["username"])
	assert.Equal(t, "should be at least 8 chars", fields["password"])

	// 40 runes but 80 bytes
	err = v.Struct(&Credentials{Username: "carol1", Password: strings.Repeat("é", 40)})
	require.Error(t, err)
	assert.Equal(t, "should be at most 72 bytes", err.(*ValidationError).Fields["password"])

	assert.NoError(t, v.Struct(&Credentials{Username: "carol1", Password: strings.Repeat("é", 36)}))
}

func TestPublicViewsHideOwner(t *testing.T) {
	id := "share-id"
	doc := Document{ID: "d1", OwnerID: "u1", Title: "t", Sharable: true, SharableID: &id, CreatedAt: time.Now()}
	pub := doc.Public()
	assert.Equal(t, doc.ID, pub.ID)
	assert.Equal(t, doc.SharableID, pub.SharableID)

	profile := Profile{ID: "p1", OwnerID: "u1", Username: "alice1", PublicProfile: true}
	pp := profile.Public()
	assert.Equal(t, "alice1", pp.Username)
	assert.True(t, pp.PublicProfile)
}
