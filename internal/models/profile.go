package models

import "time"

type (
	SocialLinks struct {
		X         *string `json:"XLink,omitempty" validate:"omitempty,url"`
		Instagram *string `json:"InstagramLink,omitempty" validate:"omitempty,url"`
		Whatsapp  *string `json:"Whatsapp,omitempty"`
		Medium    *string `json:"MediumLink,omitempty" validate:"omitempty,url"`
	}

	// Profile is the one-per-user public face. Username mirrors User.Username
	// and is always written by the server.
	Profile struct {
		ID            string      `json:"_id"`
		OwnerID       string      `json:"userId"`
		Username      string      `json:"username"`
		Profession    *string     `json:"profession,omitempty"`
		Avatar        *string     `json:"avatar,omitempty"`
		SocialLinks   SocialLinks `json:"socialLinks"`
		Bio           *string     `json:"bio,omitempty"`
		PublicProfile bool        `json:"publicProfile"`
		CreatedAt     time.Time   `json:"createdAt"`
		UpdatedAt     time.Time   `json:"updatedAt"`
	}

	// ProfilePatch is a partial profile. Username is accepted on the wire and
	// discarded; the store writes the authoritative one.
	ProfilePatch struct {
		Username      *string      `json:"username" validate:"omitempty,min=5,max=30"`
		Profession    *string      `json:"profession"`
		Avatar        *string      `json:"avatar"`
		SocialLinks   *SocialLinks `json:"socialLinks"`
		Bio           *string      `json:"bio" validate:"omitempty,min=3,max=300"`
		PublicProfile *bool        `json:"publicProfile"`
	}

	Visibility struct {
		PublicProfile *bool `json:"publicProfile" validate:"required"`
	}

	PublicProfile struct {
		ID            string      `json:"_id"`
		Username      string      `json:"username"`
		Profession    *string     `json:"profession,omitempty"`
		Avatar        *string     `json:"avatar,omitempty"`
		SocialLinks   SocialLinks `json:"socialLinks"`
		Bio           *string     `json:"bio,omitempty"`
		PublicProfile bool        `json:"publicProfile"`
		CreatedAt     time.Time   `json:"createdAt"`
		UpdatedAt     time.Time   `json:"updatedAt"`
	}
)

func (p Profile) Public() PublicProfile {
	return PublicProfile{
		ID:            p.ID,
		Username:      p.Username,
		Profession:    p.Profession,
		Avatar:        p.Avatar,
		SocialLinks:   p.SocialLinks,
		Bio:           p.Bio,
		PublicProfile: p.PublicProfile,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
