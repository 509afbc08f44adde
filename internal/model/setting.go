package model

import "time"

// Known platform setting keys.
const (
	SettingCopyrightText = "copyright_text"
	SettingVersion       = "version"
	SettingTwitter       = "social_twitter"
	SettingFacebook      = "social_facebook"
	SettingLinkedIn      = "social_linkedin"
	SettingInstagram     = "social_instagram"
)

// SettingKeys lists every key the settings endpoint accepts.
var SettingKeys = []string{
	SettingCopyrightText,
	SettingVersion,
	SettingTwitter,
	SettingFacebook,
	SettingLinkedIn,
	SettingInstagram,
}

// AppSetting is one stored platform setting.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlatformSettings is the public, structured view of the settings table.
type PlatformSettings struct {
	CopyrightText string            `json:"copyright_text"`
	Version       string            `json:"version"`
	SocialLinks   map[string]string `json:"social_links"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1,dive,keys,oneof=copyright_text version social_twitter social_facebook social_linkedin social_instagram,endkeys,max=1024"`
}
