package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
)

const socialPrefix = "social_"

type SettingService struct {
	settingRepo *repository.SettingRepository
	log         zerolog.Logger
}

func NewSettingService(settingRepo *repository.SettingRepository, log zerolog.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

// GetAllSettings returns the raw key/value table.
func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settingsList, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}

	settingsMap := make(map[string]string, len(settingsList))
	for _, setting := range settingsList {
		settingsMap[setting.Key] = setting.Value
	}
	return settingsMap, nil
}

// GetPublic shapes the settings for the site footer.
func (s *SettingService) GetPublic(ctx context.Context) (*model.PlatformSettings, error) {
	all, err := s.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	return toPlatformSettings(all), nil
}

func toPlatformSettings(all map[string]string) *model.PlatformSettings {
	out := &model.PlatformSettings{
		CopyrightText: all[model.SettingCopyrightText],
		Version:       all[model.SettingVersion],
		SocialLinks:   make(map[string]string),
	}
	for k, v := range all {
		if strings.HasPrefix(k, socialPrefix) && v != "" {
			out.SocialLinks[strings.TrimPrefix(k, socialPrefix)] = v
		}
	}
	return out
}

// UpdateSettings writes every key in one transaction.
func (s *SettingService) UpdateSettings(ctx context.Context, actor Actor, settingsMap map[string]string) error {
	if err := s.settingRepo.UpsertMany(ctx, settingsMap); err != nil {
		s.log.Error().Err(err).Int("keys", len(settingsMap)).Msg("failed to update settings")
		return err
	}
	s.log.Info().Int("keys", len(settingsMap)).Str("by", actor.ID.String()).Msg("Settings updated")
	return nil
}
