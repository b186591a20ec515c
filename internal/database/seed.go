package database

import (
	"log/slog"

	"github.com/ouvidoriachain/denuncia-backend/internal/config"
	"github.com/ouvidoriachain/denuncia-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedUsers creates the configured admin and police accounts when the users
// table is empty. Accounts without both email and password configured are
// skipped.
func SeedUsers(cfg *config.Config) error {
	var count int64
	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []struct {
		email    string
		password string
		role     string
	}{
		{cfg.SeedAdminEmail, cfg.SeedAdminPassword, models.RoleAdmin},
		{cfg.SeedPoliceEmail, cfg.SeedPolicePassword, models.RolePolice},
	}

	for _, s := range seeds {
		if s.email == "" || s.password == "" {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := models.User{
			ID:       uuid.New(),
			Email:    s.email,
			Password: string(hash),
			Role:     s.role,
			IsActive: true,
		}
		if err := DB.Create(&user).Error; err != nil {
			return err
		}
		slog.Info("seeded account", "role", s.role)
	}
	return nil
}
