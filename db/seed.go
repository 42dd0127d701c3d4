package db

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/xlog"
)

const seedAdminEmail = "admin@company.com"

// Seed creates the admin account and the sample policy documents on first
// start. Running it again is a no-op.
func Seed(conn *gorm.DB, adminPassword string) error {
	var admin models.User
	err := conn.Where("email = ?", seedAdminEmail).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin = models.User{
			Email:          seedAdminEmail,
			Username:       "admin",
			FullName:       "System Administrator",
			HashedPassword: string(hash),
			Role:           models.RoleAdmin,
			Department:     "IT",
			IsActive:       true,
		}
		if err := conn.Create(&admin).Error; err != nil {
			return err
		}
		xlog.Info("Admin user created", "email", seedAdminEmail)
	} else if err != nil {
		return err
	}

	var count int64
	if err := conn.Model(&models.CompanyDocument{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		documents := []models.CompanyDocument{
			{
				Title: "Employee Handbook",
				Content: `Welcome to our company! This handbook outlines our policies and procedures.

Work Hours: Our standard work hours are 9 AM to 5 PM, Monday through Friday.

Clock-In/Out Policy: Employees must clock in within 15 minutes of their scheduled start time.

Task Assignment: Tasks are assigned based on workload and expertise. High-priority tasks should be completed first.

Weekly Reports: All employees must submit weekly reports by Friday 5 PM.`,
				DocumentType: models.DocumentTypePolicy,
				Category:     "hr",
				IsActive:     true,
			},
			{
				Title: "IT Security Policy",
				Content: `IT Security Guidelines:

1. Password must be at least 8 characters
2. Do not share login credentials
3. Report suspicious activities immediately
4. Keep software updated`,
				DocumentType: models.DocumentTypePolicy,
				Category:     "it",
				IsActive:     true,
			},
		}
		if err := conn.Create(&documents).Error; err != nil {
			return err
		}
		xlog.Info("Sample documents created", "count", len(documents))
	}

	return nil
}
