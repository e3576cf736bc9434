package repository

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/blues/launchpad/internal/model"
)

func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20261001_create_project_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.ProjectModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("project")
			},
		},
		{
			ID: "20261001_create_contribution_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.ContributionModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("contribution")
			},
		},
		{
			ID: "20261001_create_account_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.AccountModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("account")
			},
		},
		{
			ID: "20261008_create_event_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.EventModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("event")
			},
		},
	}
}
