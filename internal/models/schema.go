package models

import (
	"fmt"
	"sync"

	"github.com/songyu/bugtrack/internal/utils"
	"github.com/songyu/bugtrack/pkg/logger"
	"gorm.io/gorm"
)

var (
	schemaMu   sync.Mutex
	schemaDone bool
)

// managedTable describes one table under additive migration control.
type managedTable struct {
	name   string
	model  interface{}
	fields []string
}

var managedTables = []managedTable{
	{
		name:  "users",
		model: &User{},
		fields: []string{
			"ID", "Username", "PasswordHash", "Salt", "Role",
			"Email", "RealName", "Status", "LastLogin", "CreatedAt",
		},
	},
	{
		name:  "developers",
		model: &Developer{},
		fields: []string{
			"ID", "Name", "Email", "Role", "Status", "UserID", "CreatedAt",
		},
	},
	{
		name:  "bugs",
		model: &Bug{},
		fields: []string{
			"ID", "Title", "Description", "Version", "Region", "Submitter",
			"AssigneeID", "Status", "Screenshot", "LogFile", "CreatedAt",
			"ResolvedAt",
		},
	},
}

// EnsureSchema brings the schema up to date and seeds default records,
// exactly once per process. Concurrent callers serialize on the mutex;
// later calls are no-ops. Any DDL error is fatal to startup, so it is
// returned without attempting partial recovery.
func EnsureSchema(db *gorm.DB) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if schemaDone {
		return nil
	}

	if err := MigrateSchema(db); err != nil {
		return err
	}
	if err := SeedDefaults(db); err != nil {
		return err
	}

	schemaDone = true
	return nil
}

// MigrateSchema creates missing tables and adds missing columns. Migrations
// are strictly additive: columns are never dropped or renamed. Idempotent.
func MigrateSchema(db *gorm.DB) error {
	m := db.Migrator()

	for _, t := range managedTables {
		if !m.HasTable(t.model) {
			logger.Info().Str("table", t.name).Msg("creating table")
			if err := m.CreateTable(t.model); err != nil {
				return fmt.Errorf("create table %s: %w", t.name, err)
			}
			continue
		}

		for _, field := range t.fields {
			if m.HasColumn(t.model, field) {
				continue
			}
			logger.Info().Str("table", t.name).Str("column", field).Msg("adding missing column")
			if err := m.AddColumn(t.model, field); err != nil {
				return fmt.Errorf("add column %s.%s: %w", t.name, field, err)
			}
		}
	}

	return nil
}

// SeedDefaults inserts the default accounts and developer roster when the
// corresponding tables are empty (i.e. on first run).
func SeedDefaults(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		defaults := []struct {
			username, password, role, email, realName string
		}{
			{"admin", "admin123", RoleAdmin, "admin@company.com", "System Administrator"},
			{"pm", "pm123", RolePM, "pm@company.com", "Project Manager"},
			{"tester", "test123", RoleTester, "tester@company.com", "QA Tester"},
		}
		for _, d := range defaults {
			salt, err := utils.GenerateSalt()
			if err != nil {
				return err
			}
			email := d.email
			user := User{
				Username:     d.username,
				PasswordHash: utils.HashPassword(d.password, salt),
				Salt:         salt,
				Role:         d.role,
				Email:        &email,
				RealName:     d.realName,
				Status:       UserStatusActive,
			}
			if err := db.Create(&user).Error; err != nil {
				return err
			}
		}
		logger.Info().Int("count", len(defaults)).Msg("seeded default user accounts")
	}

	var devCount int64
	if err := db.Model(&Developer{}).Count(&devCount).Error; err != nil {
		return err
	}
	if devCount == 0 {
		roster := []struct {
			name, email, role string
		}{
			{"Zhang San", "zhangsan@company.com", "senior engineer"},
			{"Li Si", "lisi@company.com", "engineer"},
			{"Wang Wu", "wangwu@company.com", "test engineer"},
			{"Zhao Liu", "zhaoliu@company.com", "architect"},
		}
		for _, d := range roster {
			email := d.email
			dev := Developer{
				Name:   d.name,
				Email:  &email,
				Role:   d.role,
				Status: DeveloperStatusActive,
			}
			if err := db.Create(&dev).Error; err != nil {
				return err
			}
		}
		logger.Info().Int("count", len(roster)).Msg("seeded default developer roster")
	}

	return nil
}
