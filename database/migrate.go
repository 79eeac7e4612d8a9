package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"smartbudget/config"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate 执行内嵌的 SQL 迁移（users, budgets, expenses, savings_goals）
// 使用独立连接，migrate 关闭时会一并关闭该连接
func Migrate(cfg *config.DatabaseConfig) error {
	migrateDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return fmt.Errorf("打开迁移连接失败: %w", err)
	}
	return runMigrations(migrateDB)
}

func runMigrations(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		db.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("创建 mysql 迁移驱动失败: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("读取迁移文件失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("创建迁移实例失败: %w", err)
	}
	return m, nil
}
