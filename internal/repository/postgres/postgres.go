package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tiktask/internal/logger"
	"tiktask/internal/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage держит пул соединений и реализует репозитории задач,
// вложений и пользователей поверх одной схемы
type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

type Options struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

func New(ctx context.Context, connString string, opts Options) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка разбора строки подключения", err)
		return nil, fmt.Errorf("разбор строки подключения: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.IdleTimeout > 0 {
		config.MaxConnIdleTime = opts.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное подключение к PostgreSQL")
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// Migrate применяет зашитые миграции через golang-migrate
func (s *Storage) Migrate() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

// Down откатывает все миграции, используется только в тестах
func (s *Storage) Down() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("откат миграций: %w", err)
	}
	return nil
}

func (s *Storage) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("чтение миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(s.connString))
	if err != nil {
		return nil, fmt.Errorf("инициализация мигратора: %w", err)
	}
	return m, nil
}

// migrateURL переводит DSN на схему pgx5, которую регистрирует
// драйвер golang-migrate
func migrateURL(connString string) string {
	if rest, ok := strings.CutPrefix(connString, "postgresql://"); ok {
		return "pgx5://" + rest
	}
	if rest, ok := strings.CutPrefix(connString, "postgres://"); ok {
		return "pgx5://" + rest
	}
	return connString
}
