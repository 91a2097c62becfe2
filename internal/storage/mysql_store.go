package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore реализует BlobStore для MariaDB/MySQL.
// Использует таблицу voxel_saves.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMySQLStore(ctx context.Context, dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MySQL: %w", err)
	}

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MySQL: %w", err)
	}

	store := &MySQLStore{db: db}
	if err := store.createTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return store, nil
}

func (s *MySQLStore) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS voxel_saves (
			save_key   VARCHAR(64) PRIMARY KEY,
			data       LONGBLOB    NOT NULL,
			created_at TIMESTAMP   DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы voxel_saves: %w", err)
	}
	return nil
}

// Put сохраняет блоб, перезаписывая существующий ключ
func (s *MySQLStore) Put(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO voxel_saves (save_key, data)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data)
	`

	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("ошибка сохранения %s: %w", key, err)
	}
	return nil
}

// Get читает блоб
func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM voxel_saves WHERE save_key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", key, err)
	}
	return data, nil
}

// Latest возвращает запись с наибольшим ключом
func (s *MySQLStore) Latest(ctx context.Context) (string, []byte, error) {
	var (
		key  string
		data []byte
	)
	query := `SELECT save_key, data FROM voxel_saves ORDER BY save_key DESC LIMIT 1`
	err := s.db.QueryRowContext(ctx, query).Scan(&key, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoSave
	}
	if err != nil {
		return "", nil, fmt.Errorf("ошибка чтения последнего сохранения: %w", err)
	}
	return key, data, nil
}

// Close закрывает соединение с базой данных
func (s *MySQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
