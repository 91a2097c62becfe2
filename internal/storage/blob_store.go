package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoSave ни одного сохранения ещё нет
var ErrNoSave = errors.New("сохранений нет")

// KeyPrefix префикс ключей сохранений
const KeyPrefix = "save:"

// BlobStore определяет интерфейс хранилища сохранений.
// Ключи упорядочены лексикографически; последнее сохранение имеет наибольший ключ.
type BlobStore interface {
	// Put записывает блоб под ключом (перезаписывает существующий)
	Put(ctx context.Context, key string, data []byte) error

	// Get читает блоб; ErrNoSave, если ключа нет
	Get(ctx context.Context, key string) ([]byte, error)

	// Latest возвращает ключ и блоб с наибольшим ключом; ErrNoSave, если пусто
	Latest(ctx context.Context) (string, []byte, error)

	Close() error
}

// SaveKey ключ сохранения для момента t: "save:" + 20 цифр unix-наносекунд
func SaveKey(t time.Time) string {
	return fmt.Sprintf("%s%020d", KeyPrefix, t.UnixNano())
}

// IsSaveKey проверяет формат ключа
func IsSaveKey(key string) bool {
	rest := strings.TrimPrefix(key, KeyPrefix)
	if len(rest) != 20 || rest == key {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Config параметры выбора и подключения хранилища
type Config struct {
	Backend string // badger | redis | mysql | memory

	Path string // каталог BadgerDB

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	MySQLDSN string
}

// Open создаёт хранилище по конфигурации
func Open(ctx context.Context, cfg Config) (BlobStore, error) {
	switch cfg.Backend {
	case "badger", "":
		return NewBadgerStore(cfg.Path)
	case "redis":
		return NewRedisStore(ctx, &RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisPrefix,
		})
	case "mysql":
		return NewMySQLStore(ctx, cfg.MySQLDSN)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("неизвестное хранилище %q", cfg.Backend)
}
