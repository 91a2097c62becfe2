package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string // Адрес Redis сервера
	Password  string // Пароль (пустой если не требуется)
	DB        int    // Номер базы данных
	KeyPrefix string // Префикс для ключей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		DB:        0,
		KeyPrefix: "voxel:",
	}
}

// RedisStore хранит блобы строками, а ключи в ZSET с одинаковым счётом,
// чтобы последний ключ находился лексикографическим запросом.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore подключается к Redis
func NewRedisStore(ctx context.Context, config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.Addr == "" {
		config.Addr = DefaultRedisConfig().Addr
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRedisConfig().KeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	// Проверяем подключение
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", config.Addr, err)
	}

	return &RedisStore{client: client, keyPrefix: config.KeyPrefix}, nil
}

func (s *RedisStore) indexKey() string {
	return s.keyPrefix + "index"
}

// Put записывает блоб и ключ индекса одной транзакцией
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keyPrefix+key, data, 0)
		pipe.ZAdd(ctx, s.indexKey(), &redis.Z{Score: 0, Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения %s в Redis: %w", key, err)
	}
	return nil
}

// Get читает блоб
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s из Redis: %w", key, err)
	}
	return data, nil
}

// Latest берёт наибольший ключ из индекса
func (s *RedisStore) Latest(ctx context.Context) (string, []byte, error) {
	keys, err := s.client.ZRevRangeByLex(ctx, s.indexKey(), &redis.ZRangeBy{
		Min:    "-",
		Max:    "+",
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		return "", nil, fmt.Errorf("ошибка чтения индекса Redis: %w", err)
	}
	if len(keys) == 0 {
		return "", nil, ErrNoSave
	}

	data, err := s.Get(ctx, keys[0])
	if err != nil {
		return "", nil, err
	}
	return keys[0], data, nil
}

// Close закрывает клиент
func (s *RedisStore) Close() error {
	return s.client.Close()
}
