package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	cacheMu    sync.Mutex
	cache      = make(map[reflect.Type]any)
)

// Load populates cfg (a pointer to a struct) from environment variables.
// A .env file in the working directory is loaded once, without overriding
// variables already set. Each configuration type is parsed once and cached.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("config: nil target")
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal case outside development.
		_ = godotenv.Load()
	})

	typ := reflect.TypeFor[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[typ]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}
	cache[typ] = *cfg
	return nil
}

// MustLoad is like Load but panics on failure. Intended for program startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
