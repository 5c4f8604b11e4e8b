package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"log"
)

type Config struct {
	Redis Redis
	Queue Queue
}

type Redis struct {
	Addr     string `env:"Redis_Address" envDefault:"localhost:6379"`
	Password string `env:"Redis_Password"`
	DB       int    `env:"Redis_DB"`
	StateKey string `env:"Redis_StateKey" envDefault:"dispatchq:state"`
	WakeKey  string `env:"Redis_WakeKey" envDefault:"dispatchq:wake"`
}

type Queue struct {
	// Ceiling caps simultaneously in-flight tasks; zero disables the gate.
	Ceiling int `env:"Queue_Ceiling" envDefault:"3"`
	// RateLimit caps task starts per trailing window; zero disables the gate.
	RateLimit  int           `env:"Queue_RateLimit"`
	RateWindow time.Duration `env:"Queue_RateWindow" envDefault:"60s"`
	// StartsRetention keeps the start log longer than the rate window so
	// recent history stays inspectable.
	StartsRetention time.Duration `env:"Queue_StartsRetention" envDefault:"10m"`
	CompletedTail   int           `env:"Queue_CompletedTail" envDefault:"20"`
}

func Load() *Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal(err)
	}

	return &c
}
