package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the dotenv files that exist, most specific first:
// .env.<APP_ENV>.local, .env.local, .env.
// godotenv.Load never overwrites a variable that is already set, so the
// process environment wins over every file and earlier files win over later ones.
// Returns the files actually loaded.
func LoadDotEnv() []string {
	var candidates []string
	if env := os.Getenv("APP_ENV"); env != "" {
		candidates = append(candidates, ".env."+env+".local")
	}
	candidates = append(candidates, ".env.local", ".env")

	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
