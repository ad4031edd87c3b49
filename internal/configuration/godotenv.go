package configuration

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// GodotenvProvider is an implementation wrapping the Godotenv framework.
type GodotenvProvider struct{}

// Read reads generic Unix-type configuration files into a map (map[key]value).
func (*GodotenvProvider) Read(filenames ...string) (map[string]string, error) {
	data, err := godotenv.Read(filenames...)
	if err != nil {
		return data, fmt.Errorf("(config-godotenv) %w", err)
	}

	return data, nil
}

// LookupEnv wraps around [os.LookupEnv].
func (*GodotenvProvider) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
