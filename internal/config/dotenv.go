package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadEnvFile exports the KEY=VALUE pairs of a dotenv file into the process
// environment. Variables that are already set win over the file. A missing
// file is not an error. It returns the number of variables exported.
func LoadEnvFile(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return 0, &ConfigError{Message: "failed to read env file " + path, Err: err}
	}

	n := 0
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// LoadEnvFiles applies LoadEnvFile to each path in order, so earlier files
// take precedence over later ones.
func LoadEnvFiles(paths ...string) (int, error) {
	total := 0
	for _, p := range paths {
		n, err := LoadEnvFile(p)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
