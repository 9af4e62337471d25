package config

import (
	"errors"
)

// ErrLoadConfig wraps failures reading a source: a missing or malformed
// dotenv file, an unreadable or invalid YAML file named by
// CAREERTRENDS_CONFIG, or env values that do not decode into Config.
// ErrInvalidConfig marks values that decoded but fail Validate, such as
// an unknown store_driver or a driver missing its connection settings.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
