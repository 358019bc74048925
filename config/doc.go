// Package config loads the streamcast service configuration.
//
// Values come from a YAML file, an optional .env file and the process
// environment, in increasing order of precedence. Environment variables map
// onto nested keys by splitting on underscores, so BROADCAST_CAPACITY sets
// broadcast.capacity.
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("streamcast", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
