// Package config provides the configuration of the increvise tools.
//
// Configuration is resolved in layers, each overriding the one before:
//
//  1. Built-in defaults (Default)
//  2. A config file, TOML or YAML by extension
//  3. A .env file, loaded into the environment without overriding it
//  4. Environment variables prefixed with INCREVISE_
//
// # Basic Usage
//
//	cfg, err := config.Load(
//	    config.WithFile("increvise.toml"),
//	    config.WithDotEnv(".env"),
//	)
//	if err != nil {
//	    return err
//	}
//	db := cfg.Database.ResolvedURL(cfg.Library.Root)
//
// # Environment Variables
//
// Every setting has an environment name built from its section and key:
//
//	INCREVISE_LIBRARY_ROOT=/home/me/notes
//	INCREVISE_LOGGING_LEVEL=debug
//	INCREVISE_PROJECTION_LENIENT_GEOMETRY=true
//	INCREVISE_WATCH_DEBOUNCE=250ms
package config
