// Package config handles loading and validating the data provider configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (TSPROVIDER_*)
//   - Validation of required fields
//   - Default value handling
//   - Parsing the ordered sources list, including the "interval" and
//     "config" alias keys
//
// Tokens and passwords should be set via environment variables rather than
// committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Backend, len(cfg.Sources))
package config
