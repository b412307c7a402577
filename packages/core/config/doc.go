// Package config loads project-level configuration from restcheck.yaml.
package config
