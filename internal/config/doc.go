package config

// Package config handles configuration for the fetchq CLI. Values can come
// from a YAML file, environment variables (FETCHQ_ prefix), and command-line
// flags, each layer overriding the previous one.
