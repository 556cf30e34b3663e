// Package config holds tornet's runtime configuration: defaults,
// validation, and the optional YAML configuration file.
//
// Configuration is assembled once at startup (defaults → config file →
// CLI flags, later layers winning) and then passed down by value; no
// package reads configuration globally.
package config
