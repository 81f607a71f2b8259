// Package config handles configuration loading for orbi-auth.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// Secrets (admin credentials, signing secret, mail API key) are normally
// provided through ${VAR} references so the file itself stays checked in.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ORBI_AUTH_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/orbiplay/auth.yaml
//  3. ~/.config/orbiplay/auth.yaml
//
// # Example
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	database:
//	  path: "/var/lib/orbiplay/auth.db"
//	admin:
//	  email: "${ADMIN_EMAIL}"
//	  password: "${ADMIN_PASS}"
//	auth:
//	  signing_secret: "${AUTH_SECRET}"
//	mail:
//	  resend_api_key: "${RESEND_API_KEY}"
//	  from: "OrbiPlay <no-reply@orbiplay.com>"
//	logging:
//	  level: "info"
//	  format: "text"
package config
