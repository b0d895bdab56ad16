// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string or SQLite file path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SessionSecret: HMAC secret for session tokens (required)
  - SessionTTL: Lifetime of a login session (default: 14 days)
  - SecureCookies: Set the Secure attribute on cookies
  - IPHashSalt: Key for voter IP hashes (default: derived from SessionSecret)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-session-secret   Session signing secret
	-session-ttl      Session lifetime (Go duration)
	-secure-cookies   Secure cookies
	-ip-hash-salt     Voter IP hash key

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	SESSION_SECRET → -session-secret
	SESSION_TTL    → -session-ttl
	SECURE_COOKIES → -secure-cookies
	IP_HASH_SALT   → -ip-hash-salt

CLI flags take precedence over environment variables. Call LoadDotEnv
before ParseFlags to seed the environment from a .env file; values already
present in the environment are not overwritten.

# Example

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse
