// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and creates the schema.

# Connections

Open picks the driver from the config (lib/pq for postgres, modernc.org/sqlite
for sqlite) and pings the database:

	conn, err := db.Open(cfg)

SQLite connections enable foreign keys and are limited to one open
connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: Accounts with bcrypt password hashes
  - question: Poll prompt, publish date, optional end date
  - choice: Options per question, ordered by position
  - vote: One row per (user, question)

# Relationships

	question 1──* choice
	question 1──* vote
	choice   1──* vote
	app_user 1──* vote

vote references choice through (choice_id, question_id), so a vote can only
point at a choice of its own question. UNIQUE (user_id, question_id) keeps a
user at one vote per question even under concurrent submissions.
*/
package db
