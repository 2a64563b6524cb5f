// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Wayfare mock API server.

Wayfare is a travel app client: a JSON API client, a resource cache with
optimistic mutations, and the resource services built on them. This server
is the development and test double of the travel backend those services
talk to. The command-line client lives in cmd/wayfare.

# Starting the Server

	TOKEN_SALT=dev-salt go run . -seed

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -token-salt dev-salt

A .env file in the working directory is loaded first; variables already set
in the environment win.

# Configuration

Required settings:

  - TOKEN_SALT (-token-salt): Secret for bearer token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:wayfare-mock.db)
  - SEED_DEMO (-seed): Insert demo destinations and vouchers
  - WAYFARE_VERBOSE: Debug logging

# Architecture

  - apiclient: HTTP/JSON client with typed errors, metrics and tracing
  - syncer: Resource cache with optimistic mutations
  - services: Destinations, itineraries, users and wallet
  - auth: Bearer tokens and the client session
  - notify: User-facing notifications
  - handlers, router, middleware: The mock API
  - db: Schema, seed data and the client cache store
  - cliparse: Configuration parsing
  - logging: slog setup

See package documentation for each component.
*/
package main
