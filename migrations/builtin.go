// Copyright 2023 The OmniDB Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package migrations

// Builtin returns the schema the gateway itself depends on.
func Builtin() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "Initial schema",
			Description: "Create initial database schema",
			Up: `
				CREATE TABLE users (
					id uuid PRIMARY KEY,
					email text NOT NULL,
					name text NOT NULL,
					password_hash text NOT NULL,
					role text NOT NULL,
					created_at timestamptz NOT NULL,
					updated_at timestamptz NOT NULL
				);
				CREATE UNIQUE INDEX user_email ON users (email);
			`,
			Down: `DROP TABLE users;`,
		},
		{
			Version:     2,
			Name:        "Add user roles",
			Description: "Add role-based access control",
			Up: `
				ALTER TABLE users ADD COLUMN permissions text[] NOT NULL DEFAULT '{}';
				ALTER TABLE users ADD COLUMN last_login timestamptz;
			`,
			Down: `
				ALTER TABLE users DROP COLUMN permissions;
				ALTER TABLE users DROP COLUMN last_login;
			`,
		},
		{
			Version:     3,
			Name:        "ML artifact catalog",
			Description: "Metadata tables for datasets and models",
			Up: `
				CREATE TABLE ml_datasets (
					id uuid PRIMARY KEY,
					name text NOT NULL,
					description text NOT NULL DEFAULT '',
					size_bytes bigint NOT NULL DEFAULT 0,
					created_at timestamptz NOT NULL
				);
				CREATE TABLE ml_models (
					id uuid PRIMARY KEY,
					name text NOT NULL,
					description text NOT NULL DEFAULT '',
					size_bytes bigint NOT NULL DEFAULT 0,
					created_at timestamptz NOT NULL
				);
			`,
			Down: `
				DROP TABLE ml_models;
				DROP TABLE ml_datasets;
			`,
		},
	}
}
