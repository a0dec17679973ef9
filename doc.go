/*
 *
 * Copyright 2023 OmniDB authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

/*

# OmniDB: an enterprise gateway in front of the database engine

## Why a gateway?

1, give applications one stable gRPC surface while the engine behind it can be re-pointed at runtime

2, centralize user management, credential hashing and input sanitization instead of repeating them per application

3, carry the operational concerns - migrations, backups, query anomaly detection - next to the data path


## Data Model

* Users, the managed accounts of the gateway. Email is unique, passwords are stored as argon2id hashes.

* Tables, created through typed field definitions that the gateway maps to engine column types.

* Namespaces and Databases, the engine-side scoping a connection binds to.

* Datasets and Models, ML artifacts whose metadata lives in the engine and whose payloads live in the local store.


## Architecture

A single server process exposes two gRPC services:

* DatabaseService - user lifecycle (create/get/update/delete), failing with gRPC status codes

* DbService - engine operations (connect, query, create table, health, backup, restore), reporting failure in the response body

Operational endpoints (/stats, /metrics, profiling) are served over HTTP on a separate port.

### Engine

PostgreSQL through pgx connection pools. ConnectDb swaps the pool atomically; in-flight requests finish on the pool they started with.

### Storage

dataset and model payloads are kept in a local rocksdb instance, one column family per artifact kind

### Migrations

versioned schema migrations applied at startup, recorded in schema_migrations


## Building Blocks

* gRPC
* pgx
* Rocksdb
* Prometheus

*/

package omniprodb
