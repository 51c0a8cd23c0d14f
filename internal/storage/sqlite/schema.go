package sqlite

// Schema is the family-tree schema in SQLite form. The tables are owned by
// the external import pipeline; this DDL exists so that tests and fresh
// local databases have a schema to read from. All statements are idempotent.
//
// Dates are stored as ISO-8601 TEXT (YYYY-MM-DD); booleans as 0/1 integers
// with NULL meaning unknown where the column is nullable.
const Schema = `
CREATE TABLE IF NOT EXISTS person (
	id                 TEXT PRIMARY KEY,
	alias_id           TEXT,
	display_name       TEXT,
	given_name         TEXT,
	surname            TEXT,
	gender             TEXT,
	birth_text         TEXT,
	death_text         TEXT,
	birth_date         TEXT,
	death_date         TEXT,
	is_living          INTEGER,
	is_private         INTEGER NOT NULL DEFAULT 0,
	is_living_override INTEGER
);

CREATE INDEX IF NOT EXISTS idx_person_alias ON person(alias_id);

CREATE TABLE IF NOT EXISTS family (
	id         TEXT PRIMARY KEY,
	alias_id   TEXT,
	father_id  TEXT,
	mother_id  TEXT,
	is_private INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_family_alias ON family(alias_id);
CREATE INDEX IF NOT EXISTS idx_family_father ON family(father_id);
CREATE INDEX IF NOT EXISTS idx_family_mother ON family(mother_id);

CREATE TABLE IF NOT EXISTS family_child (
	family_id TEXT NOT NULL,
	child_id  TEXT NOT NULL,
	PRIMARY KEY (family_id, child_id)
);

CREATE INDEX IF NOT EXISTS idx_family_child_child ON family_child(child_id);

CREATE TABLE IF NOT EXISTS person_parent (
	child_id  TEXT NOT NULL,
	parent_id TEXT NOT NULL,
	PRIMARY KEY (child_id, parent_id)
);

CREATE INDEX IF NOT EXISTS idx_person_parent_parent ON person_parent(parent_id);

CREATE TABLE IF NOT EXISTS event (
	id              TEXT PRIMARY KEY,
	event_type      TEXT,
	event_date      TEXT,
	event_date_text TEXT,
	is_private      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS person_event (
	person_id TEXT NOT NULL,
	event_id  TEXT NOT NULL,
	PRIMARY KEY (person_id, event_id)
);

CREATE TABLE IF NOT EXISTS family_event (
	family_id TEXT NOT NULL,
	event_id  TEXT NOT NULL,
	PRIMARY KEY (family_id, event_id)
);

CREATE INDEX IF NOT EXISTS idx_family_event_family ON family_event(family_id);
`
