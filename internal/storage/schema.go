package storage

// Schema creates the tables the Postgres store uses. Running it again is a
// no-op.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	source                 TEXT NOT NULL,
	id                     TEXT NOT NULL,
	collection             TEXT NOT NULL,
	title                  TEXT NOT NULL DEFAULT '',
	subtitle               TEXT NOT NULL DEFAULT '',
	serial_number          TEXT NOT NULL DEFAULT '',
	doc_type               TEXT NOT NULL DEFAULT '',
	issuing_authority      TEXT NOT NULL DEFAULT '',
	applicable_information TEXT NOT NULL DEFAULT '',
	publication_decision   TEXT NOT NULL DEFAULT '',
	state                  TEXT NOT NULL DEFAULT '',
	sector                 TEXT NOT NULL DEFAULT '',
	issuance_date          DATE,
	effective_date         DATE,
	expiration_date        DATE,
	gazette_date           DATE,
	adoption_date          DATE,
	publication_date       DATE,
	application_date       DATE,
	body_html              TEXT NOT NULL DEFAULT '',
	attachments            JSONB NOT NULL DEFAULT '[]',
	created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (source, id)
);

CREATE INDEX IF NOT EXISTS documents_issuance_idx ON documents (source, issuance_date DESC);

CREATE TABLE IF NOT EXISTS articles (
	source      TEXT NOT NULL,
	document_id TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	number      INTEGER NOT NULL,
	name        TEXT,
	body        TEXT NOT NULL DEFAULT '',
	position    JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (source, document_id, seq),
	FOREIGN KEY (source, document_id) REFERENCES documents (source, id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS edges (
	source    TEXT NOT NULL,
	space     TEXT NOT NULL,
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	label     TEXT NOT NULL,
	PRIMARY KEY (source, space, source_id, target_id, label)
);
`
