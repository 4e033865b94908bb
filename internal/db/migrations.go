package db

import (
	"fmt"

	"gorm.io/gorm"
)

var postgresStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

	// Every distinct plate ever read, keyed by its lookup form.
	`CREATE TABLE IF NOT EXISTS anpr_plates (
		id              UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number          TEXT NOT NULL,
		normalized      TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_anpr_plates_normalized ON anpr_plates(normalized);`,
	`CREATE INDEX IF NOT EXISTS idx_anpr_plates_number ON anpr_plates(number);`,

	// One row per accepted zone crossing.
	`CREATE TABLE IF NOT EXISTS anpr_plate_reads (
		id                   UUID PRIMARY KEY,
		plate_id             UUID REFERENCES anpr_plates(id) ON DELETE SET NULL,
		camera_id            TEXT NOT NULL,
		track_id             BIGINT NOT NULL,
		class_name           TEXT NOT NULL,
		text                 TEXT NOT NULL,
		plate_key            TEXT NOT NULL,
		confidence           DOUBLE PRECISION NOT NULL,
		detection_confidence DOUBLE PRECISION NOT NULL,
		snapshot_url         TEXT,
		entry_date           VARCHAR(10) NOT NULL,
		entry_time           VARCHAR(8) NOT NULL,
		emitted_at           TIMESTAMPTZ NOT NULL,
		metadata             JSONB,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_anpr_plate_reads_plate_id ON anpr_plate_reads(plate_id);`,
	`CREATE INDEX IF NOT EXISTS idx_anpr_plate_reads_key_time ON anpr_plate_reads(plate_key, emitted_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_anpr_plate_reads_emitted_at ON anpr_plate_reads(emitted_at);`,

	// Whitelist / blacklist membership.
	`CREATE TABLE IF NOT EXISTS anpr_lists (
		id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name        TEXT NOT NULL,
		type        TEXT NOT NULL,
		description TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_anpr_lists_name ON anpr_lists(name);`,
	`CREATE TABLE IF NOT EXISTS anpr_list_items (
		list_id     UUID REFERENCES anpr_lists(id) ON DELETE CASCADE,
		plate_id    UUID REFERENCES anpr_plates(id) ON DELETE CASCADE,
		note        TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (list_id, plate_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_anpr_list_items_plate_id ON anpr_list_items(plate_id);`,
	`INSERT INTO anpr_lists (name, type, description)
		VALUES ('default_whitelist', 'WHITELIST', 'Default whitelist'),
		       ('default_blacklist', 'BLACKLIST', 'Default blacklist')
		ON CONFLICT (name) DO NOTHING;`,
}

var mysqlStatements = []string{
	`CREATE TABLE IF NOT EXISTS anpr_plates (
		id          CHAR(36) PRIMARY KEY,
		number      VARCHAR(64) NOT NULL,
		normalized  VARCHAR(64) NOT NULL,
		created_at  DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY ux_anpr_plates_normalized (normalized),
		KEY idx_anpr_plates_number (number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS anpr_plate_reads (
		id                   CHAR(36) PRIMARY KEY,
		plate_id             CHAR(36) NULL,
		camera_id            VARCHAR(128) NOT NULL,
		track_id             BIGINT NOT NULL,
		class_name           VARCHAR(128) NOT NULL,
		text                 TEXT NOT NULL,
		plate_key            VARCHAR(64) NOT NULL,
		confidence           DOUBLE NOT NULL,
		detection_confidence DOUBLE NOT NULL,
		snapshot_url         TEXT NULL,
		entry_date           VARCHAR(10) NOT NULL,
		entry_time           VARCHAR(8) NOT NULL,
		emitted_at           DATETIME(6) NOT NULL,
		metadata             JSON NULL,
		created_at           DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_anpr_plate_reads_plate_id (plate_id),
		KEY idx_anpr_plate_reads_key_time (plate_key, emitted_at),
		KEY idx_anpr_plate_reads_emitted_at (emitted_at),
		CONSTRAINT fk_anpr_plate_reads_plate FOREIGN KEY (plate_id) REFERENCES anpr_plates(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS anpr_lists (
		id          CHAR(36) PRIMARY KEY,
		name        VARCHAR(128) NOT NULL,
		type        VARCHAR(32) NOT NULL,
		description TEXT NULL,
		created_at  DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY ux_anpr_lists_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS anpr_list_items (
		list_id     CHAR(36) NOT NULL,
		plate_id    CHAR(36) NOT NULL,
		note        TEXT NULL,
		created_at  DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (list_id, plate_id),
		KEY idx_anpr_list_items_plate_id (plate_id),
		CONSTRAINT fk_anpr_list_items_list FOREIGN KEY (list_id) REFERENCES anpr_lists(id) ON DELETE CASCADE,
		CONSTRAINT fk_anpr_list_items_plate FOREIGN KEY (plate_id) REFERENCES anpr_plates(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`INSERT IGNORE INTO anpr_lists (id, name, type, description)
		VALUES (UUID(), 'default_whitelist', 'WHITELIST', 'Default whitelist'),
		       (UUID(), 'default_blacklist', 'BLACKLIST', 'Default blacklist');`,
}

func statementsFor(driver string) []string {
	if driver == "mysql" {
		return mysqlStatements
	}
	return postgresStatements
}

func runMigrations(db *gorm.DB, driver string) error {
	for i, stmt := range statementsFor(driver) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
