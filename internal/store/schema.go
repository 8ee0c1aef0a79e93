package store

const schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    installed_on TIMESTAMP,
    versions TEXT NOT NULL,
    installed_intentionally BOOLEAN NOT NULL,
    size_bytes INTEGER,
    PRIMARY KEY (name, kind)
);

CREATE TABLE IF NOT EXISTS scan_runs (
    id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    prefix TEXT NOT NULL,
    strict BOOLEAN NOT NULL,
    status TEXT NOT NULL,
    package_count INTEGER NOT NULL DEFAULT 0,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_packages_kind ON packages(kind);
CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at);
`
