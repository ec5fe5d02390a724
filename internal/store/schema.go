package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS fetch_cycles (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    resource             TEXT NOT NULL,
    cycle                INTEGER NOT NULL,
    outcome              TEXT NOT NULL,
    reason               TEXT,
    started_at           TEXT NOT NULL,
    duration_ms          INTEGER NOT NULL,
    recorded_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fetch_cycles_started ON fetch_cycles(started_at);
CREATE INDEX IF NOT EXISTS idx_fetch_cycles_resource ON fetch_cycles(resource);
`
