package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id               TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    label                TEXT,
    exec_mode            TEXT NOT NULL,
    request_json         TEXT
);

CREATE TABLE IF NOT EXISTS portfolios (
    run_id               TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    name                 TEXT NOT NULL,
    position             INTEGER NOT NULL,
    config_json          TEXT NOT NULL,
    metrics_json         TEXT NOT NULL,
    PRIMARY KEY (run_id, name)
);

CREATE TABLE IF NOT EXISTS windows (
    run_id               TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    portfolio            TEXT NOT NULL,
    anchor               TEXT NOT NULL,
    start                TEXT NOT NULL,
    xirr                 REAL NOT NULL,
    volatility           REAL,
    invested             REAL NOT NULL,
    final_value          REAL NOT NULL,
    ledger_json          TEXT,
    PRIMARY KEY (run_id, portfolio, anchor)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
