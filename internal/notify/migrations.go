package notify

type migration struct {
	version int
	sql     string
}

// Versions must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id             TEXT PRIMARY KEY,
	type           TEXT NOT NULL,
	title          TEXT NOT NULL,
	message        TEXT NOT NULL,
	task_id        TEXT NOT NULL DEFAULT '',
	task_title     TEXT NOT NULL DEFAULT '',
	from_user_id   TEXT NOT NULL DEFAULT '',
	from_user_name TEXT NOT NULL DEFAULT '',
	read           INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS dedup_markers (
	key        TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	task_id    TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dedup_markers_task_id ON dedup_markers(task_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
ALTER TABLE dedup_markers ADD COLUMN viewer_id TEXT NOT NULL DEFAULT '';

UPDATE dedup_markers SET viewer_id = subject_id WHERE kind IN ('shared', 'assigned');

CREATE INDEX IF NOT EXISTS idx_dedup_markers_viewer_task ON dedup_markers(viewer_id, task_id);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
