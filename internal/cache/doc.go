package cache

// Package cache persists the last-observed version per watched app.
//
// The snapshot is a single JSON object on disk so operators can inspect or
// hand-edit it. Reads are tolerant (anything broken counts as a first run);
// writes go through a temp file + rename so an interrupted run can never
// truncate the previous snapshot.
