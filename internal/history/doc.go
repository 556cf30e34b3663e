// Package history persists rotation and policy events to a local
// SQLite database so past exit IPs can be reviewed later.
//
// Recording is strictly best effort from the caller's point of view:
// the rotation loop treats a failed insert as a warning and keeps
// going. The database lives in the XDG data directory by default.
package history
