// Package thermostat interprets Smart Device Management trait snapshots and
// translates user intents into device commands. Every function is pure: the
// caller fetches a fresh snapshot and dispatches the returned command.
package thermostat
