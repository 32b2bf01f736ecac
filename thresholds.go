package gourdianringlog

// Thresholds holds the minimum admitted level of every subsystem.
//
// The zero value admits everything: each subsystem starts at DEBUG.
// Thresholds is not safe for concurrent use on its own; a Logger guards
// its table with the logger mutex.
type Thresholds struct {
	levels [numSubsystems]Level
}

// Set sets the minimum level admitted for sub.
func (t *Thresholds) Set(sub Subsystem, level Level) error {
	if !sub.Valid() {
		return ErrInvalidSubsystem
	}
	if !level.Valid() {
		return ErrInvalidLevel
	}
	t.levels[sub] = level
	return nil
}

// Get returns the threshold of sub, or NONE for an unknown subsystem.
func (t *Thresholds) Get(sub Subsystem) Level {
	if !sub.Valid() {
		return NONE
	}
	return t.levels[sub]
}

// EnableAll admits every level on every subsystem.
func (t *Thresholds) EnableAll() {
	for i := range t.levels {
		t.levels[i] = DEBUG
	}
}

// DisableAll silences every subsystem.
func (t *Thresholds) DisableAll() {
	for i := range t.levels {
		t.levels[i] = NONE
	}
}

// Enable admits every level on sub, leaving the other subsystems untouched.
func (t *Thresholds) Enable(sub Subsystem) error {
	return t.Set(sub, DEBUG)
}

// Disable silences sub, leaving the other subsystems untouched.
func (t *Thresholds) Disable(sub Subsystem) error {
	return t.Set(sub, NONE)
}

// Admits reports whether a record of the given level from sub passes the
// threshold. Invalid input and the NONE level are never admitted.
func (t *Thresholds) Admits(sub Subsystem, level Level) bool {
	if !sub.Valid() || !level.Loggable() {
		return false
	}
	return level >= t.levels[sub]
}
