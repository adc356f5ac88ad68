// Package engineerr defines the engine's structured error taxonomy (spec §7),
// mirroring the original's thiserror-derived ComradeError/LogWatcherError/
// TriggerError enums with Go error wrapping instead.
package engineerr

import "fmt"

// ConfigParseError wraps a failure to deserialize configuration or trigger
// text. Fatal to the Load call; the orchestrator keeps its previous snapshot.
type ConfigParseError struct {
	Filename string
	Err      error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("config parse error in %s: %v", e.Filename, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// InvalidRegexError reports a trigger whose search_text failed to compile.
// Fatal to Load.
type InvalidRegexError struct {
	Source  string
	Trigger string
	Err     error
}

func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid regex for trigger %s/%s: %v", e.Source, e.Trigger, e.Err)
}

func (e *InvalidRegexError) Unwrap() error { return e.Err }

// AlreadyWatchingError reports a duplicate watch registration for the same
// file. Fatal to Init for that character.
type AlreadyWatchingError struct {
	Filename string
}

func (e *AlreadyWatchingError) Error() string {
	return fmt.Sprintf("already watching %s", e.Filename)
}

// FileNotifierError wraps a failure of the underlying filesystem notifier to
// start or to register a file. Returned by engine.New when the watcher cannot
// be created and by engine.Init when a log file's directory cannot be
// registered.
type FileNotifierError struct {
	Err error
}

func (e *FileNotifierError) Error() string {
	return fmt.Sprintf("file notifier error: %v", e.Err)
}

func (e *FileNotifierError) Unwrap() error { return e.Err }

// InvalidPathError reports a filename that could not be resolved to a usable
// base name (e.g. "." or "/").
type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid file path: %s", e.Path)
}
