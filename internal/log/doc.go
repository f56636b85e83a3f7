// Package log builds the slog loggers used by planecrash.
//
// Loggers write to the given writer in text or JSON form, at Warn level by
// default and Debug level in verbose mode. Records pass through a
// PathHandler, which rewrites filesystem path attributes relative to the
// mirror root so that a walk over thousands of pages stays readable:
//
//	logger := log.NewLogger(os.Stderr, true, "../wget_planecrashinfo")
//	logger.Debug("loading page", "path", "../wget_planecrashinfo/1922/1922-1.htm")
//	// ... path=1922/1922-1.htm
//
//	slog.SetDefault(logger)
package log
