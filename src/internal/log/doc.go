// Package log provides simple leveled logging for ifconf.
//
// Output is colored with ANSI prefixes and split by level: DEBUG, INFO and WARN
// go to stdout, ERROR goes to stderr. Debug messages are printed only in
// verbose mode.
//
//	log.Infof("Creating interface %s", name)
//	log.SetVerbose(true)
//	log.Debugf("Running: %s", cmd)
//
// Conf-mode handlers print their failure to the error stream, so
// SetForceStdErr(true) is used when stdout belongs to another consumer.
// SetOutput redirects both streams, which tests use to capture messages.
package log
