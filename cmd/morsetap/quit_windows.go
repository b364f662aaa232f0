//go:build windows

package main

// registerQuitHandler is a no-op: there is no SIGQUIT on Windows.
func registerQuitHandler(func()) {}
