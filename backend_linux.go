//go:build linux

package watcher

const defaultBackend = BackendInotify
