//go:build release

package api

const reloadAllowed = false
