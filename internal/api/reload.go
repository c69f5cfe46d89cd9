//go:build !release

package api

// reloadAllowed permits template reloads outside release builds
const reloadAllowed = true
