package bundle

import "errors"

var (
	errMissingRelease         = errors.New("options.release is required (use \"none\" for local-only)")
	errInvalidNodeModulesMode = errors.New("options.nodeModulesMode must be skip, copy, or symlink")
)
