//go:build tools

// Package tools pins code generators used through go generate (mockgen) so
// that go.mod tracks them.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
