//go:build tools

package synod

import (
	_ "github.com/golang/mock/mockgen"
)
