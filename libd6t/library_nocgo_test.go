//go:build !cgo

package libd6t

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Unavailable(t *testing.T) {
	lib, err := Load("")
	assert.Nil(t, lib)
	assert.ErrorIs(t, err, ErrUnavailable)
}
