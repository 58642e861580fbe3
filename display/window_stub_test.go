//go:build !withcv
// +build !withcv

package display

import (
	"testing"

	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/overlay"
	"github.com/stretchr/testify/assert"
)

func TestDisplayUnavailableWithoutOpenCV(t *testing.T) {
	_, err := Open(Options{Width: 500, Style: overlay.DefaultStyle()})
	assert.ErrorIs(t, err, ErrDisplayUnavailable)

	var w Window
	assert.ErrorIs(t, w.Consume(controller.Frame{}, motion.Result{}), ErrDisplayUnavailable)
	assert.NoError(t, w.Close())
}
