package mfcam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, 10*time.Second, c.InitTimeout)
	assert.Equal(t, 5*time.Second, c.EventTimeout)
	assert.NotNil(t, c.Logger)

	log := discardLogger()
	c = Config{InitTimeout: time.Second, EventTimeout: -1, Logger: log}.withDefaults()
	assert.Equal(t, time.Second, c.InitTimeout)
	assert.Equal(t, 5*time.Second, c.EventTimeout)
	assert.Same(t, log, c.Logger)
}
