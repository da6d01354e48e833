package main

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audbridge/internal/config"
)

func TestParseFlags_Defaults(t *testing.T) {
	o, err := parseFlags(nil, config.Default())
	require.NoError(t, err)

	assert.Equal(t, 44100, o.cfg.SampleRate)
	assert.Equal(t, 440.0, o.tone)
	assert.Equal(t, 5*time.Second, o.duration, "a tone needs a bound")
	assert.Empty(t, o.cfg.Capture)
}

func TestParseFlags_Overrides(t *testing.T) {
	o, err := parseFlags([]string{
		"-r", "48000", "--channels=1", "-l", "-i", "2",
		"-o", "pulse:", "--play", "x.wav", "--loop", "-m",
	}, config.Default())
	require.NoError(t, err)

	assert.Equal(t, 48000, o.cfg.SampleRate)
	assert.Equal(t, 1, o.cfg.OutputChannels)
	assert.True(t, o.cfg.Live)
	assert.Equal(t, "pulse:", o.cfg.Sink)
	assert.Equal(t, "pulse:", o.cfg.Capture)
	assert.Zero(t, o.duration)
	assert.True(t, o.loop)
	assert.True(t, o.monitor)
}

func TestParseFlags_Invalid(t *testing.T) {
	for name, args := range map[string][]string{
		"rate":     {"-r", "10"},
		"tone":     {"-t", "0"},
		"duration": {"-d", "-1s"},
		"unknown":  {"--bogus"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseFlags(args, config.Default())
			assert.Error(t, err)
		})
	}
}

func TestParseFlags_HelpSkipsValidation(t *testing.T) {
	o, err := parseFlags([]string{"-h", "-r", "10"}, config.Default())
	require.NoError(t, err)
	assert.True(t, o.help)
}

func TestTone(t *testing.T) {
	tn := &tone{freq: 1000, rate: 8000, gain: 0.5}
	out := [][]float32{make([]float32, 8), make([]float32, 8)}

	tn.Render(nil, out, 8)

	assert.Zero(t, out[0][0])
	assert.InDelta(t, 0.5*math.Sin(2*math.Pi/8*2), out[0][2], 1e-6)
	assert.Equal(t, out[0], out[1])
}

func TestTone_Monitor(t *testing.T) {
	in := [][]float32{{0.25, 0.25}}
	out := [][]float32{make([]float32, 2), make([]float32, 2)}

	(&tone{freq: 1000, rate: 8000, gain: 0}).Render(in, out, 2)
	assert.Equal(t, []float32{0, 0}, out[0])

	(&tone{freq: 1000, rate: 8000, gain: 0, monitor: true}).Render(in, out, 2)
	assert.Equal(t, []float32{0.25, 0.25}, out[0])
}
