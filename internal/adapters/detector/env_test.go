package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/pack/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		isTTY bool
		ci    string
		want  detector.OutputMode
	}{
		{name: "terminal", isTTY: true, want: detector.ModeOn},
		{name: "pipe", isTTY: false, want: detector.ModeOff},
		{name: "ci true", isTTY: true, ci: "true", want: detector.ModeOff},
		{name: "ci 1", isTTY: true, ci: "1", want: detector.ModeOff},
		{name: "ci other", isTTY: true, ci: "false", want: detector.ModeOn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detector.Detect(tt.isTTY, tt.ci))
		})
	}
}

func TestResolveMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, detector.ModeOn, detector.ResolveMode(detector.ModeOff, "on"))
	assert.Equal(t, detector.ModeOff, detector.ResolveMode(detector.ModeOn, "off"))
	assert.Equal(t, detector.ModeOn, detector.ResolveMode(detector.ModeOn, "auto"))
	assert.Equal(t, detector.ModeOff, detector.ResolveMode(detector.ModeOff, ""))
}
