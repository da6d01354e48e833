package audio

import (
	"errors"
	"io"
	"math"
	"testing"
)

func drain(t *testing.T, src Source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(newSilentSource(44100, 2, 1000), 8000)

	if resampler.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", resampler.SampleRate())
	}
	if resampler.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", resampler.Channels())
	}
	if got, want := resampler.Ratio(), 44100.0/8000.0; got != want {
		t.Errorf("Ratio() = %v, want %v", got, want)
	}
}

func TestResampler_SameRatePassThrough(t *testing.T) {
	t.Parallel()

	out := drain(t, NewResampler(newConstantSource(8000, 1, 100, 0.5), 8000), 64)

	if len(out) != 100 {
		t.Fatalf("got %d samples, want 100", len(out))
	}
	for i, s := range out {
		if s != 0.5 {
			t.Fatalf("out[%d] = %v, want 0.5", i, s)
		}
	}
}

func TestResampler_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		srcRate   int
		dstRate   int
		tolerance int
	}{
		{"downsample 44100 to 8000", 44100, 8000, 100},
		{"upsample 8000 to 44100", 8000, 44100, 500},
		{"upsample 44100 to 48000", 44100, 48000, 100},
		{"extreme downsample", 96000, 8000, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSineSource(tt.srcRate, 1, tt.srcRate, 440)
			out := drain(t, NewResampler(src, tt.dstRate), 1024)

			if len(out) < tt.dstRate-tt.tolerance || len(out) > tt.dstRate+tt.tolerance {
				t.Errorf("got %d samples, want %d (±%d)", len(out), tt.dstRate, tt.tolerance)
			}
			for i, s := range out {
				if s < -1.5 || s > 1.5 {
					t.Fatalf("out[%d] = %v, outside [-1.5, 1.5]", i, s)
				}
			}
		})
	}
}

func TestResampler_StereoPreserved(t *testing.T) {
	t.Parallel()

	src := newMockSource(44100, 2, 4410, func(_ int, channel int) float32 {
		if channel == 0 {
			return 0.3
		}
		return 0.7
	})

	out := drain(t, NewResampler(src, 48000), 960)
	if len(out)%2 != 0 {
		t.Fatalf("odd sample count %d for stereo output", len(out))
	}

	for f := 0; f < len(out)/2; f++ {
		if math.Abs(float64(out[2*f]-0.3)) > 0.01 || math.Abs(float64(out[2*f+1]-0.7)) > 0.01 {
			t.Fatalf("frame %d = (%v, %v), want (0.3, 0.7)", f, out[2*f], out[2*f+1])
		}
	}
}

func TestResampler_VeryShortSource(t *testing.T) {
	t.Parallel()

	out := drain(t, NewResampler(newConstantSource(8000, 1, 1, 0.25), 16000), 16)
	if len(out) == 0 {
		t.Fatal("no output from single-frame source")
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	n, err := NewResampler(newSilentSource(8000, 1, 0), 16000).ReadSamples(make([]float32, 16))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	_, err := NewResampler(newSilentSource(44100, 2, 100), 8000).ReadSamples(make([]float32, 3))
	if !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

type stallingSource struct{ mockSource }

func (s *stallingSource) ReadSamples([]float32) (int, error) { return 0, nil }

func TestResampler_NoProgress(t *testing.T) {
	t.Parallel()

	src := &stallingSource{mockSource{sampleRate: 8000, channels: 1}}
	_, err := NewResampler(src, 16000).ReadSamples(make([]float32, 16))
	if !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("ReadSamples() error = %v, want io.ErrNoProgress", err)
	}
}

func TestResampler_Reset(t *testing.T) {
	t.Parallel()

	src := newConstantSource(8000, 1, 8000, 0.5)
	r := NewResampler(src, 16000)

	first := make([]float32, 64)
	if _, err := r.ReadSamples(first); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}

	r.Reset()

	second := make([]float32, 64)
	if _, err := r.ReadSamples(second); err != nil {
		t.Fatalf("ReadSamples() after Reset error = %v", err)
	}
	if math.Abs(float64(second[0]-0.5)) > 0.01 {
		t.Errorf("first sample after Reset = %v, want ≈0.5", second[0])
	}
}

func TestResampler_Close(t *testing.T) {
	t.Parallel()

	src := newSilentSource(44100, 1, 100)
	if err := NewResampler(src, 8000).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.closed {
		t.Error("Close() did not close the underlying source")
	}
}

func TestResampler_MinimalAllocs(t *testing.T) {
	src := newSineSource(44100, 2, 1<<30, 440)
	r := NewResampler(src, 48000)
	buf := make([]float32, 512)

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = r.ReadSamples(buf)
	})
	if allocs > 0 {
		t.Errorf("ReadSamples() allocates %v times per call, want 0", allocs)
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	r := NewResampler(newSineSource(48000, 2, 1<<30, 440), 16000)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = r.ReadSamples(buf)
	}
}

func BenchmarkResampler_Upsample(b *testing.B) {
	r := NewResampler(newSineSource(16000, 2, 1<<30, 440), 48000)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = r.ReadSamples(buf)
	}
}
