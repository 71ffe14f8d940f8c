package utils

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils_DecorateText(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(ErrorColor+"failed"+DefaultColor, DecorateText("failed", ErrorMessage))
	assert.Equal(SuccessColor+"done"+DefaultColor, DecorateText("done", SuccessMessage))
	assert.Equal("plain", DecorateText("plain", MessageType(42)))
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("could not create the sample file: %v", err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("could not encode the sample file: %v", err)
	}
	f.Close()

	ctype, err := DetectContentType(path)
	if err != nil {
		t.Fatalf("could not detect the file type: %v", err)
	}
	if !strings.Contains(ctype, "image") {
		t.Errorf("the file type should be image, got %s", ctype)
	}
}

func TestUtils_ShouldNotDetectMissingFile(t *testing.T) {
	_, err := DetectContentType(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestUtils_Math(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5.5, Max(5.5, 2))
	assert.Equal(5.5, Max(2, 5.5))

	assert.Equal(0.0, Clamp(-1.0, 0, 10))
	assert.Equal(10.0, Clamp(12.0, 0, 10))
	assert.Equal(4, Clamp(4, 0, 10))
}

func TestUtils_Format(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal("2m 5.00s", FormatTime(125*time.Second))
	assert.Equal("1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))

	assert.Equal("5.00/s", FormatRate(10, 2*time.Second))
	assert.Equal("0.00/s", FormatRate(10, 0))
}

func TestUtils_Logger(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	assert.NoError(err)

	logger.Info("hidden")
	logger.WithFields(Fields{"face": 1}).Warn("degenerate estimate")

	out := buf.String()
	assert.NotContains(out, "hidden")
	assert.Contains(out, "degenerate estimate")
	assert.Contains(out, "face")

	_, err = NewLogger(&buf, "loud")
	assert.Error(err)
}

func TestUtils_Spinner(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	s := NewSpinner(&buf, "loading", time.Millisecond, false)
	s.StopMsg = "loaded"

	s.Start()
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(out, "loading")
	assert.True(strings.HasSuffix(out, "loaded"))
	assert.Equal(1, strings.Count(out, "loaded"))
}
