package facepose

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/esimov/facepose/utils"
	jsoniter "github.com/json-iterator/go"
	_ "golang.org/x/image/bmp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SupportedExtensions are the image file types ImageSource reads.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}

// FrameSource delivers the frames processed by the runner.
// Next returns io.EOF once the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// ImageSource reads the images of a single file or of a directory tree.
type ImageSource struct {
	paths <-chan string
	errc  <-chan error
	done  chan struct{}
	once  sync.Once
}

var _ FrameSource = (*ImageSource)(nil)

// NewImageSource creates a frame source from an image file or a directory.
// Directories are walked recursively in lexical order.
func NewImageSource(path string) (*ImageSource, error) {
	fs, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load the source: %w", err)
	}
	src := &ImageSource{done: make(chan struct{})}

	switch mode := fs.Mode(); {
	case mode.IsDir():
		src.paths, src.errc = walkDir(src.done, path, SupportedExtensions)
	case mode.IsRegular():
		if !isValidExtension(filepath.Ext(path), SupportedExtensions) {
			return nil, fmt.Errorf("%v file type not supported", filepath.Ext(path))
		}
		paths := make(chan string, 1)
		errc := make(chan error, 1)
		paths <- path
		close(paths)
		errc <- nil
		src.paths, src.errc = paths, errc
	default:
		return nil, fmt.Errorf("%s is neither a file nor a directory", path)
	}
	return src, nil
}

// Next decodes the next image.
func (s *ImageSource) Next(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case path, ok := <-s.paths:
		if !ok {
			if err := <-s.errc; err != nil {
				return Frame{}, err
			}
			return Frame{}, io.EOF
		}
		img, err := decodeImg(path)
		if err != nil {
			return Frame{}, fmt.Errorf("%s: %w", path, err)
		}
		return Frame{Time: time.Now(), Image: img}, nil
	}
}

// Close stops the directory walk.
func (s *ImageSource) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// LandmarkStream decodes already detected faces from a stream of JSON values,
// one array of face records per frame.
type LandmarkStream struct {
	r     io.Reader
	dec   *jsoniter.Decoder
	recs  chan landmarkRecord
	done  chan struct{}
	start sync.Once
	once  sync.Once
}

type landmarkRecord struct {
	faces []Face
	err   error
}

var _ FrameSource = (*LandmarkStream)(nil)

// NewLandmarkStream creates a landmark source reading from r.
// In case r is an io.Closer it is closed by Close.
func NewLandmarkStream(r io.Reader) *LandmarkStream {
	return &LandmarkStream{
		r:    r,
		dec:  json.NewDecoder(r),
		recs: make(chan landmarkRecord),
		done: make(chan struct{}),
	}
}

// Next returns the faces of the next frame. The reader is consumed by a separate
// goroutine, so a cancelled context is honored while the reader blocks.
func (s *LandmarkStream) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	s.start.Do(func() { go s.decode() })

	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case rec, ok := <-s.recs:
		if !ok {
			return Frame{}, io.EOF
		}
		if rec.err != nil {
			return Frame{}, rec.err
		}
		return Frame{Time: time.Now(), Faces: rec.faces}, nil
	}
}

// decode sends the decoded records to Next until the first error or until the stream is closed.
func (s *LandmarkStream) decode() {
	defer close(s.recs)

	for {
		var rec landmarkRecord
		// More skips the whitespace separating the records.
		if !s.dec.More() {
			rec.err = io.EOF
		} else if err := s.dec.Decode(&rec.faces); err != nil {
			if errors.Is(err, io.EOF) {
				rec.err = io.EOF
			} else {
				rec.err = fmt.Errorf("could not decode the face records: %w", err)
			}
		}

		select {
		case s.recs <- rec:
		case <-s.done:
			return
		}
		if rec.err != nil {
			return
		}
	}
}

// Close stops the decoding and closes the underlying reader if it is closable.
func (s *LandmarkStream) Close() error {
	s.once.Do(func() { close(s.done) })
	if c, ok := s.r.(io.Closer); ok && c != os.Stdin {
		return c.Close()
	}
	return nil
}

// decodeImg decodes an image file to type image.Image.
func decodeImg(src string) (image.Image, error) {
	ctype, err := utils.DetectContentType(src)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("the source should be an image file, got %s", ctype)
	}

	file, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open the image file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode the image file: %w", err)
	}
	return img, nil
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() || !isValidExtension(filepath.Ext(f.Name()), srcExts) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	ext = strings.ToLower(ext)
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
