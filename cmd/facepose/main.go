package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gioui.org/app"
	"github.com/esimov/facepose"
	"github.com/esimov/facepose/capture"
	"github.com/esimov/facepose/utils"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┌─┐┌─┐┌─┐┌─┐┌─┐
├┤ ├─┤│  ├┤ ├─┘│ │└─┐├┤
└  ┴ ┴└─┘└─┘┴  └─┘└─┘└─┘

Face orientation and mouth opening estimator.
    Version: %s

`

// pipeName is the file name that indicates stdin is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source    = flag.String("in", "", "Source image, directory or landmark stream (- for stdin)")
	camera    = flag.Int("cam", -1, "Capture device id (disabled if negative)")
	cascade   = flag.String("cc", "", "Face finder cascade file")
	puploc    = flag.String("pl", "", "Pupil localization cascade file")
	flpcDir   = flag.String("flpc", "", "Facial landmark points cascade directory")
	pitchComp = flag.Float64("pitch", facepose.DefaultPitchCompensationDegrees, "Pitch compensation in degrees")
	mirror    = flag.Bool("mirror", true, "Mirror the frames horizontally")
	headless  = flag.Bool("headless", false, "Log the estimates without opening a window")
	maxFaces  = flag.Int("max-faces", 1, "Maximum number of detected faces (0 means no limit)")
	minSize   = flag.Int("min", 60, "Minimum face size")
	noseDepth = flag.Float64("nose-depth", 0.5, "Nose depth relative to the pupil distance")
	fps       = flag.Float64("fps", 30, "Maximum number of processed frames per second (0 means no limit)")
	width     = flag.Int("width", facepose.DefaultWidth, "Frame width")
	height    = flag.Int("height", facepose.DefaultHeight, "Frame height")
	logLevel  = flag.String("log", "info", "Log level (debug, info, warn, error)")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(*source) == 0 && *camera < 0 {
		flag.Usage()
		log.Fatal(fmt.Sprintf("%s%s",
			utils.DecorateText("\nPlease provide a source with -in or a capture device with -cam!", utils.ErrorMessage),
			utils.DefaultColor,
		))
	}

	logger, err := utils.NewLogger(os.Stderr, *logLevel)
	if err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}

	cfg := facepose.DefaultDetectorConfig()
	cfg.FaceFinder = *cascade
	cfg.Puploc = *puploc
	cfg.LandmarkDir = *flpcDir
	cfg.MinSize = *minSize
	cfg.MaxFaces = *maxFaces
	cfg.NoseDepth = *noseDepth

	op := &facepose.Ops{
		Source:            *source,
		PipeName:          pipeName,
		Camera:            *camera,
		Capture:           capture.Open,
		Detector:          cfg,
		PitchCompensation: facepose.Radians(*pitchComp),
		Width:             *width,
		Height:            *height,
		Mirror:            *mirror,
		Headless:          *headless,
		FPS:               *fps,
		Log:               logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// Restore the default behavior, so a second interrupt terminates the program.
		<-ctx.Done()
		stop()
	}()

	if *headless {
		run(ctx, op)
		return
	}

	// The Gio event loop needs the main OS thread, so the session runs in a separate goroutine.
	go func() {
		run(ctx, op)
		os.Exit(0)
	}()
	app.Main()
}

// run executes the session and terminates the program in case of an error.
func run(ctx context.Context, op *facepose.Ops) {
	if err := op.Execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s%s",
			utils.DecorateText("\nError running the session:", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
	}
}
