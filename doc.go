/*
Package facepose estimates the orientation of a face (yaw, pitch and roll) and the
mouth opening from the facial landmarks delivered by a face detector.

The face plane is spanned by the outer corners of the eyes and the nose tip. Its
normal gives the direction the face is looking at, while the distance between the
lips normalized by the distance between the eyes gives a scale independent measure
of the mouth opening.

The landmarks are produced either by the pigo cascade classifiers running over
webcam frames or image files, or decoded from a stream of JSON face records
produced by a face mesh model. The package provides a command line interface
showing the results in a Gio window or logging them in headless mode:

	$ facepose --help

In case you wish to integrate the estimator in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/facepose"
	)

	func main() {
		est := facepose.NewEstimator()

		res, err := est.Estimate(&face)
		if err != nil {
			fmt.Printf("Error estimating the face pose: %s", err.Error())
		}
		if res.Valid() {
			fmt.Printf("yaw: %.2f", facepose.Degrees(res.Direction.Yaw))
		}
	}
*/
package facepose
