// Package geometry samples the torus surface under the camera rotation.
package geometry

import (
	"math"

	"github.com/lixenwraith/donut/config"
)

// Rotation caches the trigonometry of tilt A (about x) and spin B (about z)
type Rotation struct {
	SinA, CosA float64
	SinB, CosB float64
}

// NewRotation precomputes sines and cosines; angles are used unreduced
func NewRotation(a, b float64) Rotation {
	return Rotation{
		SinA: math.Sin(a), CosA: math.Cos(a),
		SinB: math.Sin(b), CosB: math.Cos(b),
	}
}

// Sample is one point of the surface in rotated view space
// Z excludes the viewer distance; L is the luminance term in roughly [-√2, √2]
type Sample struct {
	Theta, Phi float64
	X, Y, Z    float64
	L          float64
}

// Torus is a tube of radius R1 swept around a circle of radius R2
type Torus struct {
	R1, R2    float64
	ThetaStep float64
	PhiStep   float64
}

// FromConfig builds the sampled torus
func FromConfig(cfg config.Torus) Torus {
	return Torus{
		R1:        cfg.TubeRadius,
		R2:        cfg.CentralRadius,
		ThetaStep: cfg.ThetaStep,
		PhiStep:   cfg.PhiStep,
	}
}

// At evaluates the surface at (theta, phi)
func (t Torus) At(theta, phi float64, rot Rotation) Sample {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return t.at(theta, phi, sinTheta, cosTheta, sinPhi, cosPhi, rot)
}

func (t Torus) at(theta, phi, sinTheta, cosTheta, sinPhi, cosPhi float64, r Rotation) Sample {
	// Cross-section circle before revolution
	circleX := t.R2 + t.R1*cosTheta
	circleY := t.R1 * sinTheta

	return Sample{
		Theta: theta,
		Phi:   phi,
		X:     circleX*(r.CosB*cosPhi+r.SinA*r.SinB*sinPhi) - circleY*r.CosA*r.SinB,
		Y:     circleX*(r.SinB*cosPhi-r.SinA*r.CosB*sinPhi) + circleY*r.CosA*r.CosB,
		Z:     r.CosA*circleX*sinPhi + circleY*r.SinA,
		L: cosPhi*cosTheta*r.SinB - r.CosA*cosTheta*sinPhi - r.SinA*sinTheta +
			r.CosB*(r.CosA*sinTheta-cosTheta*r.SinA*sinPhi),
	}
}

// Sweep visits every sample, theta in the outer loop, both angles stepping from 0 while < 2π
// Angles accumulate by repeated addition so the sample set is identical across runs
func (t Torus) Sweep(rot Rotation, fn func(Sample)) {
	for theta := 0.0; theta < 2*math.Pi; theta += t.ThetaStep {
		sinTheta, cosTheta := math.Sincos(theta)
		for phi := 0.0; phi < 2*math.Pi; phi += t.PhiStep {
			sinPhi, cosPhi := math.Sincos(phi)
			fn(t.at(theta, phi, sinTheta, cosTheta, sinPhi, cosPhi, rot))
		}
	}
}

// Count returns how many samples Sweep produces
func (t Torus) Count() int {
	n := 0
	for theta := 0.0; theta < 2*math.Pi; theta += t.ThetaStep {
		for phi := 0.0; phi < 2*math.Pi; phi += t.PhiStep {
			n++
		}
	}
	return n
}
