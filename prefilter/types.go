// SPDX-License-Identifier: MIT

// Package prefilter - shared interface, kinds, and sentinel errors.
package prefilter

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by fit constructors and model methods.
var (
	// ErrBadComponents reports a requested component count below 1 or above
	// the incoming feature count.
	ErrBadComponents = errors.New("prefilter: component count out of range")

	// ErrBadGrid reports a position grid that is not strictly increasing or
	// does not match the data width.
	ErrBadGrid = errors.New("prefilter: invalid position grid")

	// ErrBadOptions reports negative autoencoder training parameters.
	ErrBadOptions = errors.New("prefilter: invalid autoencoder options")
)

// Kind identifies the reduction family of a fitted model.
type Kind int

const (
	// KindLinear is the centered thin-SVD projection.
	KindLinear Kind = iota
	// KindChainedNMF is the non-negative factorization reducer.
	KindChainedNMF
	// KindAutoencoder is the shallow sparse ReLU network.
	KindAutoencoder
)

// String returns the lowercase name used in logs.
func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindChainedNMF:
		return "chained-nmf"
	case KindAutoencoder:
		return "autoencoder"
	default:
		return "unknown"
	}
}

// Model is the contract every fitted prefilter satisfies.
//
// Transform projects samples (n×InputDim) into the reduced space
// (n×Components); InverseTransform maps reduced rows back. Both reject a
// wrong input width with core.ErrDimensionMismatch. OutputDim duplicates
// Components so that a Model interface value also satisfies the Reducer
// interfaces declared by the nmf and regress packages.
type Model interface {
	Transform(x *mat.Dense) (*mat.Dense, error)
	InverseTransform(z *mat.Dense) (*mat.Dense, error)
	Components() int
	OutputDim() int
	InputDim() int
	Kind() Kind
}

// checkComponents validates a requested reduction width against the
// incoming feature count.
func checkComponents(components, features int) error {
	if components < 1 || components > features {
		return fmt.Errorf("components=%d with %d features: %w",
			components, features, ErrBadComponents)
	}

	return nil
}
