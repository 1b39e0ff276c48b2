package neat

import (
	"fmt"
	"math"
)

// ActivationType is the signature of a node activation function.
type ActivationType func(x float64) float64

// ActivationFunctions maps config names to activation functions. The names
// follow neat-python so its config files remain usable.
var ActivationFunctions = map[string]ActivationType{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gauss":    Gaussian,
	"gaussian": Gaussian,
	"abs":      Absolute,
	"absolute": Absolute,
	"sin":      Sine,
	"sine":     Sine,
	"cos":      Cosine,
	"cosine":   Cosine,
	"inv":      Inv,
	"log":      Log,
	"exp":      Exp,
	"hat":      Hat,
	"square":   Square,
	"cube":     Cube,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationType, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Sigmoid is the steepened logistic function used by neat-python.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*clamp(x, -60.0/4.9, 60.0/4.9)))
}

// Tanh activation.
func Tanh(x float64) float64 { return math.Tanh(x) }

// ReLU activation.
func ReLU(x float64) float64 { return math.Max(0, x) }

// Identity activation.
func Identity(x float64) float64 { return x }

// Clamped limits the signal to [-1, 1].
func Clamped(x float64) float64 { return clamp(x, -1.0, 1.0) }

// Gaussian activation.
func Gaussian(x float64) float64 { return math.Exp(-x * x / 2.0) }

// Absolute activation.
func Absolute(x float64) float64 { return math.Abs(x) }

// Sine activation.
func Sine(x float64) float64 { return math.Sin(x) }

// Cosine activation.
func Cosine(x float64) float64 { return math.Cos(x) }

// Inv returns 1/x, with 0 mapped to 0.
func Inv(x float64) float64 {
	if x == 0.0 {
		return 0.0
	}
	return 1.0 / x
}

// Log returns ln(x), clamping the input away from zero.
func Log(x float64) float64 {
	return math.Log(math.Max(1e-9, x))
}

// Exp returns e^x with the input clamped to avoid overflow.
func Exp(x float64) float64 {
	return math.Exp(clamp(x, -60.0, 60.0))
}

// Hat is a triangular pulse centred at 0.
func Hat(x float64) float64 { return math.Max(0.0, 1.0-math.Abs(x)) }

// Square activation.
func Square(x float64) float64 { return x * x }

// Cube activation.
func Cube(x float64) float64 { return x * x * x }
