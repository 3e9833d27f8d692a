// Package fixedpoint implements the deterministic fixed-point vector and
// matrix primitives used by the root epoch computation.
//
// Two widths are supported. Fixed32 is a Q32.32 number held in an int64 and
// is the working width for the weight matrix and the matrix-vector product.
// The wider Q64.64 values are held in big.Int instances scaled by 2^64 and
// are used wherever a full u64 (stake amounts, emission budgets) has to
// survive normalization without precision loss.
//
// Every operation here is pure integer arithmetic. Floating point is banned:
// all participants replaying the same state must arrive at bit-identical
// results on every platform.
package fixedpoint

import (
	"math"
	"math/big"
	"math/bits"
)

// Fixed32 is a Q32.32 fixed-point number: the upper 32 bits hold the integer
// part and the lower 32 bits hold the fraction. Values handled by this
// package are non-negative.
type Fixed32 int64

const (
	// Shift32 is the number of fractional bits in a Fixed32.
	Shift32 = 32

	// Shift64 is the number of fractional bits in a Q64.64 big.Int value.
	Shift64 = 64

	// One32 is the Fixed32 representation of 1.
	One32 Fixed32 = 1 << Shift32

	// Max32 is the largest representable Fixed32 value.
	Max32 Fixed32 = math.MaxInt64
)

// FromU16 converts an unsigned 16-bit integer to its Fixed32 representation.
func FromU16(value uint16) Fixed32 {
	return Fixed32(int64(value) << Shift32)
}

// U64ToFixed64 converts an unsigned 64-bit integer to a Q64.64 value.
// The conversion is lossless.
func U64ToFixed64(value uint64) *big.Int {
	result := new(big.Int).SetUint64(value)
	return result.Lsh(result, Shift64)
}

// Fixed32ToFixed64 losslessly widens a Fixed32 to a Q64.64 value.
func Fixed32ToFixed64(value Fixed32) *big.Int {
	result := big.NewInt(int64(value))
	return result.Lsh(result, Shift64-Shift32)
}

// Fixed64ToFixed32 narrows a Q64.64 value to Fixed32. Fractional bits below
// 2^-32 are truncated. Values outside the Fixed32 range saturate: negatives
// clamp to zero and overly large values clamp to Max32.
func Fixed64ToFixed32(value *big.Int) Fixed32 {
	if value.Sign() < 0 {
		return 0
	}
	narrowed := new(big.Int).Rsh(value, Shift64-Shift32)
	if !narrowed.IsInt64() {
		return Max32
	}
	return Fixed32(narrowed.Int64())
}

// WidenVec widens a Fixed32 vector into a freshly allocated Q64.64 vector.
func WidenVec(values []Fixed32) []*big.Int {
	widened := make([]*big.Int, len(values))
	for i, value := range values {
		widened[i] = Fixed32ToFixed64(value)
	}
	return widened
}

// NarrowVec narrows a Q64.64 vector into a freshly allocated Fixed32 vector,
// saturating each element as described in Fixed64ToFixed32.
func NarrowVec(values []*big.Int) []Fixed32 {
	narrowed := make([]Fixed32, len(values))
	for i, value := range values {
		narrowed[i] = Fixed64ToFixed32(value)
	}
	return narrowed
}

// InplaceNormalize64 scales a non-negative Q64.64 vector so that its elements
// sum to 1. Flooring during division may leave the sum short of 1 by at most
// len(values) units of 2^-64. An all-zero vector is left untouched: the
// all-zero result is defined, not an error.
func InplaceNormalize64(values []*big.Int) {
	sum := new(big.Int)
	for _, value := range values {
		sum.Add(sum, value)
	}
	if sum.Sign() == 0 {
		return
	}
	for _, value := range values {
		value.Lsh(value, Shift64)
		value.Div(value, sum)
	}
}

// InplaceNormalize32 scales a non-negative Fixed32 vector so that its
// elements sum to 1, with the same flooring and all-zero semantics as
// InplaceNormalize64.
func InplaceNormalize32(values []Fixed32) {
	sum := new(big.Int)
	for _, value := range values {
		sum.Add(sum, big.NewInt(int64(value)))
	}
	if sum.Sign() == 0 {
		return
	}
	scaled := new(big.Int)
	for i, value := range values {
		scaled.SetInt64(int64(value))
		scaled.Lsh(scaled, Shift32)
		scaled.Div(scaled, sum)
		values[i] = Fixed32(scaled.Int64())
	}
}

// MatVecMul computes rank[j] = Σ_i weights[i][j] * stake[i] over Fixed32
// values. Intermediate products are taken at 128-bit precision so that no
// product of in-domain magnitudes can overflow; accumulation saturates at
// Max32. Rows shorter than the widest row contribute zeros for their missing
// columns.
func MatVecMul(weights [][]Fixed32, stake []Fixed32) []Fixed32 {
	columns := 0
	for _, row := range weights {
		if len(row) > columns {
			columns = len(row)
		}
	}

	ranks := make([]Fixed32, columns)
	for i, row := range weights {
		s := uint64(stake[i])
		if s == 0 {
			continue
		}
		for j, weight := range row {
			product := mul32(uint64(weight), s)
			ranks[j] = addSaturating(ranks[j], product)
		}
	}
	return ranks
}

// mul32 multiplies two non-negative Q32.32 values through a 128-bit
// intermediate and returns the Q32.32 product, saturating at Max32.
func mul32(a, b uint64) Fixed32 {
	hi, lo := bits.Mul64(a, b)
	if hi >= 1<<Shift32 {
		return Max32
	}
	product := hi<<Shift32 | lo>>Shift32
	if product > uint64(Max32) {
		return Max32
	}
	return Fixed32(product)
}

func addSaturating(a, b Fixed32) Fixed32 {
	sum := uint64(a) + uint64(b)
	if sum > uint64(Max32) {
		return Max32
	}
	return Fixed32(sum)
}

// ScaleToU64 multiplies each normalized Q64.64 fraction by total and floors
// the result to an unsigned integer. For fractions produced by
// InplaceNormalize64 the results sum to at most total, with rounding loss
// bounded by len(fractions).
func ScaleToU64(fractions []*big.Int, total uint64) []uint64 {
	totalBig := new(big.Int).SetUint64(total)
	scaled := new(big.Int)
	results := make([]uint64, len(fractions))
	for i, fraction := range fractions {
		scaled.Mul(fraction, totalBig)
		scaled.Rsh(scaled, Shift64)
		if !scaled.IsUint64() {
			results[i] = math.MaxUint64
			continue
		}
		results[i] = scaled.Uint64()
	}
	return results
}

// MaxUpscaleU16 rescales the input so that its maximum element maps to
// 65535 while relative proportions are preserved. An all-zero input stays
// all-zero.
func MaxUpscaleU16(values []uint16) []uint16 {
	upscaled := make([]uint16, len(values))
	var max uint16
	for _, value := range values {
		if value > max {
			max = value
		}
	}
	if max == 0 {
		return upscaled
	}
	for i, value := range values {
		upscaled[i] = uint16(uint64(value) * math.MaxUint16 / uint64(max))
	}
	return upscaled
}
