package crypto

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// G1 is the commitment group.
type G1 = bn254.G1Affine

// Scalar is an element of the scalar field of G1.
type Scalar = fr.Element

var blindingGenerator = sync.OnceValue(func() bn254.G1Affine {
	return HashToCurve([]byte(TagBlinding))
})

// BlindingGenerator returns H, the Pedersen blinding generator. It is derived
// from a fixed tag so nobody knows its discrete log with respect to any unit point.
func BlindingGenerator() bn254.G1Affine {
	return blindingGenerator()
}

// Generator returns the fixed BN254 G1 base point.
func Generator() bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	return g1
}

// Identity returns the point at infinity.
func Identity() bn254.G1Affine {
	return bn254.G1Affine{}
}

// MultiExp computes Σ scalars[i]·points[i].
//
// The underlying bucket method is variable time even though the balance
// commitment feeds it secret scalars. See DESIGN.md.
func MultiExp(points []bn254.G1Affine, scalars []fr.Element) bn254.G1Affine {
	if len(points) != len(scalars) {
		panic(fmt.Sprintf("multiexp: %d points, %d scalars", len(points), len(scalars)))
	}
	var acc bn254.G1Jac
	if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		panic(fmt.Sprintf("multiexp: %v", err))
	}
	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out
}

// Sum adds points.
func Sum(points ...bn254.G1Affine) bn254.G1Affine {
	var acc, tmp bn254.G1Jac
	inf := Identity()
	acc.FromAffine(&inf)
	for i := range points {
		tmp.FromAffine(&points[i])
		acc.AddAssign(&tmp)
	}
	var out bn254.G1Affine
	out.FromJacobian(&acc)
	return out
}

// Sub returns a − b.
func Sub(a, b bn254.G1Affine) bn254.G1Affine {
	var ja, jb bn254.G1Jac
	ja.FromAffine(&a)
	jb.FromAffine(&b)
	ja.SubAssign(&jb)
	var out bn254.G1Affine
	out.FromJacobian(&ja)
	return out
}
