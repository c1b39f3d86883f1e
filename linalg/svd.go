package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/corpuskit/classifier/classifyerr"
)

// Backend selects which SVD implementation SVD uses.
type Backend int

const (
	// BackendAuto prefers the gonum backend, falling back to the
	// native one on any call where gonum's factorization fails to
	// converge.
	BackendAuto Backend = iota
	// BackendNative is a bounded-iteration one-sided Jacobi SVD
	// implemented without a third-party dependency.
	BackendNative
	// BackendGonum wraps gonum.org/v1/gonum/mat.SVD.
	BackendGonum
)

func (b Backend) String() string {
	switch b {
	case BackendNative:
		return "native"
	case BackendGonum:
		return "gonum"
	default:
		return "auto"
	}
}

// maxJacobiSweeps bounds the native backend's iteration count so a
// pathological or ill-conditioned matrix fails fast with a Numerical
// error instead of spinning.
const maxJacobiSweeps = 60

// jacobiTolerance is the off-diagonal convergence threshold for the
// native one-sided Jacobi SVD.
const jacobiTolerance = 1e-10

// SVD computes a rank-k truncated singular value decomposition of a,
// returning U (m x k), the k singular values in descending order, and
// V (n x k), such that a ~= U * diag(s) * V^T. k is clamped to
// min(m,n) if larger.
func SVD(a *Dense, k int, backend Backend) (u *Dense, s []float64, v *Dense, err error) {
	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, nil, classifyerr.New(classifyerr.InvalidArgument, "linalg.SVD", "matrix has a zero dimension")
	}
	if k <= 0 {
		return nil, nil, nil, classifyerr.New(classifyerr.InvalidArgument, "linalg.SVD", "k must be positive")
	}
	if max := minInt(rows, cols); k > max {
		k = max
	}

	switch backend {
	case BackendGonum:
		return gonumSVD(a, k)
	case BackendNative:
		return nativeSVD(a, k)
	default:
		u, s, v, err = gonumSVD(a, k)
		if err == nil {
			return u, s, v, nil
		}
		return nativeSVD(a, k)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// gonumSVD delegates to gonum's thin SVD, grounded on the teacher's
// lsa.Build which factorizes its term-document matrix the same way.
func gonumSVD(a *Dense, k int) (*Dense, []float64, *Dense, error) {
	rows, cols := a.Dims()
	m := mat.NewDense(rows, cols, append([]float64(nil), a.RawRowMajor()...))

	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return nil, nil, nil, classifyerr.New(classifyerr.Numerical, "linalg.gonumSVD", "gonum SVD factorization did not converge")
	}

	var uFull, vFull mat.Dense
	svd.UTo(&uFull)
	svd.VTo(&vFull)
	values := svd.Values(nil)

	uRows, _ := uFull.Dims()
	vRows, _ := vFull.Dims()

	u := NewDense(uRows, k, nil)
	for i := 0; i < uRows; i++ {
		for j := 0; j < k; j++ {
			u.Set(i, j, uFull.At(i, j))
		}
	}
	v := NewDense(vRows, k, nil)
	for i := 0; i < vRows; i++ {
		for j := 0; j < k; j++ {
			v.Set(i, j, vFull.At(i, j))
		}
	}
	s := make([]float64, k)
	copy(s, values[:k])
	return u, s, v, nil
}

// nativeSVD computes a truncated SVD via one-sided Jacobi rotations on
// A^T*A's implicit factorization: it iteratively rotates pairs of
// columns of a working copy of A toward orthogonality, accumulating
// the rotations into V, then reads U and the singular values off the
// orthogonalized columns. Bounded to maxJacobiSweeps sweeps; returns a
// Numerical error if it fails to converge or produces a non-finite
// value.
func nativeSVD(a *Dense, k int) (*Dense, []float64, *Dense, error) {
	rows, cols := a.Dims()
	work := append([]float64(nil), a.RawRowMajor()...)
	W := NewDense(rows, cols, work)

	v := NewDense(cols, cols, nil)
	for i := 0; i < cols; i++ {
		v.Set(i, i, 1)
	}

	converged := false
	for sweep := 0; sweep < maxJacobiSweeps; sweep++ {
		offDiag := 0.0
		rotated := false
		for p := 0; p < cols-1; p++ {
			for q := p + 1; q < cols; q++ {
				colP, colQ := W.Col(p), W.Col(q)
				alpha := colP.Dot(colP)
				beta := colQ.Dot(colQ)
				gamma := colP.Dot(colQ)
				offDiag += gamma * gamma

				if math.Abs(gamma) < jacobiTolerance*math.Sqrt(alpha*beta+1e-300) {
					continue
				}
				rotated = true

				zeta := (beta - alpha) / (2 * gamma)
				t := sign(zeta) / (math.Abs(zeta) + math.Sqrt(1+zeta*zeta))
				c := 1 / math.Sqrt(1+t*t)
				sAngle := c * t

				for i := 0; i < rows; i++ {
					wip, wiq := W.At(i, p), W.At(i, q)
					W.Set(i, p, c*wip-sAngle*wiq)
					W.Set(i, q, sAngle*wip+c*wiq)
				}
				for i := 0; i < cols; i++ {
					vip, viq := v.At(i, p), v.At(i, q)
					v.Set(i, p, c*vip-sAngle*viq)
					v.Set(i, q, sAngle*vip+c*viq)
				}
			}
		}
		if !rotated || offDiag < jacobiTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return nil, nil, nil, classifyerr.New(classifyerr.Numerical, "linalg.nativeSVD", "Jacobi rotations did not converge within maxJacobiSweeps")
	}

	type sv struct {
		idx   int
		value float64
	}
	norms := make([]sv, cols)
	for j := 0; j < cols; j++ {
		n := W.Col(j).Norm()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, nil, nil, classifyerr.New(classifyerr.Numerical, "linalg.nativeSVD", "singular value computation produced a non-finite result")
		}
		norms[j] = sv{idx: j, value: n}
	}
	for i := 1; i < len(norms); i++ {
		for j := i; j > 0 && norms[j-1].value < norms[j].value; j-- {
			norms[j-1], norms[j] = norms[j], norms[j-1]
		}
	}

	u := NewDense(rows, k, nil)
	s := make([]float64, k)
	vk := NewDense(cols, k, nil)
	for rank := 0; rank < k; rank++ {
		col := norms[rank].idx
		sigma := norms[rank].value
		s[rank] = sigma
		for i := 0; i < rows; i++ {
			if sigma > 0 {
				u.Set(i, rank, W.At(i, col)/sigma)
			}
		}
		for i := 0; i < cols; i++ {
			vk.Set(i, rank, v.At(i, col))
		}
	}
	return u, s, vk, nil
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
