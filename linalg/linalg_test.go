package linalg

import (
	"math"
	"testing"

	"github.com/corpuskit/classifier/classifyerr"
)

func TestVectorDotAndNorm(t *testing.T) {
	t.Parallel()
	v := Vector{3, 4}
	if v.Norm() != 5 {
		t.Errorf("Norm() = %v, want 5", v.Norm())
	}
	if got := v.Dot(Vector{1, 0}); got != 3 {
		t.Errorf("Dot = %v, want 3", got)
	}
}

func TestVectorNormalize(t *testing.T) {
	t.Parallel()
	v := Vector{3, 4}
	n := v.Normalize()
	if math.Abs(n.Norm()-1) > 1e-9 {
		t.Errorf("normalized norm = %v, want 1", n.Norm())
	}
	zero := Vector{0, 0}
	if zn := zero.Normalize(); zn.Norm() != 0 {
		t.Errorf("normalizing zero vector should stay zero, got %v", zn)
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()
	a := Vector{1, 0}
	b := Vector{1, 0}
	if got := CosineSimilarity(a, b); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %v, want 1", got)
	}
	c := Vector{0, 1}
	if got := CosineSimilarity(a, c); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: got %v, want 0", got)
	}
	if got := CosineSimilarity(Vector{0, 0}, a); got != 0 {
		t.Errorf("zero vector: got %v, want 0", got)
	}
	if got := CosineSimilarity(Vector{1}, Vector{1, 2}); got != 0 {
		t.Errorf("mismatched length: got %v, want 0", got)
	}
}

func TestDenseAtSet(t *testing.T) {
	t.Parallel()
	d := NewDense(2, 3, nil)
	d.Set(1, 2, 7)
	if got := d.At(1, 2); got != 7 {
		t.Errorf("At(1,2) = %v, want 7", got)
	}
	row := d.Row(1)
	if row[2] != 7 {
		t.Errorf("Row(1)[2] = %v, want 7", row[2])
	}
}

func TestSparseRowAndToDense(t *testing.T) {
	t.Parallel()
	rows := []map[int]float64{
		{0: 1, 2: 3},
		{1: 5},
	}
	s := NewSparseFromRows(2, 3, rows)
	if s.NNZ() != 3 {
		t.Errorf("NNZ() = %d, want 3", s.NNZ())
	}
	r0 := s.Row(0)
	if r0[0] != 1 || r0[1] != 0 || r0[2] != 3 {
		t.Errorf("Row(0) = %v, want [1 0 3]", r0)
	}
	dense := s.ToDense()
	if dense.At(1, 1) != 5 {
		t.Errorf("ToDense At(1,1) = %v, want 5", dense.At(1, 1))
	}
}

func svdReconstructionError(t *testing.T, a *Dense, u *Dense, s []float64, v *Dense) float64 {
	t.Helper()
	rows, cols := a.Dims()
	k := len(s)
	var sumSq float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var recon float64
			for r := 0; r < k; r++ {
				recon += u.At(i, r) * s[r] * v.At(j, r)
			}
			diff := a.At(i, j) - recon
			sumSq += diff * diff
		}
	}
	return math.Sqrt(sumSq)
}

func TestSVD_GonumBackend_Reconstructs(t *testing.T) {
	t.Parallel()
	a := NewDense(3, 2, []float64{
		3, 0,
		0, 2,
		0, 0,
	})
	u, s, v, err := SVD(a, 2, BackendGonum)
	if err != nil {
		t.Fatalf("SVD: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("expected 2 singular values, got %d", len(s))
	}
	if err := svdReconstructionError(t, a, u, s, v); err > 1e-6 {
		t.Errorf("reconstruction error too large: %v", err)
	}
}

func TestSVD_NativeBackend_Reconstructs(t *testing.T) {
	t.Parallel()
	a := NewDense(3, 2, []float64{
		3, 0,
		0, 2,
		0, 0,
	})
	u, s, v, err := SVD(a, 2, BackendNative)
	if err != nil {
		t.Fatalf("SVD: %v", err)
	}
	if recErr := svdReconstructionError(t, a, u, s, v); recErr > 1e-4 {
		t.Errorf("reconstruction error too large: %v", recErr)
	}
}

func TestSVD_TruncatedRank(t *testing.T) {
	t.Parallel()
	a := NewDense(4, 4, []float64{
		4, 0, 0, 0,
		0, 3, 0, 0,
		0, 0, 2, 0,
		0, 0, 0, 1,
	})
	_, s, _, err := SVD(a, 2, BackendGonum)
	if err != nil {
		t.Fatalf("SVD: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("expected 2 singular values, got %d", len(s))
	}
	if s[0] < s[1] {
		t.Errorf("expected descending singular values, got %v", s)
	}
	if math.Abs(s[0]-4) > 1e-6 {
		t.Errorf("largest singular value = %v, want 4", s[0])
	}
}

func TestSVD_InvalidArguments(t *testing.T) {
	t.Parallel()
	a := NewDense(2, 2, nil)
	if _, _, _, err := SVD(a, 0, BackendAuto); !classifyerr.Is(err, classifyerr.InvalidArgument) {
		t.Errorf("expected InvalidArgument for k<=0, got %v", err)
	}
	zero := NewDense(0, 2, nil)
	if _, _, _, err := SVD(zero, 1, BackendAuto); !classifyerr.Is(err, classifyerr.InvalidArgument) {
		t.Errorf("expected InvalidArgument for zero dim, got %v", err)
	}
}

func TestSVD_KClampedToMinDimension(t *testing.T) {
	t.Parallel()
	a := NewDense(2, 5, []float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
	})
	_, s, _, err := SVD(a, 10, BackendGonum)
	if err != nil {
		t.Fatalf("SVD: %v", err)
	}
	if len(s) != 2 {
		t.Errorf("expected k clamped to 2, got %d singular values", len(s))
	}
}

func TestBackendString(t *testing.T) {
	t.Parallel()
	cases := map[Backend]string{
		BackendAuto:   "auto",
		BackendNative: "native",
		BackendGonum:  "gonum",
	}
	for b, want := range cases {
		if got := b.String(); got != want {
			t.Errorf("Backend(%d).String() = %q, want %q", b, got, want)
		}
	}
}
