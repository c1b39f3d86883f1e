package linalg

// Dense is a row-major dense matrix.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense constructs a rows x cols matrix. If data is non-nil it must
// have length rows*cols and is used directly (not copied).
func NewDense(rows, cols int, data []float64) *Dense {
	if data == nil {
		data = make([]float64, rows*cols)
	}
	if len(data) != rows*cols {
		panic("linalg: data length does not match dims")
	}
	return &Dense{rows: rows, cols: cols, data: data}
}

// Dims returns the matrix's row and column count.
func (d *Dense) Dims() (rows, cols int) { return d.rows, d.cols }

// At returns the element at (i,j).
func (d *Dense) At(i, j int) float64 { return d.data[i*d.cols+j] }

// Set assigns the element at (i,j).
func (d *Dense) Set(i, j int, v float64) { d.data[i*d.cols+j] = v }

// Row returns row i as a Vector sharing the underlying storage.
func (d *Dense) Row(i int) Vector { return Vector(d.data[i*d.cols : (i+1)*d.cols]) }

// Col returns column j as a freshly allocated Vector.
func (d *Dense) Col(j int) Vector {
	out := make(Vector, d.rows)
	for i := 0; i < d.rows; i++ {
		out[i] = d.At(i, j)
	}
	return out
}

// RawRowMajor exposes the underlying row-major backing slice, for
// handing data to a backend (e.g. gonum) without copying.
func (d *Dense) RawRowMajor() []float64 { return d.data }

// Sparse is a sparse matrix in compressed sparse row (CSR) form. The
// lsi package does not use it: its term-document matrix is a Dense.
type Sparse struct {
	rows, cols int
	rowStart   []int // length rows+1
	colIndex   []int // length nnz
	values     []float64
}

// NewSparseFromRows builds a Sparse from a slice of per-row {col:value}
// maps. Columns within each row are stored in ascending order.
func NewSparseFromRows(rows int, cols int, rowEntries []map[int]float64) *Sparse {
	s := &Sparse{rows: rows, cols: cols, rowStart: make([]int, rows+1)}
	for i := 0; i < rows; i++ {
		cols := sortedKeys(rowEntries[i])
		s.rowStart[i+1] = s.rowStart[i] + len(cols)
		for _, c := range cols {
			s.colIndex = append(s.colIndex, c)
			s.values = append(s.values, rowEntries[i][c])
		}
	}
	return s
}

func sortedKeys(m map[int]float64) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// insertion sort: row widths are small (vocabulary terms per doc)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Dims returns the matrix's row and column count.
func (s *Sparse) Dims() (rows, cols int) { return s.rows, s.cols }

// Row returns row i as a dense Vector (zero-filled where absent).
func (s *Sparse) Row(i int) Vector {
	out := make(Vector, s.cols)
	for k := s.rowStart[i]; k < s.rowStart[i+1]; k++ {
		out[s.colIndex[k]] = s.values[k]
	}
	return out
}

// NNZ returns the number of stored (nonzero) entries.
func (s *Sparse) NNZ() int { return len(s.values) }

// ToDense materializes a row-major Dense copy of s.
func (s *Sparse) ToDense() *Dense {
	out := NewDense(s.rows, s.cols, nil)
	for i := 0; i < s.rows; i++ {
		for k := s.rowStart[i]; k < s.rowStart[i+1]; k++ {
			out.Set(i, s.colIndex[k], s.values[k])
		}
	}
	return out
}
