package emb

import (
	"fmt"
	"math"

	ort "github.com/yalue/onnxruntime_go"
)

// pool reduces a model output to one vector. Token-level outputs
// ([1, seq, hidden]) are mean-pooled over the attention mask; sentence-level
// outputs ([1, hidden]) are returned as-is.
func pool(data []float32, shape ort.Shape, mask []int64) ([]float32, error) {
	switch len(shape) {
	case 2:
		dim := int(shape[1])
		if dim <= 0 || len(data) < dim {
			return nil, fmt.Errorf("unexpected output shape %v", shape)
		}
		out := make([]float32, dim)
		copy(out, data[:dim])
		return out, nil
	case 3:
		seq, dim := int(shape[1]), int(shape[2])
		if seq <= 0 || dim <= 0 || len(data) < seq*dim {
			return nil, fmt.Errorf("unexpected output shape %v", shape)
		}
		return meanPool(data, mask, seq, dim), nil
	default:
		return nil, fmt.Errorf("unexpected output rank %d", len(shape))
	}
}

func meanPool(hidden []float32, mask []int64, seq, dim int) []float32 {
	sum := make([]float64, dim)
	var count float64
	for t := 0; t < seq; t++ {
		if t < len(mask) && mask[t] == 0 {
			continue
		}
		row := hidden[t*dim : (t+1)*dim]
		for j, v := range row {
			sum[j] += float64(v)
		}
		count++
	}
	out := make([]float32, dim)
	if count == 0 {
		return out
	}
	for j := range sum {
		out[j] = float32(sum[j] / count)
	}
	return out
}

func l2Normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}
