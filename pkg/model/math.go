package model

import (
	"math"
	"math/rand"
)

// Vector float64切片
type Vector []float64

// Matrix 行向量切片
type Matrix []Vector

// NewMatrix 创建 rows x cols 矩阵，Xavier式小随机权重初始化
func NewMatrix(rows, cols int, rng *rand.Rand) Matrix {
	m := make(Matrix, rows)
	scale := math.Sqrt(2.0 / float64(cols))
	for i := 0; i < rows; i++ {
		m[i] = make(Vector, cols)
		for j := 0; j < cols; j++ {
			m[i][j] = rng.NormFloat64() * scale
		}
	}
	return m
}

// NewVector 创建零向量
func NewVector(n int) Vector {
	return make(Vector, n)
}

// OnesVector 创建全1向量（LayerNorm的gamma初值）
func OnesVector(n int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = 1.0
	}
	return v
}

// MatVec 矩阵乘向量: m (rows x cols) * v (cols) -> rows
func MatVec(m Matrix, v Vector) Vector {
	res := make(Vector, len(m))
	for i, row := range m {
		sum := 0.0
		for j, w := range row {
			sum += w * v[j]
		}
		res[i] = sum
	}
	return res
}

// AddVec 向量逐元素相加
func AddVec(a, b Vector) Vector {
	res := make(Vector, len(a))
	for i := range a {
		res[i] = a[i] + b[i]
	}
	return res
}

// Linear 仿射变换 W*x + b
func Linear(w Matrix, b Vector, x Vector) Vector {
	return AddVec(MatVec(w, x), b)
}

// GELU 激活（tanh近似，与训练侧一致）
func GELU(v Vector) Vector {
	res := make(Vector, len(v))
	for i, x := range v {
		res[i] = gelu(x)
	}
	return res
}

func gelu(x float64) float64 {
	return 0.5 * x * (1.0 + math.Tanh(math.Sqrt(2.0/math.Pi)*(x+0.044715*x*x*x)))
}

// Sigmoid 标量sigmoid
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidVec 逐元素sigmoid
func SigmoidVec(v Vector) Vector {
	res := make(Vector, len(v))
	for i, x := range v {
		res[i] = Sigmoid(x)
	}
	return res
}

// Softmax 数值稳定的softmax，原地归一化到概率
func Softmax(v Vector) Vector {
	maxVal := math.Inf(-1)
	for _, x := range v {
		if x > maxVal {
			maxVal = x
		}
	}
	res := make(Vector, len(v))
	sum := 0.0
	for i, x := range v {
		res[i] = math.Exp(x - maxVal)
		sum += res[i]
	}
	if sum == 0 {
		return res
	}
	for i := range res {
		res[i] /= sum
	}
	return res
}

// LayerNorm 对单个向量做层归一化: gamma * (x-mean)/sqrt(var+eps) + beta
func LayerNorm(x Vector, gamma, beta Vector) Vector {
	const eps = 1e-5
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	variance := 0.0
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(x))

	invStd := 1.0 / math.Sqrt(variance+eps)
	res := make(Vector, len(x))
	for i, v := range x {
		res[i] = gamma[i]*(v-mean)*invStd + beta[i]
	}
	return res
}

// Dot 点积
func Dot(a, b Vector) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm L2范数
func Norm(v Vector) float64 {
	return math.Sqrt(Dot(v, v))
}

// EuclideanDistance 欧氏距离
func EuclideanDistance(a, b Vector) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineSimilarity 余弦相似度；任一向量零范数时返回0.0，绝不产生NaN
func CosineSimilarity(a, b Vector) float64 {
	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return 0.0
	}
	return Dot(a, b) / (na * nb)
}
