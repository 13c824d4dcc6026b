package model

import (
	"fmt"
	"runtime"
	"sync"
)

// Engine 执行引擎抽象：同一套权重的两种执行方式。
// 单次结果的计算必须完整落在一个引擎内，不可混用
type Engine interface {
	Name() string
	Infer(tokens []int, mask []bool) *Output
	Embed(tokens []int) Vector
}

// ReferenceEngine 参考实现：直白的串行计算，作为数值基准
type ReferenceEngine struct {
	model *Model
}

// NewReferenceEngine 创建参考引擎
func NewReferenceEngine(m *Model) *ReferenceEngine {
	return &ReferenceEngine{model: m}
}

func (e *ReferenceEngine) Name() string { return "reference" }

func (e *ReferenceEngine) Infer(tokens []int, mask []bool) *Output {
	return e.model.forward(tokens, mask, serialFor)
}

func (e *ReferenceEngine) Embed(tokens []int) Vector {
	return e.model.embedOnly(tokens, serialFor)
}

// ParallelEngine 优化实现：逐位置计算按worker分片并行。
// 与参考引擎数值等价（同一浮点运算序列按位置划分，无跨位置规约重排）
type ParallelEngine struct {
	model   *Model
	workers int
}

// NewParallelEngine 创建并行引擎，workers<=0时取CPU核数
func NewParallelEngine(m *Model, workers int) *ParallelEngine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelEngine{model: m, workers: workers}
}

func (e *ParallelEngine) Name() string { return "parallel" }

func (e *ParallelEngine) Infer(tokens []int, mask []bool) *Output {
	return e.model.forward(tokens, mask, e.parallelFor)
}

func (e *ParallelEngine) Embed(tokens []int) Vector {
	return e.model.embedOnly(tokens, e.parallelFor)
}

// parallelFor 把[0,n)按连续区间分给worker执行
func (e *ParallelEngine) parallelFor(n int, fn func(i int)) {
	workers := e.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		serialFor(n, fn)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// NewEngine 按名字选择执行引擎
func NewEngine(name string, m *Model, workers int) (Engine, error) {
	switch name {
	case "", "reference":
		return NewReferenceEngine(m), nil
	case "parallel":
		return NewParallelEngine(m, workers), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want reference or parallel)", name)
	}
}
