package inference

import (
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru/v2"

	"vulnscan/pkg/bytecode"
	"vulnscan/pkg/encoder"
	"vulnscan/pkg/features"
	"vulnscan/pkg/model"
	"vulnscan/pkg/vuln"
)

// 判定阈值（固定，与训练侧一致）
const (
	// MaliciousThreshold 恶意判定阈值
	MaliciousThreshold = 0.5
	// ReportThreshold 漏洞上报阈值，低于此置信度的类别不进入结果
	ReportThreshold = 0.3
)

const defaultCacheSize = 1024

// Service 推理服务：编码器 + 执行引擎 + 特征提取器的组合。
// 所有方法对独立输入并发安全，学习参数推理期只读
type Service struct {
	engine    model.Engine
	cfg       model.Config
	extractor *features.Extractor

	// 嵌入缓存，键为归一化字节码的Keccak256
	embedCache *lru.Cache[common.Hash, model.Vector]
}

// NewService 组装推理服务；cacheSize<=0时取默认值
func NewService(engine model.Engine, cfg model.Config, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[common.Hash, model.Vector](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Service{
		engine:     engine,
		cfg:        cfg,
		extractor:  features.NewExtractor(),
		embedCache: cache,
	}, nil
}

// Predict 对单个合约字节码做完整预测
func (s *Service) Predict(bytecodeHex string) *PredictionResult {
	seq := encoder.Encode(bytecodeHex, s.cfg.MaxSeqLen)
	out := s.engine.Infer(seq.Tokens, seq.Mask)
	return s.interpret(out, bytecodeHex)
}

// PredictBatch 批量预测，按worker并发执行，结果顺序与输入一致
func (s *Service) PredictBatch(bytecodes []string, workers int) []*PredictionResult {
	if workers <= 1 || len(bytecodes) <= 1 {
		results := make([]*PredictionResult, len(bytecodes))
		for i, bc := range bytecodes {
			results[i] = s.Predict(bc)
		}
		return results
	}

	if workers > len(bytecodes) {
		workers = len(bytecodes)
	}
	results := make([]*PredictionResult, len(bytecodes))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.Predict(bytecodes[i])
			}
		}()
	}
	for i := range bytecodes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// interpret 把原始模型输出转为结构化预测：
// 阈值过滤 → 严重度分级 → 按置信度稳定降序 → 风险分放大取整
func (s *Service) interpret(out *model.Output, bytecodeHex string) *PredictionResult {
	findings := make([]VulnerabilityFinding, 0, len(out.Vulnerabilities))
	for i, c := range vuln.Categories {
		if i >= len(out.Vulnerabilities) {
			break
		}
		confidence := out.Vulnerabilities[i]
		if confidence > ReportThreshold {
			findings = append(findings, VulnerabilityFinding{
				Category:   c,
				Confidence: confidence,
				Severity:   vuln.SeverityFor(c, confidence),
			})
		}
	}
	// 稳定排序：同置信度保持类别表顺序，保证结果确定性
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Confidence > findings[j].Confidence
	})

	result := &PredictionResult{
		IsMalicious:          out.Malicious > MaliciousThreshold,
		MaliciousProbability: out.Malicious,
		RiskScore:            riskScore(out.Risk),
		Vulnerabilities:      findings,
		Embedding:            out.Features,
	}

	// 特征独立于模型重新计算；提取失败时降级为不附带特征，不让整个结果失败
	if f, err := s.extractor.Extract(bytecodeHex); err == nil {
		result.ContractFeatures = f
	} else {
		log.Printf("[inference] feature extraction skipped: %v", err)
	}
	return result
}

// riskScore [0,1]风险值放大到0-100整数分
func riskScore(risk float64) int {
	score := int(math.Round(risk * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Embedding 合约嵌入向量（走完整掩码前向路径，带LRU缓存）
func (s *Service) Embedding(bytecodeHex string) model.Vector {
	key := crypto.Keccak256Hash([]byte(bytecode.Normalize(bytecodeHex)))
	if emb, ok := s.embedCache.Get(key); ok {
		return emb
	}

	seq := encoder.Encode(bytecodeHex, s.cfg.MaxSeqLen)
	emb := s.engine.Infer(seq.Tokens, seq.Mask).Features
	s.embedCache.Add(key, emb)
	return emb
}

// Similarity 两个合约嵌入的余弦相似度；任一嵌入零范数时精确返回0.0
func (s *Service) Similarity(bytecodeA, bytecodeB string) float64 {
	embA := s.Embedding(bytecodeA)
	embB := s.Embedding(bytecodeB)
	return model.CosineSimilarity(embA, embB)
}

// StructuralSimilarity 指令序列层面的相似度（LCS Dice系数），
// 作为嵌入相似度之外的结构化参照；非法hex按空序列处理
func (s *Service) StructuralSimilarity(bytecodeA, bytecodeB string) float64 {
	rawA, errA := bytecode.Parse(bytecodeA)
	rawB, errB := bytecode.Parse(bytecodeB)
	if errA != nil || errB != nil {
		return 0.0
	}
	return bytecode.NewSequenceComparator().Compare(rawA, rawB)
}
