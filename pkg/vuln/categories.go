package vuln

// Category 漏洞类别（模型输出向量的固定维度，顺序不可变更）
type Category string

const (
	Reentrancy          Category = "reentrancy"
	AccessControl       Category = "access_control"
	IntegerOverflow     Category = "integer_overflow"
	IntegerUnderflow    Category = "integer_underflow"
	UncheckedCall       Category = "unchecked_call"
	TxOrigin            Category = "tx_origin"
	TimestampDependency Category = "timestamp_dependency"
	FlashLoan           Category = "flash_loan"
	OracleManipulation  Category = "oracle_manipulation"
	RugPull             Category = "rug_pull"
	Honeypot            Category = "honeypot"
	LogicError          Category = "logic_error"
	DenialOfService     Category = "denial_of_service"
)

// Categories 全局类别表：编码器、模型输出索引、结果解释器共用同一份，
// 避免各处重复定义导致索引错位
var Categories = []Category{
	Reentrancy,
	AccessControl,
	IntegerOverflow,
	IntegerUnderflow,
	UncheckedCall,
	TxOrigin,
	TimestampDependency,
	FlashLoan,
	OracleManipulation,
	RugPull,
	Honeypot,
	LogicError,
	DenialOfService,
}

// NumCategories 模型漏洞输出头的维度K
var NumCategories = len(Categories)

// categoryIndex 进程启动时构建一次，之后只读
var categoryIndex = buildIndex()

func buildIndex() map[Category]int {
	idx := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		idx[c] = i
	}
	return idx
}

// Index 返回类别在输出向量中的下标；未知类别返回 -1
func Index(c Category) int {
	if i, ok := categoryIndex[c]; ok {
		return i
	}
	return -1
}

// Severity 威胁分级
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// 严重度分组（固定规则，不参与训练）
var criticalGroup = map[Category]bool{
	Reentrancy:         true,
	AccessControl:      true,
	FlashLoan:          true,
	OracleManipulation: true,
}

var highGroup = map[Category]bool{
	RugPull:          true,
	Honeypot:         true,
	IntegerOverflow:  true,
	IntegerUnderflow: true,
}

// SeverityFor 按类别分组和置信度给出严重度
func SeverityFor(c Category, confidence float64) Severity {
	switch {
	case criticalGroup[c]:
		if confidence > 0.8 {
			return SeverityCritical
		}
		if confidence > 0.6 {
			return SeverityHigh
		}
		return SeverityMedium
	case highGroup[c]:
		if confidence > 0.8 {
			return SeverityHigh
		}
		if confidence > 0.5 {
			return SeverityMedium
		}
		return SeverityLow
	default:
		if confidence > 0.8 {
			return SeverityMedium
		}
		return SeverityLow
	}
}
