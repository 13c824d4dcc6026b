package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"vulnscan/pkg/inference"
	"vulnscan/pkg/model"
)

// 命令行参数
var (
	code       = flag.String("code", "", "Hex bytecode to scan (with or without 0x prefix)")
	codeFile   = flag.String("file", "", "File with one hex bytecode per line (batch mode)")
	compare    = flag.String("compare", "", "Second bytecode: output similarity against -code instead of a prediction")
	configPath = flag.String("config", "", "Configuration file path (yaml)")
	snapshot   = flag.String("snapshot", "", "Parameter snapshot path (overrides config)")
	engineName = flag.String("engine", "", "Execution engine: reference or parallel (overrides config)")
	workers    = flag.Int("workers", 0, "Number of workers for batch prediction (overrides config)")
	outputPath = flag.String("output", "", "Output file path (default: stdout)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// 设置日志
	if *verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	if *code == "" && *codeFile == "" {
		fmt.Fprintf(os.Stderr, "Error: one of -code or -file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	if *snapshot != "" {
		cfg.SnapshotPath = *snapshot
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	svc := buildService(cfg)

	switch {
	case *compare != "":
		if *code == "" {
			log.Fatal("-compare requires -code")
		}
		writeOutput(map[string]float64{
			"similarity":            svc.Similarity(*code, *compare),
			"structural_similarity": svc.StructuralSimilarity(*code, *compare),
		})
	case *codeFile != "":
		bytecodes := readBytecodes(*codeFile)
		log.Printf("[scanner] predicting %d contracts with %d workers", len(bytecodes), cfg.Workers)
		writeOutput(svc.PredictBatch(bytecodes, cfg.Workers))
	default:
		writeOutput(svc.Predict(*code))
	}
}

// loadConfig 加载yaml配置，未指定时用默认值
func loadConfig(path string) inference.Config {
	cfg := inference.DefaultConfig()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
	return cfg
}

// buildService 装配模型与推理服务。
// 快照形状不匹配属于致命配置错误，直接退出而不是带病服务
func buildService(cfg inference.Config) *inference.Service {
	var params *model.Parameters
	if cfg.SnapshotPath != "" {
		var err error
		params, err = model.LoadParameters(cfg.SnapshotPath, cfg.Model)
		if err != nil {
			log.Fatalf("Failed to load parameter snapshot: %v", err)
		}
		log.Printf("[scanner] loaded parameter snapshot from %s", cfg.SnapshotPath)
	} else {
		log.Printf("[scanner] warning: no snapshot configured, using untrained weights (seed=%d)", cfg.InitSeed)
		params = model.NewParameters(cfg.Model, cfg.InitSeed)
	}

	m := model.New(cfg.Model, params)
	engine, err := model.NewEngine(cfg.Engine, m, cfg.Workers)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	log.Printf("[scanner] engine: %s", engine.Name())

	svc, err := inference.NewService(engine, cfg.Model, cfg.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create inference service: %v", err)
	}
	return svc
}

// readBytecodes 按行读取字节码文件，跳过空行和#注释
func readBytecodes(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open bytecode file: %v", err)
	}
	defer f.Close()

	var bytecodes []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		bytecodes = append(bytecodes, line)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read bytecode file: %v", err)
	}
	return bytecodes
}

// writeOutput JSON输出到stdout或文件
func writeOutput(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal output: %v", err)
	}
	if *outputPath == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*outputPath, data, 0644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("[scanner] report written to %s", *outputPath)
}
