// Package emb runs a sentence-embedding ONNX model through ONNX Runtime.
package emb

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	inputIDs      = "input_ids"
	attentionMask = "attention_mask"
	tokenTypeIDs  = "token_type_ids"
)

// Config selects the runtime library, model and tokenizer files.
type Config struct {
	OrtDLL        string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
}

// Encoder turns text into an L2-normalized, mean-pooled embedding.
type Encoder struct {
	mu         sync.Mutex
	tk         *tokenizer.Tokenizer
	session    *ort.DynamicAdvancedSession
	inputNames []string
	outputName string
	maxSeqLen  int
	ownsEnv    bool
}

// Init loads the tokenizer and creates the ORT session.
func (e *Encoder) Init(cfg Config) error {
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return errors.New("model path is required")
	}
	if strings.TrimSpace(cfg.TokenizerPath) == "" {
		return errors.New("tokenizer path is required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 256
	}
	if cfg.OrtDLL != "" {
		ort.SetSharedLibraryPath(cfg.OrtDLL)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("init onnxruntime: %w", err)
		}
		e.ownsEnv = true
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		e.release()
		return fmt.Errorf("load tokenizer: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		e.release()
		return fmt.Errorf("inspect model: %w", err)
	}
	names, err := selectInputs(inputs)
	if err != nil {
		e.release()
		return err
	}
	if len(outputs) == 0 {
		e.release()
		return errors.New("model has no outputs")
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, names, []string{outputs[0].Name}, nil)
	if err != nil {
		e.release()
		return fmt.Errorf("create session: %w", err)
	}

	e.tk = tk
	e.session = session
	e.inputNames = names
	e.outputName = outputs[0].Name
	e.maxSeqLen = cfg.MaxSeqLen
	return nil
}

func selectInputs(infos []ort.InputOutputInfo) ([]string, error) {
	have := make(map[string]bool, len(infos))
	for _, info := range infos {
		have[info.Name] = true
	}
	if !have[inputIDs] || !have[attentionMask] {
		return nil, fmt.Errorf("model must accept %s and %s", inputIDs, attentionMask)
	}
	names := []string{inputIDs, attentionMask}
	if have[tokenTypeIDs] {
		names = append(names, tokenTypeIDs)
	}
	return names, nil
}

// Encode embeds a single text.
func (e *Encoder) Encode(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.tk == nil {
		return nil, errors.New("encoder is not initialized")
	}

	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, mask, types := truncate(toInt64(enc.GetIds()), toInt64(enc.GetAttentionMask()), toInt64(enc.GetTypeIds()), e.maxSeqLen)
	if len(ids) == 0 {
		return nil, errors.New("tokenizer produced no tokens")
	}
	if len(mask) != len(ids) {
		mask = make([]int64, len(ids))
		for i := range mask {
			mask[i] = 1
		}
	}
	if len(types) != len(ids) {
		types = make([]int64, len(ids))
	}

	shape := ort.NewShape(1, int64(len(ids)))
	feeds := map[string][]int64{inputIDs: ids, attentionMask: mask, tokenTypeIDs: types}
	inputs := make([]ort.Value, 0, len(e.inputNames))
	defer func() {
		for _, v := range inputs {
			_ = v.Destroy()
		}
	}()
	for _, name := range e.inputNames {
		t, err := ort.NewTensor(shape, feeds[name])
		if err != nil {
			return nil, fmt.Errorf("create %s tensor: %w", name, err)
		}
		inputs = append(inputs, t)
	}

	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	defer func() {
		if outputs[0] != nil {
			_ = outputs[0].Destroy()
		}
	}()
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output %s is not a float32 tensor", e.outputName)
	}
	vec, err := pool(out.GetData(), out.GetShape(), mask)
	if err != nil {
		return nil, err
	}
	return l2Normalize(vec), nil
}

// Close destroys the session and, when this encoder created it, the ORT environment.
func (e *Encoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.release()
}

func (e *Encoder) release() {
	if e.session != nil {
		_ = e.session.Destroy()
		e.session = nil
	}
	e.tk = nil
	if e.ownsEnv {
		_ = ort.DestroyEnvironment()
		e.ownsEnv = false
	}
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

// truncate keeps the first maxLen-1 tokens plus the trailing special token.
func truncate(ids, mask, types []int64, maxLen int) ([]int64, []int64, []int64) {
	if maxLen <= 0 || len(ids) <= maxLen {
		return ids, mask, types
	}
	cut := func(s []int64) []int64 {
		if len(s) <= maxLen {
			return s
		}
		out := make([]int64, 0, maxLen)
		out = append(out, s[:maxLen-1]...)
		return append(out, s[len(s)-1])
	}
	return cut(ids), cut(mask), cut(types)
}
