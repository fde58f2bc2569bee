package onnx

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/text/unicode/norm"

	"github.com/poiesic/assessor/ai"
)

const (
	inputIDs      = "input_ids"
	attentionMask = "attention_mask"
	tokenTypeIDs  = "token_type_ids"
	lastHidden    = "last_hidden_state"
)

var (
	envMu   sync.Mutex
	envRefs int
)

// acquireEnvironment initializes the process-wide onnxruntime environment once.
func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return err
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 {
		return ort.DestroyEnvironment()
	}
	return nil
}

// Embedder implements ai.Embedder with a local onnxruntime session.
type Embedder struct {
	session   *ort.DynamicAdvancedSession
	withTypes bool
	maxSeqLen int

	tokMu     sync.Mutex
	tokenizer *tokenizer.Tokenizer

	logger *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tk, err := pretrained.FromFile(config.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load tokenizer %s: %w", ai.ErrModelInit, config.TokenizerPath, err)
	}

	if err := acquireEnvironment(config.RuntimeLibrary); err != nil {
		return nil, fmt.Errorf("%w: onnxruntime environment: %w", ai.ErrModelInit, err)
	}

	inputs, _, err := ort.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		_ = releaseEnvironment()
		return nil, fmt.Errorf("%w: inspect model %s: %w", ai.ErrModelInit, config.ModelPath, err)
	}
	inputNames := []string{inputIDs, attentionMask}
	withTypes := slices.ContainsFunc(inputs, func(info ort.InputOutputInfo) bool {
		return info.Name == tokenTypeIDs
	})
	if withTypes {
		inputNames = append(inputNames, tokenTypeIDs)
	}

	session, err := ort.NewDynamicAdvancedSession(config.ModelPath, inputNames, []string{lastHidden}, nil)
	if err != nil {
		_ = releaseEnvironment()
		return nil, fmt.Errorf("%w: create session %s: %w", ai.ErrModelInit, config.ModelPath, err)
	}

	return &Embedder{
		session:   session,
		withTypes: withTypes,
		maxSeqLen: config.MaxSeqLen,
		tokenizer: tk,
		logger:    slog.Default().With("component", "onnx-embedder", "model", config.ModelPath),
	}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts runs one padded batch through the model.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	encoded, typeIDs, err := e.encode(texts)
	if err != nil {
		return nil, err
	}
	ids, mask, types, seq := batchInputs(encoded, typeIDs)
	shape := ort.NewShape(int64(len(texts)), int64(seq))

	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("input ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("attention mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	inputs := []ort.Value{idsTensor, maskTensor}
	if e.withTypes {
		typesTensor, err := ort.NewTensor(shape, types)
		if err != nil {
			return nil, fmt.Errorf("token type tensor: %w", err)
		}
		defer typesTensor.Destroy()
		inputs = append(inputs, typesTensor)
	}

	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		e.logger.Error("inference failed", "count", len(texts), "err", err)
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	defer outputs[0].Destroy()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("onnx run: unexpected output type %T", outputs[0])
	}
	outShape := hidden.GetShape()
	if len(outShape) != 3 {
		return nil, fmt.Errorf("onnx run: unexpected output shape %v", outShape)
	}

	return meanPool(hidden.GetData(), mask, len(texts), seq, int(outShape[2])), nil
}

func (e *Embedder) encode(texts []string) ([][]int, [][]int, error) {
	e.tokMu.Lock()
	defer e.tokMu.Unlock()

	ids := make([][]int, len(texts))
	types := make([][]int, len(texts))
	for i, text := range texts {
		enc, err := e.tokenizer.EncodeSingle(norm.NFKC.String(text), true)
		if err != nil {
			return nil, nil, fmt.Errorf("tokenize: %w", err)
		}
		ids[i] = truncate(enc.Ids, e.maxSeqLen)
		types[i] = truncate(enc.TypeIds, e.maxSeqLen)
	}
	return ids, types, nil
}

func (e *Embedder) close() error {
	err := e.session.Destroy()
	if rerr := releaseEnvironment(); err == nil {
		err = rerr
	}
	return err
}
