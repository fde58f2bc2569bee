// Package onnx runs a sentence-transformer locally through onnxruntime.
//
// The model is an exported HuggingFace encoder (all-MiniLM-L6-v2 by default)
// paired with its tokenizer.json. Text is NFKC-normalized, tokenized and
// truncated to the configured sequence length; token states are mean-pooled
// over the attention mask and L2-normalized, matching sentence-transformers.
//
// The onnxruntime shared library must be installed. Its location is taken
// from ai.Config.RuntimeLibrary.
package onnx
