package xtts

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"
)

const speakerEmbeddingDim = 512

var libCandidates = map[string][]string{
	"linux": {
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"./libonnxruntime.so",
		"./lib/libonnxruntime.so",
		"libonnxruntime.so",
	},
	"darwin": {
		"/usr/local/lib/libonnxruntime.dylib",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"./libonnxruntime.dylib",
		"libonnxruntime.dylib",
	},
	"windows": {
		"onnxruntime.dll",
		"./onnxruntime.dll",
		"./lib/onnxruntime.dll",
	},
}

func onnxRuntimeLibPath() string {
	if envPath := os.Getenv("ONNXRUNTIME_LIB_PATH"); envPath != "" {
		return envPath
	}
	candidates, ok := libCandidates[runtime.GOOS]
	if !ok {
		candidates = libCandidates["linux"]
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[len(candidates)-1]
}

// pipeline owns the two ONNX sessions: the speaker encoder turns
// reference audio into a speaker embedding, the synthesizer turns
// token ids plus that embedding into a waveform.
type pipeline struct {
	speakerEncoder *ort.DynamicAdvancedSession
	synthesizer    *ort.DynamicAdvancedSession
}

func newPipeline(modelDir string) (*pipeline, error) {
	ort.SetSharedLibraryPath(onnxRuntimeLibPath())

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	p := &pipeline{}
	var err error

	p.speakerEncoder, err = ort.NewDynamicAdvancedSession(
		filepath.Join(modelDir, "speaker_encoder.onnx"),
		[]string{"audio"},
		[]string{"speaker_embedding"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load speaker encoder: %w", err)
	}

	p.synthesizer, err = ort.NewDynamicAdvancedSession(
		filepath.Join(modelDir, "synthesizer.onnx"),
		[]string{"input_ids", "speaker_embedding", "speed"},
		[]string{"waveform"},
		nil,
	)
	if err != nil {
		p.close()
		return nil, fmt.Errorf("failed to load synthesizer: %w", err)
	}

	return p, nil
}

func (p *pipeline) encodeSpeaker(samples []float32) ([]float32, error) {
	audioTensor, err := ort.NewTensor(ort.NewShape(1, 1, int64(len(samples))), samples)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio tensor: %w", err)
	}
	defer audioTensor.Destroy()

	outputs := make([]ort.Value, 1)
	if err := p.speakerEncoder.Run([]ort.Value{audioTensor}, outputs); err != nil {
		return nil, fmt.Errorf("failed to run speaker encoder: %w", err)
	}
	if outputs[0] == nil {
		return nil, fmt.Errorf("no output from speaker encoder")
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected speaker encoder output type")
	}

	data := tensor.GetData()
	embedding := make([]float32, len(data))
	copy(embedding, data)
	if len(embedding) > speakerEmbeddingDim {
		embedding = embedding[:speakerEmbeddingDim]
	}
	return embedding, nil
}

func (p *pipeline) synthesize(tokens []int64, embedding []float32, speed float32) ([]float32, error) {
	inputIDs, err := ort.NewTensor(ort.NewShape(1, int64(len(tokens))), tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer inputIDs.Destroy()

	spkTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(embedding))), embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create speaker_embedding tensor: %w", err)
	}
	defer spkTensor.Destroy()

	speedTensor, err := ort.NewTensor(ort.NewShape(1), []float32{speed})
	if err != nil {
		return nil, fmt.Errorf("failed to create speed tensor: %w", err)
	}
	defer speedTensor.Destroy()

	outputs := make([]ort.Value, 1)
	inputs := []ort.Value{inputIDs, spkTensor, speedTensor}
	if err := p.synthesizer.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("failed to run synthesizer: %w", err)
	}
	if outputs[0] == nil {
		return nil, fmt.Errorf("no output from synthesizer")
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected synthesizer output type")
	}

	data := tensor.GetData()
	waveform := make([]float32, len(data))
	copy(waveform, data)
	return waveform, nil
}

func (p *pipeline) close() error {
	if p.synthesizer != nil {
		if err := p.synthesizer.Destroy(); err != nil {
			return err
		}
		p.synthesizer = nil
	}
	if p.speakerEncoder != nil {
		if err := p.speakerEncoder.Destroy(); err != nil {
			return err
		}
		p.speakerEncoder = nil
	}
	return ort.DestroyEnvironment()
}
