package anomaly

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	inputSide     = 512
	inputChannels = 3
	latentSide    = 64
	latentDepth   = 256
)

// Model is the Active variant: an ONNX export of the forensic autoencoder.
// The exported graph takes one 1x3x512x512 float32 tensor in [0,1] and
// returns the reconstruction (same shape) and the latent representation
// (1x256x64x64).
type Model struct {
	session        *ort.AdvancedSession
	input          *ort.Tensor[float32]
	reconstruction *ort.Tensor[float32]
	latent         *ort.Tensor[float32]

	// The session reuses pre-allocated tensors, so runs are serialized.
	mu sync.Mutex
}

// LoadModel initializes the ONNX runtime and creates a session for the
// autoencoder artifact. sharedLibrary may be empty if the runtime library
// is discoverable by the loader.
func LoadModel(modelPath, sharedLibrary string) (*Model, error) {
	if modelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	if sharedLibrary != "" {
		ort.SetSharedLibraryPath(sharedLibrary)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputShape := ort.NewShape(1, inputChannels, inputSide, inputSide)
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	reconstruction, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate reconstruction tensor: %w", err)
	}
	latent, err := ort.NewEmptyTensor[float32](ort.NewShape(1, latentDepth, latentSide, latentSide))
	if err != nil {
		input.Destroy()
		reconstruction.Destroy()
		return nil, fmt.Errorf("allocate latent tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"reconstruction", "latent"},
		[]ort.Value{input},
		[]ort.Value{reconstruction, latent},
		nil,
	)
	if err != nil {
		input.Destroy()
		reconstruction.Destroy()
		latent.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Model{
		session:        session,
		input:          input,
		reconstruction: reconstruction,
		latent:         latent,
	}, nil
}

func (m *Model) Active() bool { return true }

// Evaluate preprocesses the image into the input tensor, runs the session,
// and derives the reconstruction error and visuals.
func (m *Model) Evaluate(img image.Image) (Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := m.input.GetData()
	fillInputTensor(in, img)

	if err := m.session.Run(); err != nil {
		return Score{}, fmt.Errorf("run onnx session: %w", err)
	}

	recon := m.reconstruction.GetData()
	var sumSq float64
	for i := range in {
		diff := float64(in[i] - recon[i])
		sumSq += diff * diff
	}
	mse := sumSq / float64(len(in))

	return Score{
		ReconstructionError: mse,
		Heatmap:             latentHeatmap(m.latent.GetData()),
		Reconstruction:      tensorToImage(recon),
	}, nil
}

func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.reconstruction != nil {
		m.reconstruction.Destroy()
		m.reconstruction = nil
	}
	if m.latent != nil {
		m.latent.Destroy()
		m.latent = nil
	}
	return nil
}

// fillInputTensor resizes the image to the model's input size with nearest
// neighbor sampling and writes it in CHW order, channels scaled to [0,1].
func fillInputTensor(dst []float32, img image.Image) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := inputSide * inputSide

	for y := 0; y < inputSide; y++ {
		srcY := bounds.Min.Y + y*height/inputSide
		for x := 0; x < inputSide; x++ {
			srcX := bounds.Min.X + x*width/inputSide
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			idx := y*inputSide + x
			dst[idx] = float32(r>>8) / 255.0
			dst[plane+idx] = float32(g>>8) / 255.0
			dst[2*plane+idx] = float32(b>>8) / 255.0
		}
	}
}

// tensorToImage converts a CHW [0,1] tensor back into an RGBA image.
func tensorToImage(data []float32) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, inputSide, inputSide))
	plane := inputSide * inputSide
	for y := 0; y < inputSide; y++ {
		for x := 0; x < inputSide; x++ {
			idx := y*inputSide + x
			i := out.PixOffset(x, y)
			out.Pix[i] = clampByte(data[idx])
			out.Pix[i+1] = clampByte(data[plane+idx])
			out.Pix[i+2] = clampByte(data[2*plane+idx])
			out.Pix[i+3] = 0xff
		}
	}
	return out
}

// latentHeatmap averages the latent activations over the channel axis,
// normalizes to [0,1], and renders a blue-to-red attention map upscaled to
// the input size.
func latentHeatmap(latent []float32) *image.RGBA {
	plane := latentSide * latentSide
	means := make([]float64, plane)
	for c := 0; c < latentDepth; c++ {
		base := c * plane
		for i := 0; i < plane; i++ {
			means[i] += float64(latent[base+i])
		}
	}

	for i := range means {
		means[i] /= latentDepth
	}
	minV, maxV := means[0], means[0]
	for _, v := range means {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	scale := maxV - minV
	if scale < 1e-8 {
		scale = 1e-8
	}

	out := image.NewRGBA(image.Rect(0, 0, inputSide, inputSide))
	for y := 0; y < inputSide; y++ {
		srcY := y * latentSide / inputSide
		for x := 0; x < inputSide; x++ {
			srcX := x * latentSide / inputSide
			v := (means[srcY*latentSide+srcX] - minV) / scale
			i := out.PixOffset(x, y)
			out.Pix[i] = uint8(255 * v)
			out.Pix[i+1] = uint8(64 * v)
			out.Pix[i+2] = uint8(255 * (1 - v))
			out.Pix[i+3] = 0xff
		}
	}
	return out
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
