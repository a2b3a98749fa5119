package vision

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// PosePredictor estimates head pose angles from a face crop using a
// lightweight ONNX head-pose model. The raw output is in the model's
// native axis order; remapping to (pitch, yaw, roll) happens in the
// classifier, not here.
type PosePredictor struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputW       int
	inputH       int
}

// NewPosePredictor loads the head-pose ONNX model.
func NewPosePredictor(modelPath string) (*PosePredictor, error) {
	// FSA-Net style head-pose models expect 64x64 input
	inputW, inputH := 64, 64

	inputShape := ort.NewShape(1, 3, int64(inputH), int64(inputW))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	// Output: [1, 3] raw angles in degrees
	outputShape := ort.NewShape(1, 3)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create pose session: %w", err)
	}

	return &PosePredictor{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputW:       inputW,
		inputH:       inputH,
	}, nil
}

// Predict returns the three raw pose angles for a BGR face crop.
func (p *PosePredictor) Predict(face *Image) ([3]float32, error) {
	input := face.CHW(p.inputW, p.inputH,
		[3]float32{127.5, 127.5, 127.5}, [3]float32{128.0, 128.0, 128.0})

	inputSlice := p.inputTensor.GetData()
	copy(inputSlice, input)

	if err := p.session.Run(); err != nil {
		return [3]float32{}, fmt.Errorf("run pose: %w", err)
	}

	out := p.outputTensor.GetData()
	return [3]float32{out[0], out[1], out[2]}, nil
}

func (p *PosePredictor) Close() {
	if p.session != nil {
		p.session.Destroy()
	}
	if p.inputTensor != nil {
		p.inputTensor.Destroy()
	}
	if p.outputTensor != nil {
		p.outputTensor.Destroy()
	}
}
